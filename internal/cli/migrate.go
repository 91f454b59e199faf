package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"inno-quiz-service/internal/config"
	pgmigrations "inno-quiz-service/internal/infra/postgres/migrations"
	"inno-quiz-service/internal/lib/slogcustom"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg, reset)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables before migrating")
	return cmd
}

func runMigrations(ctx context.Context, cfg config.Config, reset bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log := slogcustom.New(cfg.Log.Format, cfg.Log.Level)

	db := openBun(cfg.Postgres.URL)
	defer db.Close()

	if reset {
		if err := pgmigrations.Reset(ctx, db); err != nil {
			return fmt.Errorf("reset schema: %w", err)
		}
		log.Warn("schema dropped")
	}

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrations applied", slog.String("group", group.String()))
	return nil
}
