package migrations

import (
	"context"
	"embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed *.sql
var sqlFiles embed.FS

var Migrations = migrate.NewMigrations()

func init() {
	if err := Migrations.Discover(sqlFiles); err != nil {
		panic(err)
	}
}

// Reset drops every table created by the migrations together with bun's
// bookkeeping tables, so the next migrate run starts from scratch.
func Reset(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS
		user_answers, user_attempts, answer_options, questions, quizzes, users,
		bun_migrations, bun_migration_locks CASCADE`)
	return err
}
