package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/config"
)

// NewImportCmd imports trivia questions into an existing quiz from the command line.
func NewImportCmd(configPath *string) *cobra.Command {
	var (
		quizID     string
		count      int
		category   string
		difficulty string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from the trivia provider into a quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured; imports into the in-memory store would be lost")
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			var opts []app.ImportOption
			if difficulty != "" {
				opts = append(opts, app.WithDifficulty(difficulty))
			}
			created, err := rt.services.Importer.ImportQuestions(cmd.Context(), quizID, count, category, opts...)
			for _, q := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", q.ID, q.Text)
			}
			if err != nil {
				rt.log.Error("import failed", slog.Int("imported", len(created)), slog.Any("error", err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id")
	cmd.Flags().IntVar(&count, "count", 10, "number of questions (1-50)")
	cmd.Flags().StringVar(&category, "category", "", "numeric category id; anything else means any category")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	_ = cmd.MarkFlagRequired("quiz")
	return cmd
}
