package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
	"inno-quiz-service/internal/infra/memory"
)

type env struct {
	store    *memory.Store
	catalog  *app.QuizCatalog
	bank     *app.QuestionBank
	engine   *app.ScoringEngine
	accounts *app.AccountService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv(t *testing.T, policy app.Policy) *env {
	t.Helper()
	store := memory.NewStore()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &env{
		store:    store,
		catalog:  app.NewQuizCatalog(store, store).WithClock(func() time.Time { return clock }),
		bank:     app.NewQuestionBank(store, store),
		engine:   app.NewScoringEngine(store, memory.NewLeaderboardCache(time.Minute), policy, quietLogger()).WithClock(func() time.Time { return clock }),
		accounts: app.NewAccountService(store, plainHasher{}),
	}
}

func (e *env) users(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := e.accounts.Register(context.Background(), name, "secret1")
		require.NoError(t, err)
	}
}

// quizWithQuestions creates a quiz owned by alice. Each argument is the list of
// correct flags for one question's options.
func (e *env) quizWithQuestions(t *testing.T, questionFlags ...[]bool) (domain.Quiz, []domain.Question) {
	t.Helper()
	ctx := context.Background()
	quiz, err := e.catalog.CreateQuiz(ctx, "General", domain.Category(9), "alice")
	require.NoError(t, err)
	questions := make([]domain.Question, 0, len(questionFlags))
	for n, flags := range questionFlags {
		options := make([]domain.OptionInput, 0, len(flags))
		for i, correct := range flags {
			options = append(options, domain.OptionInput{Text: string(rune('A' + i)), IsCorrect: correct})
		}
		q, err := e.bank.AddQuestion(ctx, quiz.ID, "question "+string(rune('1'+n)), options)
		require.NoError(t, err)
		questions = append(questions, q)
	}
	return quiz, questions
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}
