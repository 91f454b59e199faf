package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"inno-quiz-service/internal/domain"
)

func TestStoreQuestionsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	created, err := store.CreateQuestions(ctx, []domain.Question{
		{QuizID: "quiz-1", Text: "first", Options: options("a", "b")},
		{QuizID: "quiz-1", Text: "second", Options: options("c", "d", "e")},
	})
	if err != nil {
		t.Fatalf("create questions: %v", err)
	}
	if created[0].ID >= created[1].ID {
		t.Fatalf("expected increasing ids, got %d and %d", created[0].ID, created[1].ID)
	}

	listed, err := store.ListQuestions(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Text != "first" || listed[1].Text != "second" {
		t.Fatalf("unexpected order %+v", listed)
	}
	for i, opt := range listed[1].Options {
		if opt.Position != i || opt.QuestionID != listed[1].ID {
			t.Fatalf("option %d not owned/positioned: %+v", i, opt)
		}
	}
}

func TestStoreCreateQuestionsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	_, err := store.CreateQuestions(ctx, []domain.Question{
		{QuizID: "quiz-1", Text: "ok", Options: options("a", "b")},
		{QuizID: "missing", Text: "bad", Options: options("a", "b")},
	})
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if n, _ := store.CountQuestions(ctx, "quiz-1"); n != 0 {
		t.Fatalf("expected nothing stored, got %d", n)
	}
}

func TestStoreAttemptRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	attempt, err := store.CreateAttempt(ctx, domain.UserAttempt{
		Username: "alice", QuizID: "quiz-1", Score: 1, CompletionTime: 4.5, StartedAt: time.Now(),
	}, []domain.UserAnswer{{QuestionID: 99, SelectedOptions: []int{2, 0}}})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	got, answers, err := store.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if got.Score != 1 || len(answers) != 1 || answers[0].AttemptID != attempt.ID {
		t.Fatalf("unexpected attempt %+v answers %+v", got, answers)
	}
	if answers[0].SelectedOptions[0] != 2 || answers[0].SelectedOptions[1] != 0 {
		t.Fatalf("expected selection stored verbatim, got %v", answers[0].SelectedOptions)
	}

	if _, err := store.CreateAttempt(ctx, domain.UserAttempt{Username: "ghost", QuizID: "quiz-1"}, nil); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	attempts, _ := store.ListAttempts(ctx, "quiz-1")
	if len(attempts) != 1 {
		t.Fatalf("expected single attempt, got %d", len(attempts))
	}
}

func TestStoreMarkSubmittedAndAuthorListing(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	quiz, err := store.MarkSubmitted(ctx, "quiz-1")
	if err != nil || !quiz.IsSubmitted {
		t.Fatalf("mark submitted: %+v %v", quiz, err)
	}
	if _, err := store.MarkSubmitted(ctx, "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	quizzes, _ := store.ListQuizzesByAuthor(ctx, "alice")
	if len(quizzes) != 1 || !quizzes[0].IsSubmitted {
		t.Fatalf("unexpected author listing %+v", quizzes)
	}
	if err := store.CreateUser(ctx, domain.User{Username: "alice"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate user error, got %v", err)
	}
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	ctx := context.Background()
	if err := store.CreateUser(ctx, domain.User{Username: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.CreateQuiz(ctx, domain.Quiz{ID: "quiz-1", Name: "Geo", Category: 22, AuthorUsername: "alice"}); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return store
}

func options(texts ...string) []domain.AnswerOption {
	opts := make([]domain.AnswerOption, len(texts))
	for i, text := range texts {
		opts[i] = domain.AnswerOption{Text: text, IsCorrect: i == 0}
	}
	return opts
}
