package app

import (
	"context"

	"inno-quiz-service/internal/domain"
)

// QuizStore persists quizzes. Lookups of unknown ids return domain.ErrQuizNotFound.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	MarkSubmitted(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzesByAuthor(ctx context.Context, author string) ([]domain.Quiz, error)
}

// QuestionStore persists questions together with their options.
type QuestionStore interface {
	// CreateQuestions stores all questions and their options as one atomic unit and
	// returns them with storage-assigned ids.
	CreateQuestions(ctx context.Context, questions []domain.Question) ([]domain.Question, error)
	// ListQuestions returns questions in creation order, options in position order.
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	CountQuestions(ctx context.Context, quizID string) (int, error)
}

// AttemptStore is the attempt ledger.
type AttemptStore interface {
	// CreateAttempt stores the attempt and all of its answers atomically.
	CreateAttempt(ctx context.Context, attempt domain.UserAttempt, answers []domain.UserAnswer) (domain.UserAttempt, error)
	// ListAttempts returns every attempt of a quiz made by a registered user.
	ListAttempts(ctx context.Context, quizID string) ([]domain.UserAttempt, error)
	GetAttempt(ctx context.Context, attemptID int64) (domain.UserAttempt, []domain.UserAnswer, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, username string) (domain.User, error)
}

// Store bundles every persistence concern; both the memory and postgres stores implement it.
type Store interface {
	QuizStore
	QuestionStore
	AttemptStore
	UserStore
}

// LeaderboardCache is a read-through cache of computed leaderboards (in-memory, Redis, etc).
type LeaderboardCache interface {
	Fetch(ctx context.Context, quizID string, load func(context.Context) (domain.Leaderboard, error)) (domain.Leaderboard, error)
	Invalidate(ctx context.Context, quizID string) error
}
