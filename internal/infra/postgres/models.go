package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"inno-quiz-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	Username     string    `bun:"username,pk"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID             string    `bun:"id,pk,type:uuid"`
	Name           string    `bun:"name,notnull"`
	Category       int       `bun:"category,notnull"`
	AuthorUsername string    `bun:"author_username,notnull"`
	IsSubmitted    bool      `bun:"is_submitted,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID     int64  `bun:"id,pk,autoincrement"`
	QuizID string `bun:"quiz_id,type:uuid,notnull"`
	Text   string `bun:"text,notnull"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:answer_options"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Position   int    `bun:"position,notnull"`
	Text       string `bun:"text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:user_attempts"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Username       string    `bun:"username,notnull"`
	QuizID         string    `bun:"quiz_id,type:uuid,notnull"`
	StartedAt      time.Time `bun:"started_at,notnull"`
	Score          int       `bun:"score,notnull"`
	CompletionTime float64   `bun:"completion_time,notnull"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers"`

	AttemptID       int64     `bun:"attempt_id,pk"`
	QuestionID      int64     `bun:"question_id,pk"`
	SelectedOptions []int64   `bun:"selected_options,array"`
	SubmittedAt     time.Time `bun:"submitted_at,notnull"`
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:             r.ID,
		Name:           r.Name,
		Category:       domain.Category(r.Category),
		AuthorUsername: r.AuthorUsername,
		IsSubmitted:    r.IsSubmitted,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

func (r attemptRow) toDomain() domain.UserAttempt {
	return domain.UserAttempt{
		ID:             r.ID,
		Username:       r.Username,
		QuizID:         r.QuizID,
		StartedAt:      r.StartedAt.UTC(),
		Score:          r.Score,
		CompletionTime: r.CompletionTime,
	}
}

func (r answerRow) toDomain() domain.UserAnswer {
	selected := make([]int, len(r.SelectedOptions))
	for i, idx := range r.SelectedOptions {
		selected[i] = int(idx)
	}
	return domain.UserAnswer{
		AttemptID:       r.AttemptID,
		QuestionID:      r.QuestionID,
		SelectedOptions: selected,
		SubmittedAt:     r.SubmittedAt.UTC(),
	}
}
