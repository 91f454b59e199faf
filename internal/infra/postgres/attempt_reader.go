package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"inno-quiz-service/internal/domain"
)

const listAttemptsSQL = `
SELECT a.id, a.username, a.quiz_id::text, a.started_at, a.score, a.completion_time
FROM user_attempts a
JOIN users u ON u.username = a.username
WHERE a.quiz_id = $1
ORDER BY a.score DESC, a.completion_time ASC, a.id ASC`

// AttemptReader serves the leaderboard read path straight from a pgx pool.
type AttemptReader struct {
	pool *pgxpool.Pool
}

func NewAttemptReader(pool *pgxpool.Pool) *AttemptReader {
	return &AttemptReader{pool: pool}
}

// ListAttempts returns the quiz's attempts joined to their users, already in ranking order.
func (r *AttemptReader) ListAttempts(ctx context.Context, quizID string) ([]domain.UserAttempt, error) {
	if !isUUID(quizID) {
		return []domain.UserAttempt{}, nil
	}
	rows, err := r.pool.Query(ctx, listAttemptsSQL, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]domain.UserAttempt, 0)
	for rows.Next() {
		var a domain.UserAttempt
		if err := rows.Scan(&a.ID, &a.Username, &a.QuizID, &a.StartedAt, &a.Score, &a.CompletionTime); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.StartedAt = a.StartedAt.UTC()
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
