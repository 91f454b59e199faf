package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

var _ app.Store = (*Store)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store implements app.Store on Postgres. Writes go through bun; every grouped
// create runs in a single transaction. Attempt listings use the pgx reader.
type Store struct {
	db     *bun.DB
	reader *AttemptReader
}

func NewStore(db *bun.DB, reader *AttemptReader) *Store {
	return &Store{db: db, reader: reader}
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	row := &userRow{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if pgCode(err) == uniqueViolation {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, username string) (domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("username = ?", username).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return domain.User{Username: row.Username, PasswordHash: row.PasswordHash, CreatedAt: row.CreatedAt.UTC()}, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	row := &quizRow{
		ID:             quiz.ID,
		Name:           quiz.Name,
		Category:       int(quiz.Category),
		AuthorUsername: quiz.AuthorUsername,
		IsSubmitted:    quiz.IsSubmitted,
		CreatedAt:      quiz.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if !isUUID(quizID) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	row := new(quizRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", quizID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) MarkSubmitted(ctx context.Context, quizID string) (domain.Quiz, error) {
	if !isUUID(quizID) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	res, err := s.db.NewUpdate().
		Model((*quizRow)(nil)).
		Set("is_submitted = TRUE").
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("publish quiz: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.GetQuiz(ctx, quizID)
}

func (s *Store) ListQuizzesByAuthor(ctx context.Context, author string) ([]domain.Quiz, error) {
	var rows []quizRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("author_username = ?", author).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, r.toDomain())
	}
	return quizzes, nil
}

func (s *Store) CreateQuestions(ctx context.Context, questions []domain.Question) ([]domain.Question, error) {
	created := make([]domain.Question, 0, len(questions))
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, q := range questions {
			if !isUUID(q.QuizID) {
				return domain.ErrQuizNotFound
			}
			qRow := &questionRow{QuizID: q.QuizID, Text: q.Text}
			if _, err := tx.NewInsert().Model(qRow).Returning("id").Exec(ctx); err != nil {
				if pgCode(err) == foreignKeyViolation {
					return domain.ErrQuizNotFound
				}
				return fmt.Errorf("insert question: %w", err)
			}

			optRows := make([]optionRow, len(q.Options))
			for i, opt := range q.Options {
				optRows[i] = optionRow{QuestionID: qRow.ID, Position: i, Text: opt.Text, IsCorrect: opt.IsCorrect}
			}
			if len(optRows) > 0 {
				if _, err := tx.NewInsert().Model(&optRows).Returning("id").Exec(ctx); err != nil {
					return fmt.Errorf("insert options: %w", err)
				}
			}
			created = append(created, toQuestion(*qRow, optRows))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if !isUUID(quizID) {
		return []domain.Question{}, nil
	}
	var qRows []questionRow
	if err := s.db.NewSelect().Model(&qRows).Where("quiz_id = ?", quizID).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(qRows) == 0 {
		return []domain.Question{}, nil
	}

	ids := make([]int64, len(qRows))
	for i, r := range qRows {
		ids[i] = r.ID
	}
	var optRows []optionRow
	err := s.db.NewSelect().
		Model(&optRows).
		Where("question_id IN (?)", bun.In(ids)).
		Order("question_id ASC", "position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	byQuestion := make(map[int64][]optionRow, len(qRows))
	for _, o := range optRows {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	questions := make([]domain.Question, 0, len(qRows))
	for _, r := range qRows {
		questions = append(questions, toQuestion(r, byQuestion[r.ID]))
	}
	return questions, nil
}

func (s *Store) CountQuestions(ctx context.Context, quizID string) (int, error) {
	if !isUUID(quizID) {
		return 0, nil
	}
	n, err := s.db.NewSelect().Model((*questionRow)(nil)).Where("quiz_id = ?", quizID).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *Store) CreateAttempt(ctx context.Context, attempt domain.UserAttempt, answers []domain.UserAnswer) (domain.UserAttempt, error) {
	row := &attemptRow{
		Username:       attempt.Username,
		QuizID:         attempt.QuizID,
		StartedAt:      attempt.StartedAt,
		Score:          attempt.Score,
		CompletionTime: attempt.CompletionTime,
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
			if pgCode(err) == foreignKeyViolation {
				if strings.Contains(pgConstraint(err), "username") {
					return domain.ErrUserNotFound
				}
				return domain.ErrQuizNotFound
			}
			return fmt.Errorf("insert attempt: %w", err)
		}
		if len(answers) == 0 {
			return nil
		}
		answerRows := make([]answerRow, len(answers))
		for i, a := range answers {
			selected := make([]int64, len(a.SelectedOptions))
			for j, idx := range a.SelectedOptions {
				selected[j] = int64(idx)
			}
			answerRows[i] = answerRow{
				AttemptID:       row.ID,
				QuestionID:      a.QuestionID,
				SelectedOptions: selected,
				SubmittedAt:     a.SubmittedAt,
			}
		}
		if _, err := tx.NewInsert().Model(&answerRows).Exec(ctx); err != nil {
			return fmt.Errorf("insert answers: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.UserAttempt{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) ListAttempts(ctx context.Context, quizID string) ([]domain.UserAttempt, error) {
	return s.reader.ListAttempts(ctx, quizID)
}

func (s *Store) GetAttempt(ctx context.Context, attemptID int64) (domain.UserAttempt, []domain.UserAnswer, error) {
	row := new(attemptRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", attemptID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserAttempt{}, nil, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.UserAttempt{}, nil, fmt.Errorf("get attempt: %w", err)
	}
	var answerRows []answerRow
	if err := s.db.NewSelect().Model(&answerRows).Where("attempt_id = ?", attemptID).Order("question_id ASC").Scan(ctx); err != nil {
		return domain.UserAttempt{}, nil, fmt.Errorf("get answers: %w", err)
	}
	answers := make([]domain.UserAnswer, 0, len(answerRows))
	for _, r := range answerRows {
		answers = append(answers, r.toDomain())
	}
	return row.toDomain(), answers, nil
}

func toQuestion(r questionRow, opts []optionRow) domain.Question {
	q := domain.Question{
		ID:      r.ID,
		QuizID:  r.QuizID,
		Text:    r.Text,
		Options: make([]domain.AnswerOption, 0, len(opts)),
	}
	for _, o := range opts {
		q.Options = append(q.Options, domain.AnswerOption{
			ID:         o.ID,
			QuestionID: o.QuestionID,
			Position:   o.Position,
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
		})
	}
	return q
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func pgCode(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func pgConstraint(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('n')
	}
	return ""
}
