package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"inno-quiz-service/internal/domain"
)

// QuizCatalog owns quiz lifecycle: draft creation, publication and metadata lookups.
type QuizCatalog struct {
	quizzes   QuizStore
	questions QuestionStore
	now       func() time.Time
}

func NewQuizCatalog(quizzes QuizStore, questions QuestionStore) *QuizCatalog {
	return &QuizCatalog{quizzes: quizzes, questions: questions, now: time.Now}
}

// WithClock is test-only for deterministic timestamps.
func (c *QuizCatalog) WithClock(now func() time.Time) *QuizCatalog {
	c.now = now
	return c
}

// CreateQuiz stores a new draft quiz.
func (c *QuizCatalog) CreateQuiz(ctx context.Context, name string, category domain.Category, author string) (domain.Quiz, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Quiz{}, domain.Invalid("name", "must not be empty")
	}
	if strings.TrimSpace(author) == "" {
		return domain.Quiz{}, domain.Invalid("author", "must not be empty")
	}
	if !category.Valid() {
		return domain.Quiz{}, domain.Invalid("category", "unknown category")
	}
	quiz := domain.Quiz{
		ID:             uuid.NewString(),
		Name:           name,
		Category:       category,
		AuthorUsername: author,
		CreatedAt:      c.now().UTC(),
	}
	if err := c.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// PublishQuiz marks the quiz submitted. Publishing twice is not an error.
func (c *QuizCatalog) PublishQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return c.quizzes.MarkSubmitted(ctx, quizID)
}

func (c *QuizCatalog) GetQuizInfo(ctx context.Context, quizID string) (domain.QuizInfo, error) {
	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizInfo{}, err
	}
	count, err := c.questions.CountQuestions(ctx, quizID)
	if err != nil {
		return domain.QuizInfo{}, err
	}
	return domain.QuizInfo{Quiz: quiz, QuestionCount: count}, nil
}

// ListQuizQuestions renders the quiz's questions with their correct option indices.
func (c *QuizCatalog) ListQuizQuestions(ctx context.Context, quizID string) (domain.QuizQuestions, error) {
	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizQuestions{}, err
	}
	questions, err := c.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.QuizQuestions{}, err
	}
	views := make([]domain.QuestionView, 0, len(questions))
	for _, q := range questions {
		texts := make([]string, 0, len(q.Options))
		for _, opt := range q.Options {
			texts = append(texts, opt.Text)
		}
		views = append(views, domain.QuestionView{
			ID:             q.ID,
			Text:           q.Text,
			Options:        texts,
			CorrectOptions: CorrectIndices(q),
		})
	}
	return domain.QuizQuestions{
		QuizID:    quiz.ID,
		Name:      quiz.Name,
		Category:  quiz.Category,
		Questions: views,
	}, nil
}

func (c *QuizCatalog) ListQuizzesByAuthor(ctx context.Context, author string) ([]domain.Quiz, error) {
	return c.quizzes.ListQuizzesByAuthor(ctx, author)
}
