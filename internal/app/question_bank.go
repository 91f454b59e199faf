package app

import (
	"context"
	"fmt"
	"strings"

	"inno-quiz-service/internal/domain"
)

const minOptions = 2

// QuestionBank owns questions and their answer options.
type QuestionBank struct {
	quizzes   QuizStore
	questions QuestionStore
}

func NewQuestionBank(quizzes QuizStore, questions QuestionStore) *QuestionBank {
	return &QuestionBank{quizzes: quizzes, questions: questions}
}

// AddQuestion validates and atomically stores a question with its options.
// The returned options are in insertion order, which defines the option indices.
func (b *QuestionBank) AddQuestion(ctx context.Context, quizID, text string, options []domain.OptionInput) (domain.Question, error) {
	if _, err := b.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Question{}, err
	}
	question, err := buildQuestion(quizID, text, options)
	if err != nil {
		return domain.Question{}, err
	}
	return b.store(ctx, question)
}

// ListQuestions returns the quiz's questions in creation order.
func (b *QuestionBank) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if _, err := b.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return b.questions.ListQuestions(ctx, quizID)
}

func (b *QuestionBank) CountQuestions(ctx context.Context, quizID string) (int, error) {
	if _, err := b.quizzes.GetQuiz(ctx, quizID); err != nil {
		return 0, err
	}
	return b.questions.CountQuestions(ctx, quizID)
}

func (b *QuestionBank) store(ctx context.Context, question domain.Question) (domain.Question, error) {
	created, err := b.questions.CreateQuestions(ctx, []domain.Question{question})
	if err != nil {
		return domain.Question{}, fmt.Errorf("store question: %w", err)
	}
	return created[0], nil
}

func buildQuestion(quizID, text string, options []domain.OptionInput) (domain.Question, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Question{}, domain.Invalid("text", "must not be empty")
	}
	if len(options) < minOptions {
		return domain.Question{}, domain.Invalid("options", fmt.Sprintf("at least %d options required, got %d", minOptions, len(options)))
	}
	question := domain.Question{
		QuizID:  quizID,
		Text:    text,
		Options: make([]domain.AnswerOption, 0, len(options)),
	}
	correct := 0
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return domain.Question{}, domain.Invalid("options", fmt.Sprintf("option %d has empty text", i))
		}
		if opt.IsCorrect {
			correct++
		}
		question.Options = append(question.Options, domain.AnswerOption{
			Position:  i,
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}
	if correct == 0 {
		return domain.Question{}, domain.Invalid("options", "at least one option must be correct")
	}
	return question, nil
}
