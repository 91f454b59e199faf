package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"inno-quiz-service/internal/domain"
)

// MaxImportCount is the largest batch the provider serves in one request.
const MaxImportCount = 50

// ImportMode selects the commit granularity of an import batch.
type ImportMode string

const (
	// ImportBestEffort commits each question on its own; a mid-batch failure keeps
	// the questions stored so far.
	ImportBestEffort ImportMode = "best-effort"
	// ImportAtomic validates and stores the whole batch in one transaction.
	ImportAtomic ImportMode = "atomic"
)

func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(raw) {
	case "", ImportBestEffort:
		return ImportBestEffort, nil
	case ImportAtomic:
		return ImportAtomic, nil
	}
	return "", fmt.Errorf("unknown import mode %q", raw)
}

// TriviaClient fetches question batches from the external provider.
type TriviaClient interface {
	FetchQuestions(ctx context.Context, query domain.TriviaQuery) ([]domain.TriviaItem, error)
}

// providerRejection is implemented by client errors where the provider answered
// but refused the request (bad parameters, not enough questions).
type providerRejection interface {
	Rejected() bool
}

// TriviaImporter turns provider questions into question bank entries.
type TriviaImporter struct {
	quizzes      QuizStore
	bank         *QuestionBank
	client       TriviaClient
	mode         ImportMode
	questionType string
	log          *slog.Logger
}

func NewTriviaImporter(quizzes QuizStore, bank *QuestionBank, client TriviaClient, mode ImportMode, questionType string, log *slog.Logger) *TriviaImporter {
	if log == nil {
		log = slog.Default()
	}
	return &TriviaImporter{
		quizzes:      quizzes,
		bank:         bank,
		client:       client,
		mode:         mode,
		questionType: questionType,
		log:          log,
	}
}

// ImportOption tweaks a single import request.
type ImportOption func(*domain.TriviaQuery)

// WithDifficulty restricts the batch to easy, medium or hard questions.
func WithDifficulty(difficulty string) ImportOption {
	return func(q *domain.TriviaQuery) { q.Difficulty = difficulty }
}

// ImportQuestions fetches count questions and adds them to the quiz. A category that
// parses as an integer is forwarded to the provider; anything else means no filter.
func (i *TriviaImporter) ImportQuestions(ctx context.Context, quizID string, count int, category string, opts ...ImportOption) ([]domain.Question, error) {
	if _, err := i.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	if count < 1 || count > MaxImportCount {
		return nil, domain.Invalid("count", fmt.Sprintf("must be between 1 and %d", MaxImportCount))
	}

	query := domain.TriviaQuery{Amount: count, Type: i.questionType}
	if id, err := strconv.Atoi(category); err == nil {
		query.Category = domain.Category(id)
	}
	for _, opt := range opts {
		opt(&query)
	}

	items, err := i.client.FetchQuestions(ctx, query)
	if err != nil {
		i.log.Warn("trivia fetch failed", slog.String("quiz_id", quizID), slog.Any("error", err))
		return nil, translateProviderError(err)
	}

	var created []domain.Question
	if i.mode == ImportAtomic {
		created, err = i.importAtomic(ctx, quizID, items)
	} else {
		created, err = i.importBestEffort(ctx, quizID, items)
	}
	i.log.Info("trivia import finished",
		slog.String("quiz_id", quizID),
		slog.Int("requested", count),
		slog.Int("received", len(items)),
		slog.Int("stored", len(created)),
		slog.String("mode", string(i.mode)),
	)
	return created, err
}

func (i *TriviaImporter) importBestEffort(ctx context.Context, quizID string, items []domain.TriviaItem) ([]domain.Question, error) {
	created := make([]domain.Question, 0, len(items))
	for n, item := range items {
		question, err := normalizeItem(quizID, item)
		if err != nil {
			return created, fmt.Errorf("import item %d: %w", n, err)
		}
		stored, err := i.bank.store(ctx, question)
		if err != nil {
			return created, fmt.Errorf("import item %d: %w", n, err)
		}
		created = append(created, stored)
	}
	return created, nil
}

func (i *TriviaImporter) importAtomic(ctx context.Context, quizID string, items []domain.TriviaItem) ([]domain.Question, error) {
	if len(items) == 0 {
		return []domain.Question{}, nil
	}
	questions := make([]domain.Question, 0, len(items))
	for n, item := range items {
		question, err := normalizeItem(quizID, item)
		if err != nil {
			return nil, fmt.Errorf("import item %d: %w", n, err)
		}
		questions = append(questions, question)
	}
	created, err := i.bank.questions.CreateQuestions(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("store imported questions: %w", err)
	}
	return created, nil
}

// normalizeItem places the correct answer at index 0 followed by the distractors.
func normalizeItem(quizID string, item domain.TriviaItem) (domain.Question, error) {
	options := make([]domain.OptionInput, 0, len(item.IncorrectAnswers)+1)
	options = append(options, domain.OptionInput{Text: item.CorrectAnswer, IsCorrect: true})
	for _, text := range item.IncorrectAnswers {
		options = append(options, domain.OptionInput{Text: text})
	}
	return buildQuestion(quizID, item.Question, options)
}

func translateProviderError(err error) error {
	if errors.Is(err, domain.ErrProviderRequest) || errors.Is(err, domain.ErrProviderUnavailable) {
		return err
	}
	var rejection providerRejection
	if errors.As(err, &rejection) && rejection.Rejected() {
		return fmt.Errorf("%w: %v", domain.ErrProviderRequest, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
}
