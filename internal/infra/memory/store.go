package memory

import (
	"context"
	"sync"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

var _ app.Store = (*Store)(nil)

// Store is an in-memory implementation of app.Store. Every grouped create happens
// under one lock, so it is all-or-nothing like a database transaction.
type Store struct {
	mu        sync.RWMutex
	users     *table[string, domain.User]
	quizzes   *table[string, domain.Quiz]
	questions *table[int64, domain.Question]
	attempts  *table[int64, domain.UserAttempt]
	answers   map[int64][]domain.UserAnswer

	nextQuestionID int64
	nextOptionID   int64
	nextAttemptID  int64
}

func NewStore() *Store {
	return &Store{
		users:     newTable[string, domain.User](),
		quizzes:   newTable[string, domain.Quiz](),
		questions: newTable[int64, domain.Question](),
		attempts:  newTable[int64, domain.UserAttempt](),
		answers:   make(map[int64][]domain.UserAnswer),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users.has(user.Username) {
		return domain.ErrUserExists
	}
	s.users.put(user.Username, user)
	return nil
}

func (s *Store) GetUser(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users.get(username)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes.put(quiz.ID, quiz)
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes.get(quizID)
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) MarkSubmitted(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes.get(quizID)
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.IsSubmitted = true
	s.quizzes.put(quizID, quiz)
	return quiz, nil
}

func (s *Store) ListQuizzesByAuthor(_ context.Context, author string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quizzes.filter(func(q domain.Quiz) bool { return q.AuthorUsername == author }), nil
}

func (s *Store) CreateQuestions(_ context.Context, questions []domain.Question) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		if !s.quizzes.has(q.QuizID) {
			return nil, domain.ErrQuizNotFound
		}
	}
	created := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		s.nextQuestionID++
		stored := domain.Question{
			ID:      s.nextQuestionID,
			QuizID:  q.QuizID,
			Text:    q.Text,
			Options: make([]domain.AnswerOption, len(q.Options)),
		}
		for i, opt := range q.Options {
			s.nextOptionID++
			opt.ID = s.nextOptionID
			opt.QuestionID = stored.ID
			opt.Position = i
			stored.Options[i] = opt
		}
		s.questions.put(stored.ID, stored)
		created = append(created, cloneQuestion(stored))
	}
	return created, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.questions.filter(func(q domain.Question) bool { return q.QuizID == quizID })
	for i := range rows {
		rows[i] = cloneQuestion(rows[i])
	}
	return rows, nil
}

func (s *Store) CountQuestions(ctx context.Context, quizID string) (int, error) {
	questions, err := s.ListQuestions(ctx, quizID)
	return len(questions), err
}

func (s *Store) CreateAttempt(_ context.Context, attempt domain.UserAttempt, answers []domain.UserAnswer) (domain.UserAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quizzes.has(attempt.QuizID) {
		return domain.UserAttempt{}, domain.ErrQuizNotFound
	}
	if !s.users.has(attempt.Username) {
		return domain.UserAttempt{}, domain.ErrUserNotFound
	}
	s.nextAttemptID++
	attempt.ID = s.nextAttemptID
	stored := make([]domain.UserAnswer, len(answers))
	for i, a := range answers {
		a.AttemptID = attempt.ID
		a.SelectedOptions = append([]int(nil), a.SelectedOptions...)
		stored[i] = a
	}
	s.attempts.put(attempt.ID, attempt)
	s.answers[attempt.ID] = stored
	return attempt, nil
}

func (s *Store) ListAttempts(_ context.Context, quizID string) ([]domain.UserAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts.filter(func(a domain.UserAttempt) bool { return a.QuizID == quizID }), nil
}

func (s *Store) GetAttempt(_ context.Context, attemptID int64) (domain.UserAttempt, []domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts.get(attemptID)
	if !ok {
		return domain.UserAttempt{}, nil, domain.ErrAttemptNotFound
	}
	answers := make([]domain.UserAnswer, len(s.answers[attemptID]))
	for i, a := range s.answers[attemptID] {
		a.SelectedOptions = append([]int(nil), a.SelectedOptions...)
		answers[i] = a
	}
	return attempt, answers, nil
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.AnswerOption(nil), q.Options...)
	return q
}
