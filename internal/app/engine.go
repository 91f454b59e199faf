package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"inno-quiz-service/internal/domain"
)

// Policy decides how a submission referencing unknown questions is treated.
type Policy string

const (
	// PolicyLenient skips unresolved questions; the answer is still recorded.
	PolicyLenient Policy = "lenient"
	// PolicyStrict rejects the whole submission and records nothing.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown scoring policy %q", raw)
}

// ScoringEngine scores submissions, records them in the attempt ledger and ranks them.
type ScoringEngine struct {
	quizzes   QuizStore
	questions QuestionStore
	attempts  AttemptStore
	users     UserStore
	cache     LeaderboardCache
	policy    Policy
	now       func() time.Time
	log       *slog.Logger
}

func NewScoringEngine(store Store, cache LeaderboardCache, policy Policy, log *slog.Logger) *ScoringEngine {
	if log == nil {
		log = slog.Default()
	}
	return &ScoringEngine{
		quizzes:   store,
		questions: store,
		attempts:  store,
		users:     store,
		cache:     cache,
		policy:    policy,
		now:       time.Now,
		log:       log,
	}
}

// WithClock is test-only for deterministic timestamps.
func (e *ScoringEngine) WithClock(now func() time.Time) *ScoringEngine {
	e.now = now
	return e
}

// SubmitAttempt scores the answers, stores the attempt with its answers and returns
// the attempt's rank among all attempts of the quiz. Questions that were not answered
// count as wrong.
func (e *ScoringEngine) SubmitAttempt(ctx context.Context, quizID, username string, answers []domain.AnswerSubmission, completionTime float64) (domain.SubmissionResult, error) {
	if _, err := e.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.SubmissionResult{}, err
	}
	if _, err := e.users.GetUser(ctx, username); err != nil {
		return domain.SubmissionResult{}, err
	}
	if math.IsNaN(completionTime) || math.IsInf(completionTime, 0) || completionTime < 0 {
		return domain.SubmissionResult{}, domain.Invalid("completionTime", "must be a finite, non-negative number of seconds")
	}

	questions, err := e.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	score, err := e.score(questions, answers)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	now := e.now().UTC()
	records := make([]domain.UserAnswer, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		// first answer for a question wins
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		selected := make([]int, len(a.SelectedOptions))
		copy(selected, a.SelectedOptions)
		records = append(records, domain.UserAnswer{
			QuestionID:      a.QuestionID,
			SelectedOptions: selected,
			SubmittedAt:     now,
		})
	}

	attempt, err := e.attempts.CreateAttempt(ctx, domain.UserAttempt{
		Username:       username,
		QuizID:         quizID,
		StartedAt:      now,
		Score:          score,
		CompletionTime: completionTime,
	}, records)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("record attempt: %w", err)
	}

	if err := e.cache.Invalidate(ctx, quizID); err != nil {
		e.log.Warn("leaderboard cache invalidation failed", slog.String("quiz_id", quizID), slog.Any("error", err))
	}

	all, err := e.attempts.ListAttempts(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	rank := RankOf(RankEntries(all), attempt.ID)

	e.log.Info("attempt recorded",
		slog.String("quiz_id", quizID),
		slog.String("username", username),
		slog.Int64("attempt_id", attempt.ID),
		slog.Int("score", score),
		slog.Int("total", len(questions)),
		slog.Int("rank", rank),
	)
	return domain.SubmissionResult{
		QuizID:         quizID,
		AttemptID:      attempt.ID,
		Score:          score,
		Total:          len(questions),
		CompletionTime: completionTime,
		Rank:           rank,
	}, nil
}

// score counts exactly-matched questions. Under the lenient policy unresolved or
// repeated question references are skipped; under the strict policy they fail.
func (e *ScoringEngine) score(questions []domain.Question, answers []domain.AnswerSubmission) (int, error) {
	byID := make(map[int64]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	score := 0
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			if e.policy == PolicyStrict {
				return 0, domain.Invalid("answers", fmt.Sprintf("question %d answered more than once", a.QuestionID))
			}
			continue
		}
		seen[a.QuestionID] = struct{}{}

		question, ok := byID[a.QuestionID]
		if !ok {
			if e.policy == PolicyStrict {
				return 0, fmt.Errorf("%w: %d", domain.ErrQuestionNotFound, a.QuestionID)
			}
			continue
		}
		if e.policy == PolicyStrict {
			for _, idx := range a.SelectedOptions {
				if idx < 0 || idx >= len(question.Options) {
					return 0, domain.Invalid("answers", fmt.Sprintf("option index %d out of range for question %d", idx, question.ID))
				}
			}
		}
		if IsExactMatch(CorrectIndices(question), a.SelectedOptions) {
			score++
		}
	}
	return score, nil
}

// Leaderboard returns every attempt of the quiz in ranking order.
func (e *ScoringEngine) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return e.cache.Fetch(ctx, quizID, func(ctx context.Context) (domain.Leaderboard, error) {
		attempts, err := e.attempts.ListAttempts(ctx, quizID)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		return domain.Leaderboard{
			QuizID:   quiz.ID,
			QuizName: quiz.Name,
			Entries:  RankEntries(attempts),
		}, nil
	})
}

// Attempt returns a stored attempt with the answers exactly as submitted.
func (e *ScoringEngine) Attempt(ctx context.Context, attemptID int64) (domain.AttemptDetail, error) {
	attempt, answers, err := e.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AttemptDetail{}, err
	}
	return domain.AttemptDetail{UserAttempt: attempt, Answers: answers}, nil
}
