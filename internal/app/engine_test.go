package app_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

func TestSubmitAttemptScoresExactMatches(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice", "bob")
	quiz, qs := e.quizWithQuestions(t,
		[]bool{false, true, false},
		[]bool{true, false, true},
	)

	alice, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", []domain.AnswerSubmission{
		{QuestionID: qs[0].ID, SelectedOptions: []int{1}},
		{QuestionID: qs[1].ID, SelectedOptions: []int{2, 0}},
	}, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, alice.Score)
	assert.Equal(t, 2, alice.Total)
	assert.Equal(t, 1, alice.Rank)

	bob, err := e.engine.SubmitAttempt(ctx, quiz.ID, "bob", []domain.AnswerSubmission{
		{QuestionID: qs[0].ID, SelectedOptions: []int{1}},
		{QuestionID: qs[1].ID, SelectedOptions: []int{0}},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Score)
	assert.Equal(t, 2, bob.Rank)

	board, err := e.engine.Leaderboard(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "alice", board.Entries[0].Username)
	assert.Equal(t, "bob", board.Entries[1].Username)
	assert.Equal(t, quiz.Name, board.QuizName)
}

func TestSubmitAttemptRankMatchesLeaderboard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice", "bob", "carol")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false})

	// Warm the cache so later submissions must invalidate it.
	_, err := e.engine.Leaderboard(ctx, quiz.ID)
	require.NoError(t, err)

	submissions := []struct {
		user     string
		selected []int
		elapsed  float64
	}{
		{"alice", []int{0}, 30},
		{"bob", []int{1}, 5},
		{"carol", []int{0}, 12},
	}
	for _, s := range submissions {
		result, err := e.engine.SubmitAttempt(ctx, quiz.ID, s.user, []domain.AnswerSubmission{
			{QuestionID: qs[0].ID, SelectedOptions: s.selected},
		}, s.elapsed)
		require.NoError(t, err)

		board, err := e.engine.Leaderboard(ctx, quiz.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.Rank, 1)
		assert.Equal(t, result.AttemptID, board.Entries[result.Rank-1].AttemptID, "rank of %s", s.user)
	}
}

func TestSubmitAttemptTieBreaksByAttemptID(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice", "bob")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false})
	answers := []domain.AnswerSubmission{{QuestionID: qs[0].ID, SelectedOptions: []int{0}}}

	first, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", answers, 15)
	require.NoError(t, err)
	second, err := e.engine.SubmitAttempt(ctx, quiz.ID, "bob", answers, 15)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, 2, second.Rank)
}

func TestSubmitAttemptUnknownQuizWritesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")

	_, err := e.engine.SubmitAttempt(ctx, "missing", "alice", nil, 1)
	require.ErrorIs(t, err, domain.ErrQuizNotFound)

	attempts, err := e.store.ListAttempts(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestSubmitAttemptUnknownUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, _ := e.quizWithQuestions(t, []bool{true, false})

	_, err := e.engine.SubmitAttempt(ctx, quiz.ID, "mallory", nil, 1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubmitAttemptRejectsBadCompletionTime(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, _ := e.quizWithQuestions(t, []bool{true, false})

	for _, elapsed := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", nil, elapsed)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestSubmitAttemptEmptyQuizScoresZero(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, _ := e.quizWithQuestions(t)

	result, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 1, result.Rank)
}

func TestLenientPolicySkipsUnknownQuestionsButStoresThem(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false})

	result, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", []domain.AnswerSubmission{
		{QuestionID: qs[0].ID, SelectedOptions: []int{0}},
		{QuestionID: 9999, SelectedOptions: []int{0}},
		{QuestionID: qs[0].ID, SelectedOptions: []int{1}},
	}, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)

	detail, err := e.engine.Attempt(ctx, result.AttemptID)
	require.NoError(t, err)
	require.Len(t, detail.Answers, 2)
	assert.Equal(t, []int{0}, detail.Answers[0].SelectedOptions, "first answer wins")
	assert.Equal(t, int64(9999), detail.Answers[1].QuestionID)
}

func TestOutOfRangeIndicesAreStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false})

	result, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", []domain.AnswerSubmission{
		{QuestionID: qs[0].ID, SelectedOptions: []int{5, 0}},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)

	detail, err := e.engine.Attempt(ctx, result.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 0}, detail.Answers[0].SelectedOptions)
}

func TestStrictPolicyRejectsAndWritesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyStrict)
	e.users(t, "alice")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false})

	cases := []struct {
		name    string
		answers []domain.AnswerSubmission
		want    error
	}{
		{"unknown question", []domain.AnswerSubmission{{QuestionID: 9999, SelectedOptions: []int{0}}}, domain.ErrQuestionNotFound},
		{"duplicate question", []domain.AnswerSubmission{
			{QuestionID: qs[0].ID, SelectedOptions: []int{0}},
			{QuestionID: qs[0].ID, SelectedOptions: []int{1}},
		}, domain.ErrValidation},
		{"index out of range", []domain.AnswerSubmission{{QuestionID: qs[0].ID, SelectedOptions: []int{2}}}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", tc.answers, 1)
			require.ErrorIs(t, err, tc.want)
		})
	}

	attempts, err := e.store.ListAttempts(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestScoreStaysWithinTotal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, app.PolicyLenient)
	e.users(t, "alice")
	quiz, qs := e.quizWithQuestions(t, []bool{true, false}, []bool{false, true}, []bool{true, true})

	var answers []domain.AnswerSubmission
	for _, q := range qs {
		for i := 0; i < 3; i++ {
			answers = append(answers, domain.AnswerSubmission{QuestionID: q.ID, SelectedOptions: app.CorrectIndices(q)})
		}
	}
	result, err := e.engine.SubmitAttempt(ctx, quiz.ID, "alice", answers, 1)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result.Score)
	assert.LessOrEqual(t, result.Score, len(qs))
}

func TestAttemptNotFound(t *testing.T) {
	e := newEnv(t, app.PolicyLenient)
	_, err := e.engine.Attempt(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrAttemptNotFound)
}

func TestLeaderboardUnknownQuiz(t *testing.T) {
	e := newEnv(t, app.PolicyLenient)
	_, err := e.engine.Leaderboard(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestParsePolicy(t *testing.T) {
	p, err := app.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, app.PolicyLenient, p)
	p, err = app.ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, app.PolicyStrict, p)
	_, err = app.ParsePolicy("harsh")
	assert.Error(t, err)
}
