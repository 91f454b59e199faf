package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

func TestIsExactMatch(t *testing.T) {
	cases := []struct {
		name     string
		correct  []int
		selected []int
		want     bool
	}{
		{"single correct", []int{1}, []int{1}, true},
		{"wrong option", []int{1}, []int{0}, false},
		{"order does not matter", []int{0, 2}, []int{2, 0}, true},
		{"subset", []int{0, 2}, []int{0}, false},
		{"superset", []int{0}, []int{0, 1}, false},
		{"empty selection", []int{0}, []int{}, false},
		{"duplicates collapse", []int{0, 2}, []int{2, 0, 2}, true},
		{"out of range", []int{0}, []int{7}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, app.IsExactMatch(tc.correct, tc.selected))
		})
	}
}

func TestCorrectIndicesFollowOptionOrder(t *testing.T) {
	q := domain.Question{Options: []domain.AnswerOption{
		{Text: "a", IsCorrect: false},
		{Text: "b", IsCorrect: true},
		{Text: "c", IsCorrect: false},
		{Text: "d", IsCorrect: true},
	}}
	assert.Equal(t, []int{1, 3}, app.CorrectIndices(q))
}

func TestRankEntriesOrdering(t *testing.T) {
	attempts := []domain.UserAttempt{
		{ID: 1, Username: "slow", Score: 3, CompletionTime: 50},
		{ID: 2, Username: "low", Score: 1, CompletionTime: 5},
		{ID: 3, Username: "fast", Score: 3, CompletionTime: 20},
		{ID: 4, Username: "tie-late", Score: 3, CompletionTime: 20},
	}
	entries := app.RankEntries(attempts)

	var order []string
	for _, e := range entries {
		order = append(order, e.Username)
	}
	assert.Equal(t, []string{"fast", "tie-late", "slow", "low"}, order)
	assert.Equal(t, 1, app.RankOf(entries, 3))
	assert.Equal(t, 4, app.RankOf(entries, 2))
	assert.Equal(t, 0, app.RankOf(entries, 99))
}

func TestRankEntriesEmpty(t *testing.T) {
	entries := app.RankEntries(nil)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
