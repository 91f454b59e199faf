package app

import (
	"sort"

	"inno-quiz-service/internal/domain"
)

// CorrectIndices returns the option indices flagged correct, ascending.
func CorrectIndices(q domain.Question) []int {
	indices := make([]int, 0, 1)
	for i, opt := range q.Options {
		if opt.IsCorrect {
			indices = append(indices, i)
		}
	}
	return indices
}

// IsExactMatch reports whether selected equals correct as unordered sets.
// Subsets and supersets never match; repeated indices collapse.
func IsExactMatch(correct, selected []int) bool {
	want := indexSet(correct)
	got := indexSet(selected)
	if len(want) != len(got) {
		return false
	}
	for idx := range got {
		if _, ok := want[idx]; !ok {
			return false
		}
	}
	return true
}

func indexSet(indices []int) map[int]struct{} {
	set := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		set[idx] = struct{}{}
	}
	return set
}

// lessEntry orders by score desc, completion time asc, then attempt id asc.
func lessEntry(a, b domain.LeaderboardEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.CompletionTime != b.CompletionTime {
		return a.CompletionTime < b.CompletionTime
	}
	return a.AttemptID < b.AttemptID
}

// SortLeaderboard sorts entries in place by the ranking order.
func SortLeaderboard(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return lessEntry(entries[i], entries[j])
	})
}

// RankEntries converts attempts into sorted leaderboard entries.
func RankEntries(attempts []domain.UserAttempt) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(attempts))
	for _, a := range attempts {
		entries = append(entries, domain.LeaderboardEntry{
			AttemptID:      a.ID,
			Username:       a.Username,
			Score:          a.Score,
			CompletionTime: a.CompletionTime,
			Date:           a.StartedAt,
		})
	}
	SortLeaderboard(entries)
	return entries
}

// RankOf returns the 1-based position of attemptID in sorted entries, or 0 if absent.
func RankOf(entries []domain.LeaderboardEntry, attemptID int64) int {
	for i, e := range entries {
		if e.AttemptID == attemptID {
			return i + 1
		}
	}
	return 0
}
