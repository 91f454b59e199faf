package memory

import (
	"context"
	"testing"
	"time"

	"inno-quiz-service/internal/domain"
)

func TestLeaderboardCacheCaches(t *testing.T) {
	loader := &countingLoader{board: sampleBoard()}
	cache := NewLeaderboardCache(time.Minute)

	if _, err := cache.Fetch(context.Background(), "quiz-1", loader.load); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	board, err := cache.Fetch(context.Background(), "quiz-1", loader.load)
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if len(board.Entries) != 2 || board.Entries[0].Username != "alice" {
		t.Fatalf("unexpected cached board %+v", board)
	}
}

func TestLeaderboardCacheInvalidate(t *testing.T) {
	loader := &countingLoader{board: sampleBoard()}
	cache := NewLeaderboardCache(time.Minute)
	ctx := context.Background()

	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestLeaderboardCacheExpires(t *testing.T) {
	loader := &countingLoader{board: sampleBoard()}
	cache := NewLeaderboardCache(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	now = now.Add(2 * time.Minute)
	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestLeaderboardCacheDisabledWithZeroTTL(t *testing.T) {
	loader := &countingLoader{board: sampleBoard()}
	cache := NewLeaderboardCache(0)
	ctx := context.Background()

	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	_, _ = cache.Fetch(ctx, "quiz-1", loader.load)
	if loader.calls != 2 {
		t.Fatalf("expected no caching, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	board domain.Leaderboard
	calls int
}

func (l *countingLoader) load(context.Context) (domain.Leaderboard, error) {
	l.calls++
	return l.board, nil
}

func sampleBoard() domain.Leaderboard {
	return domain.Leaderboard{
		QuizID:   "quiz-1",
		QuizName: "Geo",
		Entries: []domain.LeaderboardEntry{
			{AttemptID: 1, Username: "alice", Score: 1, CompletionTime: 5},
			{AttemptID: 2, Username: "bob", Score: 0, CompletionTime: 3},
		},
	}
}

// gatedLoader returns a snapshot taken before it blocks, like a leaderboard
// query that finished reading just before a new attempt was committed.
type gatedLoader struct {
	snapshot domain.Leaderboard
	entered  chan struct{}
	release  chan struct{}
}

func newGatedLoader(board domain.Leaderboard) *gatedLoader {
	return &gatedLoader{snapshot: board, entered: make(chan struct{}), release: make(chan struct{})}
}

func (l *gatedLoader) load(context.Context) (domain.Leaderboard, error) {
	close(l.entered)
	<-l.release
	return l.snapshot, nil
}

func TestLeaderboardCacheDropsLoadStartedBeforeInvalidate(t *testing.T) {
	cache := NewLeaderboardCache(time.Minute)
	ctx := context.Background()

	stale := sampleBoard()
	stale.Entries = stale.Entries[:1]
	gated := newGatedLoader(stale)

	done := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(ctx, "quiz-1", gated.load)
		done <- err
	}()
	<-gated.entered

	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("gated fetch: %v", err)
	}

	fresh := &countingLoader{board: sampleBoard()}
	board, err := cache.Fetch(ctx, "quiz-1", fresh.load)
	if err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if fresh.calls != 1 || len(board.Entries) != 2 {
		t.Fatalf("expected fresh board after invalidate, loader calls %d, entries %d", fresh.calls, len(board.Entries))
	}
}
