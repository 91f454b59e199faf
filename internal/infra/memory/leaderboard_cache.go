package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

var _ app.LeaderboardCache = (*LeaderboardCache)(nil)

// LeaderboardCache caches computed leaderboards with TTL to avoid recomputing on every read.
// A non-positive TTL disables caching but still collapses concurrent loads.
// Every Invalidate bumps the quiz's generation; a load that began under an older
// generation returns its board to the caller but never caches it.
type LeaderboardCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand
	rndMu sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedLeaderboard
	gens  map[string]uint64
}

type cachedLeaderboard struct {
	board     domain.Leaderboard
	expiresAt time.Time
}

func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedLeaderboard),
		gens:  make(map[string]uint64),
	}
}

func (c *LeaderboardCache) Fetch(ctx context.Context, quizID string, load func(context.Context) (domain.Leaderboard, error)) (domain.Leaderboard, error) {
	if board, ok := c.lookup(quizID); ok {
		return board, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		if board, ok := c.lookup(quizID); ok {
			return board, nil
		}
		gen := c.generation(quizID)
		board, err := load(ctx)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			if c.gens[quizID] == gen {
				c.cache[quizID] = cachedLeaderboard{board: board, expiresAt: c.clock().Add(ttl)}
			}
			c.mu.Unlock()
		}
		return board, nil
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return result.(domain.Leaderboard), nil
}

func (c *LeaderboardCache) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.gens[quizID]++
	c.mu.Unlock()
	c.sf.Forget(quizID)
	return nil
}

func (c *LeaderboardCache) generation(quizID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[quizID]
}

func (c *LeaderboardCache) lookup(quizID string) (domain.Leaderboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Leaderboard{}, false
	}
	board := entry.board
	board.Entries = make([]domain.LeaderboardEntry, len(entry.board.Entries))
	copy(board.Entries, entry.board.Entries)
	return board, true
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
