package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/domain"
)

var _ app.LeaderboardCache = (*LeaderboardCache)(nil)

// LeaderboardCache stores computed leaderboards as JSON strings so every instance
// sharing the Redis sees the same snapshot. Keys: quiz:{quizID}:leaderboard.
// Redis failures degrade to loading from the attempt ledger.
// Invalidate bumps quiz:{quizID}:leaderboard:version; a load only writes back when
// that version is unchanged since the load began, checked under WATCH.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	log    *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *LeaderboardCache {
	if log == nil {
		log = slog.Default()
	}
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) Fetch(ctx context.Context, quizID string, load func(context.Context) (domain.Leaderboard, error)) (domain.Leaderboard, error) {
	key := c.key(quizID)
	if board, ok := c.get(ctx, key); ok {
		return board, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another instance filled it.
		if board, ok := c.get(ctx, key); ok {
			return board, nil
		}
		version, verr := c.version(ctx, c.client, quizID)
		board, err := load(ctx)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		if ttl := c.ttlWithJitter(); ttl > 0 && verr == nil {
			if err := c.store(ctx, quizID, version, board, ttl); err != nil {
				c.log.Warn("leaderboard cache write failed", slog.String("quiz_id", quizID), slog.Any("error", err))
			}
		}
		return board, nil
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return result.(domain.Leaderboard), nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context, quizID string) error {
	c.sf.Forget(quizID)
	if err := c.client.Incr(ctx, c.versionKey(quizID)).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, c.key(quizID)).Err()
}

// store writes board only if the quiz version still equals version.
func (c *LeaderboardCache) store(ctx context.Context, quizID string, version int64, board domain.Leaderboard, ttl time.Duration) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.version(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(quizID), raw, ttl)
			return nil
		})
		return err
	}, c.versionKey(quizID))
	if errors.Is(err, errStaleLoad) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

var errStaleLoad = errors.New("leaderboard invalidated during load")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *LeaderboardCache) version(ctx context.Context, cmd getter, quizID string) (int64, error) {
	v, err := cmd.Get(ctx, c.versionKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *LeaderboardCache) versionKey(quizID string) string {
	return c.key(quizID) + ":version"
}

func (c *LeaderboardCache) get(ctx context.Context, key string) (domain.Leaderboard, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("leaderboard cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return domain.Leaderboard{}, false
	}
	var board domain.Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		return domain.Leaderboard{}, false
	}
	return board, true
}

func (c *LeaderboardCache) key(quizID string) string {
	return "quiz:" + quizID + ":leaderboard"
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
