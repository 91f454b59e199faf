package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"inno-quiz-service/internal/app"
	"inno-quiz-service/internal/auth"
	"inno-quiz-service/internal/config"
	"inno-quiz-service/internal/infra/memory"
	"inno-quiz-service/internal/infra/postgres"
	redisinfra "inno-quiz-service/internal/infra/redis"
	"inno-quiz-service/internal/infra/trivia"
	"inno-quiz-service/internal/lib/slogcustom"
	transport "inno-quiz-service/internal/transport/http"
)

// runtime holds the wired services and the resources that must be released on exit.
type runtime struct {
	cfg      config.Config
	log      *slog.Logger
	services transport.Services
	tokens   *auth.Tokens
	closers  []func() error
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.log.Warn("close failed", slog.Any("error", err))
		}
	}
}

func openBun(url string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// buildRuntime picks postgres or the in-memory store depending on postgres.url and
// redis or an in-process leaderboard cache depending on redis.addr.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	log := slogcustom.New(cfg.Log.Format, cfg.Log.Level)
	rt := &runtime{cfg: cfg, log: log}

	policy, err := app.ParsePolicy(cfg.Scoring.Policy)
	if err != nil {
		return nil, err
	}
	mode, err := app.ParseImportMode(cfg.Import.Mode)
	if err != nil {
		return nil, err
	}

	var store app.Store
	if cfg.Postgres.URL != "" {
		db := openBun(cfg.Postgres.URL)
		rt.closers = append(rt.closers, db.Close)
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		store = postgres.NewStore(db, postgres.NewAttemptReader(pool))
		log.Info("using postgres store")
	} else {
		store = memory.NewStore()
		log.Info("using in-memory store")
	}

	ttl := config.TTLDuration(cfg.Leaderboard.TTL, 30*time.Second)
	var cache app.LeaderboardCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, client.Close)
		cache = redisinfra.NewLeaderboardCache(client, ttl, log)
	} else {
		cache = memory.NewLeaderboardCache(ttl)
	}

	client := trivia.NewClient(cfg.Trivia.BaseURL, config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second))
	bank := app.NewQuestionBank(store, store)
	rt.services = transport.Services{
		Catalog:  app.NewQuizCatalog(store, store),
		Bank:     bank,
		Importer: app.NewTriviaImporter(store, bank, client, mode, cfg.Trivia.Type, log),
		Engine:   app.NewScoringEngine(store, cache, policy, log),
		Accounts: app.NewAccountService(store, auth.BcryptHasher{}),
	}
	if cfg.Auth.JWTSecret != "" {
		rt.tokens = auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 2*time.Hour))
	} else {
		log.Warn("auth.jwt_secret not set; trusting X-Username header")
	}
	return rt, nil
}
