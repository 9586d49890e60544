package app

import (
	"context"

	"github.com/okian/papermatch/internal/adapters/cache"
	"github.com/okian/papermatch/internal/adapters/repository"
	"github.com/okian/papermatch/internal/config"
	"github.com/okian/papermatch/internal/domain/feedback"
	"github.com/okian/papermatch/pkg/logger"
)

// Open migrates cfg.DBPath, opens the store and cache it describes and
// returns a started Service. Redis is used when configured so that
// invalidations reach every process sharing the database.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Service, error) {
	if err := repository.Migrate(cfg.DBPath); err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, cfg.DBPath,
		repository.WithMaxOpenConns(cfg.DBMaxOpenConns),
		repository.WithBusyTimeout(cfg.BusyTimeout()),
		repository.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	var c cache.Cache = cache.NewMemory(cache.WithTTL(cfg.CacheTTL()), cache.WithMaxEntries(cfg.CacheSize))
	if cfg.RedisAddr != "" {
		r, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		c = r
	}

	svc := New(store, c,
		WithLogger(log),
		WithAnonymousFeedback(cfg.AnonymousFeedback),
		WithMaxCommentLength(cfg.MaxCommentLength),
		WithPageLimits(min(feedback.DefaultPageLimit, cfg.MaxPageSize), cfg.MaxPageSize),
		WithTrendEpsilon(cfg.TrendEpsilon),
	)
	if err := svc.Start(ctx); err != nil {
		_ = c.Close()
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}
