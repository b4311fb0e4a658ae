package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/config"
)

// Store is the interface shared by the credential backends.
type Store interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	ExpiresAt(ctx context.Context) (time.Time, error)
	Clear(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*RedisStore)(nil)
)

// Open returns the credential backend selected by cfg.TokenStore.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case config.StoreRedis:
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis token store: %w", err)
		}
		return s, nil
	case config.StoreSQLite, "":
		db, err := NewDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("sqlite token store: %w", err)
		}
		if err := db.CleanExpired(ctx); err != nil {
			slog.Warn("could not prune expired credentials", "error", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
