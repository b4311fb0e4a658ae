package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the credential in Redis with a TTL of TokenLifetime.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Namespace prefixes the key, so several clients can share a server.
	Namespace string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	ns := opts.Namespace
	if ns == "" {
		ns = "hcv"
	}
	return &RedisStore{rdb: rdb, key: ns + ":" + CredentialName}, nil
}

// Save stores token, replacing any previous value and resetting the TTL.
func (s *RedisStore) Save(ctx context.Context, token string) error {
	return s.rdb.Set(ctx, s.key, token, TokenLifetime).Err()
}

// Read returns the stored token or ErrNoCredential.
func (s *RedisStore) Read(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ExpiresAt returns when the stored token expires.
func (s *RedisStore) ExpiresAt(ctx context.Context) (time.Time, error) {
	ttl, err := s.rdb.TTL(ctx, s.key).Result()
	if err != nil {
		return time.Time{}, err
	}
	if ttl < 0 {
		return time.Time{}, ErrNoCredential
	}
	return time.Now().Add(ttl), nil
}

// Clear deletes the stored token.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
