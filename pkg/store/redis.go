package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis store.
type RedisConfig struct {
	// Client is used as-is when set; the connection fields are ignored.
	Client redis.UniversalClient

	Addr     string
	Username string
	Password string
	DB       int
	UseTLS   bool

	// KeyPrefix is prepended to every key, in addition to the auth prefix
	// the session layer already applies.
	KeyPrefix string
}

// RedisStore keeps session values in Redis.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	owned     bool
}

// NewRedisStore wraps an existing Redis client. The caller keeps ownership of
// the client.
func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// NewRedisStoreFromConfig creates a Redis store, dialing a new client unless
// config carries one.
func NewRedisStoreFromConfig(config *RedisConfig) (*RedisStore, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	if config.Client != nil {
		return NewRedisStore(config.Client, config.KeyPrefix), nil
	}

	options := &redis.Options{
		Addr:     config.Addr,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	}

	if config.UseTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	store := NewRedisStore(redis.NewClient(options), config.KeyPrefix)
	store.owned = true

	return store, nil
}

// Set stores value under key with an optional expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	if ttl < 0 {
		ttl = 0
	}

	err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("setting redis key %q: %w", key, err)
	}

	return nil
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("getting redis key %q: %w", key, err)
	}

	return value, true, nil
}

// Unset deletes key.
func (s *RedisStore) Unset(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.keyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("deleting redis key %q: %w", key, err)
	}

	return nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}

	return nil
}

// Close closes the client when the store created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}

	return s.client.Close()
}
