package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/nats-io/nats.go"
)

// NATSConfig configures a NATS JetStream key-value store.
//
// NATS keys may only contain letters, digits and the characters "-/_=.", and
// may not start or end with ".". The auth prefix becomes part of every key,
// so a prefix such as "app:" or "my app_" is rejected with ErrInvalidNATSKey.
type NATSConfig struct {
	// KeyValue is used as-is when set; the connection fields are ignored.
	KeyValue nats.KeyValue

	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Bucket is the key-value bucket name. It is created when missing.
	Bucket string

	// TTL applies to the whole bucket when it is created. NATS buckets do
	// not support per-key expiry, so the ttl passed to Set is ignored.
	TTL time.Duration

	// Options are passed to nats.Connect.
	Options []nats.Option
}

var natsKeyPattern = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

// ValidateNATSKey reports whether key can be stored in a NATS key-value
// bucket.
func ValidateNATSKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") || !natsKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q (allowed: letters, digits and -/_=.)", ErrInvalidNATSKey, key)
	}

	return nil
}

// NATSKVStore keeps session values in a NATS JetStream key-value bucket.
type NATSKVStore struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKVStore wraps an existing key-value bucket.
func NewNATSKVStore(kv nats.KeyValue) *NATSKVStore {
	return &NATSKVStore{kv: kv}
}

// NewNATSKVStoreFromConfig connects to NATS and opens (or creates) the bucket.
func NewNATSKVStoreFromConfig(config *NATSConfig) (*NATSKVStore, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	if config.KeyValue != nil {
		return NewNATSKVStore(config.KeyValue), nil
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(url, config.Options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	kv, err := openBucket(conn, bucket, config.TTL)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return &NATSKVStore{kv: kv, conn: conn}, nil
}

func openBucket(conn *nats.Conn, bucket string, ttl time.Duration) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if err == nil {
		return kv, nil
	}

	if !errors.Is(err, nats.ErrBucketNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNATSBucketUnavailable, bucket, err)
	}

	kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      bucket,
		Description: "Directus session values",
		TTL:         ttl,
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("creating key-value bucket %q: %w", bucket, err)
	}

	return kv, nil
}

// Set stores value under key. The ttl is governed by the bucket.
func (s *NATSKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := ValidateNATSKey(key)
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	_, err = s.kv.PutString(key, value)
	if err != nil {
		return fmt.Errorf("putting NATS key %q: %w", key, err)
	}

	return nil
}

// Get returns the value stored under key.
func (s *NATSKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	err := ValidateNATSKey(key)
	if err != nil {
		return "", false, err
	}

	err = ctx.Err()
	if err != nil {
		return "", false, err
	}

	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("getting NATS key %q: %w", key, err)
	}

	return string(entry.Value()), true, nil
}

// Unset deletes key.
func (s *NATSKVStore) Unset(ctx context.Context, key string) error {
	err := ValidateNATSKey(key)
	if err != nil {
		return err
	}

	err = ctx.Err()
	if err != nil {
		return err
	}

	err = s.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting NATS key %q: %w", key, err)
	}

	return nil
}

// Close closes the connection when the store opened it.
func (s *NATSKVStore) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Drain()
	if err != nil {
		s.conn.Close()

		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}
