// Package store provides the persistent key-value stores that hold a Directus
// session (refresh token, access token and its expiry) between requests.
//
// Store is deliberately small: Set, Get and Unset on string values. Backends
// are selected with NewFromConfig or constructed directly:
//
//   - SessionStore keeps values in process memory.
//   - CookieStore mirrors values into HTTP cookies for one request/response pair.
//   - RedisStore keeps values in Redis.
//   - NATSKVStore keeps values in a NATS JetStream key-value bucket.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fivetwenty-io/directus/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedStorage    = errors.New("unsupported storage type")
	ErrRedisConfigRequired   = errors.New("redis configuration required for redis storage")
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS storage")
	ErrCookieConfigRequired  = errors.New("cookie configuration required for cookie storage")
	ErrCookieWriterRequired  = errors.New("cookie storage requires a response writer")
	ErrEmptyKey              = errors.New("store key must not be empty")
	ErrNATSBucketUnavailable = errors.New("NATS key-value bucket unavailable")
	ErrInvalidNATSKey        = errors.New("invalid NATS key")
)

// Store is a namespaced key-value store for session values.
//
// Get reports whether the key was present. A ttl of zero means the value does
// not expire on its own. Unset of a missing key is not an error.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Unset(ctx context.Context, key string) error
}

// Type names a store backend.
type Type string

const (
	// TypeSession selects the in-process session store.
	TypeSession Type = constants.StorageSession

	// TypeCookie selects the cookie store.
	TypeCookie Type = constants.StorageCookie

	// TypeRedis selects the Redis store.
	TypeRedis Type = constants.StorageRedis

	// TypeNATS selects the NATS key-value store.
	TypeNATS Type = constants.StorageNATS
)

// Config configures a store backend.
type Config struct {
	// Type is the backend type. Empty means TypeSession.
	Type Type

	// Session is the process store to use for TypeSession. When nil a new
	// store is created.
	Session *SessionStore

	// Cookie configures TypeCookie.
	Cookie *CookieConfig

	// Redis configures TypeRedis.
	Redis *RedisConfig

	// NATS configures TypeNATS.
	NATS *NATSConfig
}

// CookieConfig binds a cookie store to one HTTP exchange.
type CookieConfig struct {
	Writer  http.ResponseWriter
	Request *http.Request
	// Domain is the cookie domain. "/" means no domain attribute.
	Domain string
	// Secure marks cookies as HTTPS-only.
	Secure bool
}

// NewFromConfig creates a store backend from configuration.
func NewFromConfig(config *Config) (Store, error) {
	if config == nil {
		return NewSessionStore(), nil
	}

	switch config.Type {
	case "", TypeSession:
		if config.Session != nil {
			return config.Session, nil
		}

		return NewSessionStore(), nil

	case TypeCookie:
		if config.Cookie == nil {
			return nil, ErrCookieConfigRequired
		}

		backend, err := NewCookieStore(config.Cookie)
		if err != nil {
			return nil, err
		}

		return backend, nil

	case TypeRedis:
		if config.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		backend, err := NewRedisStoreFromConfig(config.Redis)
		if err != nil {
			return nil, err
		}

		return backend, nil

	case TypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		backend, err := NewNATSKVStoreFromConfig(config.NATS)
		if err != nil {
			return nil, err
		}

		return backend, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStorage, config.Type)
	}
}

// Close releases backend resources when the store holds any.
func Close(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}

	return closer.Close()
}
