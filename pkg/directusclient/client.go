package directusclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/directus/internal/client"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// New creates a new Directus API client.
//
// The base URL is normalized (trailing slash trimmed, "https://" added when
// no scheme is present) and the session store is taken from config.Store or
// built from config.AuthStorage. A backend built here is pinged with ctx when
// it supports it, so an unreachable Redis fails at construction. config is not
// modified.
func New(ctx context.Context, config *directus.Config) (directus.Client, error) {
	if config == nil {
		return nil, directus.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, directus.ErrBaseURLRequired
	}

	if config.AuthPrefix == "" {
		return nil, directus.ErrAuthPrefixRequired
	}

	normalized := *config
	normalized.BaseURL = NormalizeBaseURL(config.BaseURL)

	sessionStore := config.Store
	if sessionStore == nil {
		if normalized.AuthStorage == store.TypeNATS {
			err := store.ValidateNATSKey(normalized.AuthPrefix + constants.KeyAccessExpires)
			if err != nil {
				return nil, fmt.Errorf("checking auth prefix: %w", err)
			}
		}

		backend, err := store.NewFromConfig(storeConfig(&normalized))
		if err != nil {
			return nil, fmt.Errorf("creating session store: %w", err)
		}

		err = ping(ctx, backend)
		if err != nil {
			_ = store.Close(backend)

			return nil, fmt.Errorf("verifying session store: %w", err)
		}

		sessionStore = backend
	}

	directusClient, err := client.New(&normalized, sessionStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return directusClient, nil
}

// NewWithToken creates a client that authenticates with a static token.
func NewWithToken(ctx context.Context, baseURL, authPrefix, token string) (directus.Client, error) {
	config := directus.DefaultConfig(baseURL, authPrefix)
	config.StaticToken = token

	return New(ctx, config)
}

// NewWithStore creates a client whose session lives in sessionStore.
func NewWithStore(ctx context.Context, baseURL, authPrefix string, sessionStore store.Store) (directus.Client, error) {
	config := directus.DefaultConfig(baseURL, authPrefix)
	config.Store = sessionStore

	return New(ctx, config)
}

// NormalizeBaseURL trims trailing slashes and defaults the scheme to https.
func NormalizeBaseURL(baseURL string) string {
	normalized := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}

func storeConfig(config *directus.Config) *store.Config {
	storeCfg := &store.Config{
		Type:  config.AuthStorage,
		Redis: config.Redis,
		NATS:  config.NATS,
	}

	if config.Cookie != nil {
		cookie := *config.Cookie
		if cookie.Domain == "" {
			cookie.Domain = config.AuthDomain
		}

		storeCfg.Cookie = &cookie
	}

	return storeCfg
}

func ping(ctx context.Context, sessionStore store.Store) error {
	pinger, ok := sessionStore.(interface{ Ping(ctx context.Context) error })
	if !ok {
		return nil
	}

	return pinger.Ping(ctx)
}
