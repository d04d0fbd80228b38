package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// SessionTokenManager resolves access tokens from a session kept in a store,
// refreshing an expired access token once per resolution. Without a session
// it falls back to a static token.
type SessionTokenManager struct {
	store     store.Store
	prefix    string
	refresher Refresher
	logger    directus.Logger
	now       func() time.Time

	// mutex serializes refresh exchanges issued by this manager.
	mutex sync.Mutex

	staticMutex sync.RWMutex
	static      string
}

// SessionOption configures a SessionTokenManager.
type SessionOption func(*SessionTokenManager)

// WithLogger sets the logger.
func WithLogger(logger directus.Logger) SessionOption {
	return func(m *SessionTokenManager) {
		m.logger = logger
	}
}

// WithStaticToken sets the token used when no session is stored.
func WithStaticToken(token string) SessionOption {
	return func(m *SessionTokenManager) {
		m.static = token
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionTokenManager) {
		m.now = now
	}
}

// NewSessionTokenManager creates a manager over sessionStore. Keys are
// namespaced with prefix.
func NewSessionTokenManager(sessionStore store.Store, prefix string, refresher Refresher, opts ...SessionOption) *SessionTokenManager {
	manager := &SessionTokenManager{
		store:     sessionStore,
		prefix:    prefix,
		refresher: refresher,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// GetToken returns the access token for the next request.
//
// With a stored refresh token, an access token whose expiry lies in the past
// is refreshed first. A rejected refresh clears the session and returns
// directus.ErrAuthenticationFailed. Without a session the static token is
// returned, which may be empty.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, err := m.Session(ctx)
	if err != nil {
		return "", err
	}

	if session == nil {
		return m.Token(), nil
	}

	if !session.Expired(m.now()) {
		return session.AccessToken, nil
	}

	refreshed, err := m.refresh(ctx, session.RefreshToken)
	if err != nil {
		return "", err
	}

	return refreshed.AccessToken, nil
}

// PeekToken returns the stored access token, or the static token without a
// session. It never refreshes.
func (m *SessionTokenManager) PeekToken(ctx context.Context) (string, error) {
	refreshToken, ok, err := m.get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return "", err
	}

	if !ok || refreshToken == "" {
		return m.Token(), nil
	}

	accessToken, _, err := m.get(ctx, constants.KeyAccessToken)
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

// Refresh forces a refresh exchange for the stored session.
func (m *SessionTokenManager) Refresh(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	refreshToken, ok, err := m.get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return err
	}

	if !ok || refreshToken == "" {
		return directus.ErrNotAuthenticated
	}

	_, err = m.refresh(ctx, refreshToken)

	return err
}

func (m *SessionTokenManager) refresh(ctx context.Context, refreshToken string) (*Token, error) {
	resp, err := m.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("refreshing session: %w", ctx.Err())
		}

		m.logWarn("Session refresh failed", map[string]interface{}{
			"prefix": m.prefix,
			"error":  err.Error(),
		})

		clearErr := m.Clear(ctx)
		if clearErr != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w", directus.ErrAuthenticationFailed, err), clearErr)
		}

		return nil, fmt.Errorf("%w: %w", directus.ErrAuthenticationFailed, err)
	}

	token := resp.Token(m.now())

	err = m.StoreToken(ctx, token)
	if err != nil {
		return nil, err
	}

	m.logDebug("Session refreshed", map[string]interface{}{
		"prefix":     m.prefix,
		"expires_at": token.ExpiresAt.Format(time.RFC3339),
	})

	return token, nil
}

// StoreSession persists a login or refresh response.
func (m *SessionTokenManager) StoreSession(ctx context.Context, resp *TokenResponse) error {
	return m.StoreToken(ctx, resp.Token(m.now()))
}

// StoreToken persists token as the current session.
func (m *SessionTokenManager) StoreToken(ctx context.Context, token *Token) error {
	values := []struct {
		key   string
		value string
	}{
		{constants.KeyRefreshToken, token.RefreshToken},
		{constants.KeyAccessToken, token.AccessToken},
		{constants.KeyAccessExpires, formatExpiry(token.ExpiresAt)},
	}

	for _, entry := range values {
		err := m.store.Set(ctx, m.key(entry.key), entry.value, constants.SessionTTL)
		if err != nil {
			return fmt.Errorf("storing session value %s: %w", entry.key, err)
		}
	}

	return nil
}

// Clear removes the stored session.
func (m *SessionTokenManager) Clear(ctx context.Context) error {
	var errs []error

	for _, key := range []string{constants.KeyRefreshToken, constants.KeyAccessToken, constants.KeyAccessExpires} {
		err := m.store.Unset(ctx, m.key(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("clearing session value %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

// Session returns the stored session, or nil when no refresh token is stored.
func (m *SessionTokenManager) Session(ctx context.Context) (*Token, error) {
	refreshToken, ok, err := m.get(ctx, constants.KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	if !ok || refreshToken == "" {
		return nil, nil //nolint:nilnil // no session is not an error
	}

	accessToken, _, err := m.get(ctx, constants.KeyAccessToken)
	if err != nil {
		return nil, err
	}

	token := &Token{AccessToken: accessToken, RefreshToken: refreshToken}

	expires, ok, err := m.get(ctx, constants.KeyAccessExpires)
	if err != nil {
		return nil, err
	}

	if ok {
		if expiresAt, valid := parseExpiry(expires); valid {
			token.ExpiresAt = expiresAt
		}
	}

	return token, nil
}

// State derives the authentication state from the store.
func (m *SessionTokenManager) State(ctx context.Context) (directus.AuthState, error) {
	session, err := m.Session(ctx)
	if err != nil {
		return directus.StateUnauthenticated, err
	}

	switch {
	case session == nil:
		return directus.StateUnauthenticated, nil
	case session.Expired(m.now()):
		return directus.StateExpired, nil
	default:
		return directus.StateAuthenticated, nil
	}
}

// SetToken sets the static token.
func (m *SessionTokenManager) SetToken(token string) {
	m.staticMutex.Lock()
	defer m.staticMutex.Unlock()

	m.static = token
}

// Token returns the static token.
func (m *SessionTokenManager) Token() string {
	m.staticMutex.RLock()
	defer m.staticMutex.RUnlock()

	return m.static
}

// Prefix returns the key namespace.
func (m *SessionTokenManager) Prefix() string {
	return m.prefix
}

func (m *SessionTokenManager) key(name string) string {
	return m.prefix + name
}

func (m *SessionTokenManager) get(ctx context.Context, name string) (string, bool, error) {
	value, ok, err := m.store.Get(ctx, m.key(name))
	if err != nil {
		return "", false, fmt.Errorf("reading session value %s: %w", name, err)
	}

	return value, ok, nil
}

func (m *SessionTokenManager) logDebug(msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, fields)
	}
}

func (m *SessionTokenManager) logWarn(msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.Warn(msg, fields)
	}
}
