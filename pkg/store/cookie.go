package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/fivetwenty-io/directus/internal/constants"
)

// CookieStore mirrors session values into cookies on one HTTP exchange.
//
// Values written during the exchange are kept in memory so later reads in the
// same exchange observe them; otherwise reads fall back to the cookies the
// request carried. Construct one CookieStore per request.
type CookieStore struct {
	mutex   sync.Mutex
	writer  http.ResponseWriter
	request *http.Request
	domain  string
	secure  bool
	pending map[string]*string
	now     func() time.Time
}

// NewCookieStore creates a cookie store bound to config's writer and request.
func NewCookieStore(config *CookieConfig) (*CookieStore, error) {
	if config == nil {
		return nil, ErrCookieConfigRequired
	}

	if config.Writer == nil {
		return nil, ErrCookieWriterRequired
	}

	domain := config.Domain
	if domain == constants.DefaultCookiePath {
		domain = ""
	}

	return &CookieStore{
		writer:  config.Writer,
		request: config.Request,
		domain:  domain,
		secure:  config.Secure,
		pending: make(map[string]*string),
		now:     time.Now,
	}, nil
}

// Set writes value to a cookie named key.
func (s *CookieStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	if ttl <= 0 {
		ttl = constants.SessionTTL
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := value
	s.pending[key] = &stored

	http.SetCookie(s.writer, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     constants.DefaultCookiePath,
		Domain:   s.domain,
		Expires:  s.now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Get returns the value for key from this exchange's writes or the request
// cookies.
func (s *CookieStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mutex.Lock()
	pending, ok := s.pending[key]
	s.mutex.Unlock()

	if ok {
		if pending == nil {
			return "", false, nil
		}

		return *pending, true, nil
	}

	if s.request == nil {
		return "", false, nil
	}

	cookie, err := s.request.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return cookie.Value, true, nil
}

// Unset expires the cookie named key.
func (s *CookieStore) Unset(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.pending[key] = nil

	http.SetCookie(s.writer, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     constants.DefaultCookiePath,
		Domain:   s.domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
