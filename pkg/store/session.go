package store

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	value     string
	expiresAt time.Time
}

// SessionStore is a process-scoped store. It is safe for concurrent use.
type SessionStore struct {
	mutex   sync.RWMutex
	entries map[string]sessionEntry
	now     func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]sessionEntry),
		now:     time.Now,
	}
}

// Set stores value under key.
func (s *SessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}

	entry := sessionEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[key] = entry

	return nil
}

// Get returns the value stored under key.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	entry, ok := s.entries[key]
	s.mutex.RUnlock()

	if !ok {
		return "", false, nil
	}

	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mutex.Lock()
		if current, found := s.entries[key]; found && current.expiresAt.Equal(entry.expiresAt) {
			delete(s.entries, key)
		}
		s.mutex.Unlock()

		return "", false, nil
	}

	return entry.value, true, nil
}

// Unset removes key.
func (s *SessionStore) Unset(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.entries, key)

	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (s *SessionStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entries)
}
