package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// FileStore implements store.Store on a YAML file so a session survives
// between CLI invocations.
type FileStore struct {
	mutex sync.Mutex
	path  string
	now   func() time.Time
}

type fileEntry struct {
	Value     string     `yaml:"value"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty"`
}

// NewFileStore creates a file store backed by path. The file is created on
// the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// DefaultSessionPath returns ~/.directus/session.yml.
func DefaultSessionPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, constants.CLISessionFile), nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return store.ErrEmptyKey
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entry := fileEntry{Value: value}
	if ttl > 0 {
		expiresAt := s.now().Add(ttl).UTC()
		entry.ExpiresAt = &expiresAt
	}

	entries[key] = entry

	return s.save(entries)
}

// Get returns the value stored under key. Expired entries read as missing.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}

	entry, ok := entries[key]
	if !ok {
		return "", false, nil
	}

	if entry.ExpiresAt != nil && !s.now().Before(*entry.ExpiresAt) {
		return "", false, nil
	}

	return entry.Value, true, nil
}

// Unset removes key.
func (s *FileStore) Unset(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)

	return s.save(entries)
}

func (s *FileStore) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)

	// The path is built from the user's home directory or a test directory.
	// #nosec G304
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	err = yaml.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", s.path, err)
	}

	if entries == nil {
		entries = make(map[string]fileEntry)
	}

	return entries, nil
}

func (s *FileStore) save(entries map[string]fileEntry) error {
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	return nil
}
