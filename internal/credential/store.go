package credential

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Store is a thread-safe view of the token file at Path.
// The zero value is not usable; create one with New.
type Store struct {
	path string

	mu    sync.RWMutex
	token string
}

// New creates a Store for the token file at path and reads the current value.
// A missing file is not an error — it means "logged out".
func New(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the token file location.
func (s *Store) Path() string { return s.path }

// Token returns the current bearer token, or "" when no session exists.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set writes token to the file (0600) and updates the cached value.
func (s *Store) Set(token string) error {
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("credential: write %q: %w", s.path, err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear removes the token file and the cached value. Clearing an already
// cleared store is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credential: remove %q: %w", s.path, err)
	}
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// reload reads the file into the cache. Missing file → empty token.
func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.token = ""
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("credential: read %q: %w", s.path, err)
	}
	s.mu.Lock()
	s.token = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}
