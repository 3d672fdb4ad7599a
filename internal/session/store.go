// Package session persists the portal's single login session between runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Session is the persisted record: the bearer token plus a snapshot of the
// logged-in user for instant rendering before any network call.
type Session struct {
	AuthToken string      `json:"authToken"`
	User      *types.User `json:"user"`
}

// Store keeps one session in a JSON file. All methods are safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Restore loads the persisted session. A missing file means nobody is
// logged in. A file that cannot be parsed is discarded on the spot so the
// next run starts clean instead of failing the same way again.
func (s *Store) Restore() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: read failed: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.AuthToken == "" || sess.User == nil {
		s.logger.Warn("Discarding corrupt session record", slog.String("path", s.path))
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &sess, nil
}

// Commit writes the session atomically via a temp file rename.
func (s *Store) Commit(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("commit session: marshal failed: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("commit session: write failed: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit session: rename failed: %w", err)
	}
	return nil
}

// Patch updates the stored user snapshot in place, keeping the token. It is
// best effort: with no committed session there is nothing to patch and the
// call is a no-op, and a write failure only logs. The snapshot is a cache
// of server state, so losing a patch costs a stale render, not correctness.
func (s *Store) Patch(user types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.AuthToken == "" {
		return
	}
	sess.User = &user

	updated, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		s.logger.Warn("Failed to patch session record", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(s.path, updated, 0o600); err != nil {
		s.logger.Warn("Failed to patch session record", slog.Any("error", err))
	}
}

// Clear removes the persisted session. Logout must always succeed locally,
// so a missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: remove failed: %w", err)
	}
	return nil
}
