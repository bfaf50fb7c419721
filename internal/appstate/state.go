// Package appstate holds process-wide client state: the signed-in user,
// mirrored to a profile file so a login survives restarts.
package appstate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/creassist/internal/models"
)

// profile is the on-disk layout of the profile file.
type profile struct {
	User *models.User `yaml:"user"`
}

// State is the application state container. Components receive it
// explicitly rather than reading globals.
type State struct {
	path string

	mu   sync.RWMutex
	user *models.User
}

// New returns an empty state persisted at path. An empty path keeps the
// state in memory only.
func New(path string) *State {
	return &State{path: path}
}

// Load populates the state from the profile file. A missing file is not an error.
func Load(path string) (*State, error) {
	s := New(path)
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read profile: %w", err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return s, fmt.Errorf("invalid profile file %s: %w", path, err)
	}
	if p.User != nil && p.User.ID != "" {
		s.user = p.User
	}
	return s, nil
}

// Path returns the profile file location.
func (s *State) Path() string {
	return s.path
}

// User returns a copy of the signed-in user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// LoggedIn reports whether a user is signed in.
func (s *State) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// SetUser signs u in and writes the profile file. If the file cannot be
// written the previous user stays signed in.
func (s *State) SetUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(&u); err != nil {
		return err
	}
	s.user = &u
	return nil
}

// Clear signs out: the user is dropped and the profile file removed in one step.
func (s *State) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove profile: %w", err)
	}
	return nil
}

// save writes u to the profile file atomically. Caller must hold mu.
func (s *State) save(u *models.User) error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(profile{User: u})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
