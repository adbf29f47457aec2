// Package session persists the authentication state of the CLI between runs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// FileName is the default session file name inside the config directory.
const FileName = "session.yaml"

// state is the on-disk shape.
type state struct {
	Token     string       `yaml:"token,omitempty"`
	User      *domain.User `yaml:"user,omitempty"`
	UpdatedAt time.Time    `yaml:"updated_at,omitempty"`
}

// Store holds the token and user of the logged-in account and writes every
// change to a YAML file readable only by its owner.
type Store struct {
	path string
	now  func() time.Time

	mu    sync.RWMutex
	state state
}

// DefaultPath returns the session file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "bookshelf", FileName), nil
}

// Load reads the session at path. A missing file yields a logged-out store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// SetCredentials stores a token and user. An empty token or a nil user
// leaves the current value in place.
func (s *Store) SetCredentials(token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != "" {
		s.state.Token = token
	}
	if user != nil {
		u := *user
		s.state.User = &u
	}
	return s.saveLocked()
}

// UpdateUser replaces the stored user, keeping the token.
func (s *Store) UpdateUser(user domain.User) error {
	return s.SetCredentials("", &user)
}

// Logout forgets the token and user.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns the stored user.
func (s *Store) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return domain.User{}, false
	}
	return *s.state.User, true
}

// IsAdmin reports whether the stored user is an administrator.
func (s *Store) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin
}

// IsAuthenticated reports whether a token is present and, when it is a
// JWT carrying an expiry, not yet expired. The signature is not checked;
// the API does that.
func (s *Store) IsAuthenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return s.now().Before(claims.ExpiresAt.Time)
}

// RequireAuth guards actions that need an account.
func (s *Store) RequireAuth() error {
	if !s.IsAuthenticated() {
		return apperrors.Unauthorized("login required")
	}
	return nil
}

// RequireAdmin guards administrative actions.
func (s *Store) RequireAdmin() error {
	if err := s.RequireAuth(); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return apperrors.Forbidden("Not enough permissions")
	}
	return nil
}

func (s *Store) saveLocked() error {
	s.state.UpdatedAt = s.now().UTC()
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
