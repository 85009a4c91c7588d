// Package auth holds the process-wide authentication session: the bearer
// token and user profile every backend request is made with, plus the global
// interceptor that reacts to token failures.
package auth

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// storedState is the on-disk shape, under the same fixed keys the web client
// used in local storage.
type storedState struct {
	AuthToken string `json:"authToken,omitempty"`
	User      *User  `json:"user,omitempty"`
}

// Session is the single source of truth for the current login. It persists
// to a JSON file so a restarted process keeps its login, and notifies
// registered observers whenever the session is cleared.
type Session struct {
	mu       sync.Mutex
	path     string
	token    string
	user     *User
	onLogout []func()
}

// NewSession loads any persisted login from path. A missing file simply means
// logged out.
func NewSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "reading auth store")
	}

	var state storedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parsing auth store")
	}

	s.token = state.AuthToken
	s.user = state.User
	return s, nil
}

// Login stores the token and user and persists them.
func (s *Session) Login(token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = &user
	return s.persist()
}

// Logout clears the session, removes the persisted state, and notifies
// observers. It is invoked both by explicit user action and by the transport
// when the backend rejects the token.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	err := s.persist()
	observers := make([]func(), len(s.onLogout))
	copy(observers, s.onLogout)
	s.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
	return err
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Current returns the logged-in user, if any.
func (s *Session) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated requires both a token and a user profile, matching the
// original client's check.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// OnLogout registers an observer called after every logout. The redirect to
// the login screen hangs off this.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}

	if s.token == "" && s.user == nil {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "removing auth store")
		}
		return nil
	}

	data, err := json.Marshal(storedState{AuthToken: s.token, User: s.user})
	if err != nil {
		return errors.Wrap(err, "encoding auth store")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "writing auth store")
	}
	return nil
}
