package client

import (
	"encoding/json"
	"errors"
	"os"

	"peakform/coaching-app/internal/domain"
)

// SessionUser is the cached view of the logged-in user.
type SessionUser struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	IsOnboarded bool        `json:"isOnboarded"`
}

// Session holds the bearer token and cached user for the current login. It is
// the only shared mutable state the client carries: written at login, cleared
// at logout or on a 401 response. All reads and writes go through this type;
// nothing else touches the token.
type Session struct {
	token string
	user  *SessionUser
	store SessionStore
}

// SessionStore persists a session between runs.
type SessionStore interface {
	Load() (token string, user *SessionUser, err error)
	Save(token string, user *SessionUser) error
	Clear() error
}

// NewSession creates a session backed by the given store. A nil store keeps
// the session in memory only. A pre-existing stored session is restored.
func NewSession(store SessionStore) *Session {
	s := &Session{store: store}
	if store != nil {
		if token, user, err := store.Load(); err == nil && token != "" {
			s.token = token
			s.user = user
		}
	}
	return s
}

// Set records the credentials from a successful login.
func (s *Session) Set(token string, user *SessionUser) {
	s.token = token
	s.user = user
	if s.store != nil {
		_ = s.store.Save(token, user)
	}
}

// Clear discards the credentials. Called at logout and on any 401.
func (s *Session) Clear() {
	s.token = ""
	s.user = nil
	if s.store != nil {
		_ = s.store.Clear()
	}
}

// Token returns the bearer token, empty when logged out.
func (s *Session) Token() string {
	return s.token
}

// User returns the cached user, nil when logged out.
func (s *Session) User() *SessionUser {
	return s.user
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// --- File-backed store for the CLI ---

type fileSessionStore struct {
	path string
}

// NewFileSessionStore persists the session as JSON at path.
func NewFileSessionStore(path string) SessionStore {
	return &fileSessionStore{path: path}
}

type storedSession struct {
	Token string       `json:"token"`
	User  *SessionUser `json:"user,omitempty"`
}

func (f *fileSessionStore) Load() (string, *SessionUser, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", nil, err
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", nil, err
	}
	return stored.Token, stored.User, nil
}

func (f *fileSessionStore) Save(token string, user *SessionUser) error {
	data, err := json.Marshal(storedSession{Token: token, User: user})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

func (f *fileSessionStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
