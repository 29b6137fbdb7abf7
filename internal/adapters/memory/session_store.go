package memory

// Package memory provides an in-process session store for development mode
// and tests. Semantics mirror the Redis adapter: the credential and the
// serialized identity are stored as two entries written and cleared together,
// and corrupt state resolves to not-found after clearing.

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/ports"
)

type record struct {
	token     string
	identity  []byte
	expiresAt time.Time
}

// SessionStore is a map-backed ports.SessionStore.
type SessionStore struct {
	mu   sync.Mutex
	data map[string]record
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string]record)}
}

func (s *SessionStore) Save(_ context.Context, sess auth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}
	if !sess.ExpiresAt.After(time.Now()) {
		return errors.New("session is expired")
	}

	identity, err := json.Marshal(sess.Identity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sess.ID] = record{token: sess.Token, identity: identity, expiresAt: sess.ExpiresAt}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[id]
	if !ok {
		return auth.Session{}, ports.ErrSessionNotFound
	}
	if time.Now().After(rec.expiresAt) {
		delete(s.data, id)
		return auth.Session{}, ports.ErrSessionNotFound
	}

	var ident auth.Identity
	if err := json.Unmarshal(rec.identity, &ident); err != nil {
		delete(s.data, id)
		return auth.Session{}, ports.ErrSessionNotFound
	}

	return auth.Session{ID: id, Identity: ident, Token: rec.token, ExpiresAt: rec.expiresAt}, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Corrupt overwrites a stored identity with an unparseable payload. Test
// hook for exercising the malformed-persisted-state recovery path.
func (s *SessionStore) Corrupt(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.data[id]; ok {
		rec.identity = []byte("{not json")
		s.data[id] = rec
	}
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

var _ ports.SessionStore = (*SessionStore)(nil)
