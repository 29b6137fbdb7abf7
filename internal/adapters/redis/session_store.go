package redis

// Package redis provides the Redis-backed session store used in production.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/ports"
)

// SessionStore keeps each session as two co-written keys: the opaque bearer
// credential and the serialized identity. Writing them in one pipeline and
// deleting them together preserves the invariant that the system never holds
// a credential without an identity or vice versa.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "session:"}
}

// NewSessionStoreWithPrefix creates a store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) tokenKey(id string) string    { return s.prefix + id + ":token" }
func (s *SessionStore) identityKey(id string) string { return s.prefix + id + ":identity" }

// Save persists the credential and identity entries together with a TTL
// derived from the session expiry.
func (s *SessionStore) Save(ctx context.Context, sess auth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	identity, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(sess.ID), sess.Token, ttl)
	pipe.Set(ctx, s.identityKey(sess.ID), identity, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Get restores a session. Absent entries answer ErrSessionNotFound. A present
// credential with a missing or unparseable identity (or the reverse) is
// treated as corrupt persisted state: both entries are cleared and the caller
// sees not-found, never an error.
func (s *SessionStore) Get(ctx context.Context, id string) (auth.Session, error) {
	if id == "" {
		return auth.Session{}, ports.ErrSessionNotFound
	}

	vals, err := s.client.MGet(ctx, s.tokenKey(id), s.identityKey(id)).Result()
	if err != nil {
		return auth.Session{}, fmt.Errorf("redis mget: %w", err)
	}

	token, tokenOK := vals[0].(string)
	identityRaw, identityOK := vals[1].(string)
	if !tokenOK && !identityOK {
		return auth.Session{}, ports.ErrSessionNotFound
	}
	if !tokenOK || !identityOK {
		// One entry survived without the other; clear the remainder.
		return auth.Session{}, s.clearAndReportNotFound(ctx, id)
	}

	var ident auth.Identity
	if unmarshalErr := json.Unmarshal([]byte(identityRaw), &ident); unmarshalErr != nil {
		return auth.Session{}, s.clearAndReportNotFound(ctx, id)
	}

	expiry, err := s.client.TTL(ctx, s.tokenKey(id)).Result()
	if err != nil || expiry <= 0 {
		// TTL lookup is best-effort; the keys themselves expire server-side.
		expiry = 0
	}

	return auth.Session{
		ID:        id,
		Identity:  ident,
		Token:     token,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// Delete removes both session entries. Deleting an absent session is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.tokenKey(id), s.identityKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) clearAndReportNotFound(ctx context.Context, id string) error {
	if err := s.Delete(ctx, id); err != nil {
		return fmt.Errorf("clear corrupt session: %w", err)
	}
	return ports.ErrSessionNotFound
}

var _ ports.SessionStore = (*SessionStore)(nil)
