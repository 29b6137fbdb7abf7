// Package service orchestrates the session and lookup state that backs every
// page, coordinating the upstream API client with the persistence ports.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/ports"
	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/upstream"
)

// AuthAPI is the slice of the upstream client the auth service needs.
type AuthAPI interface {
	Login(ctx context.Context, phone, password string) (upstream.LoginResult, error)
	Register(ctx context.Context, req upstream.RegisterRequest) error
}

// ErrLoginRejected wraps an upstream credential rejection. It is surfaced to
// the login view only; session state is untouched.
var ErrLoginRejected = errors.New("login rejected")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	API        AuthAPI
	Sessions   ports.SessionStore
	SessionTTL time.Duration
}

// AuthService is the single source of truth for "who is logged in". It owns
// the two-state session lifecycle: unauthenticated until a successful login
// exchange, authenticated until logout or expiry, with restore-from-persisted
// state surviving process and browser reloads.
type AuthService struct {
	api      AuthAPI
	sessions ports.SessionStore
	ttl      time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{api: opts.API, sessions: opts.Sessions, ttl: ttl}
}

// Login performs the credential exchange against the upstream API,
// normalizes the returned user into the canonical Identity, and persists the
// credential and identity together under a fresh session id. Any failure
// leaves no session behind.
func (s *AuthService) Login(ctx context.Context, phone, password string) (auth.Session, error) {
	result, err := s.api.Login(ctx, phone, password)
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}
	if result.Token == "" {
		return auth.Session{}, fmt.Errorf("%w: empty token in login response", ErrLoginRejected)
	}

	ident, err := auth.IdentityFromPayload(result.User)
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}

	sess := auth.Session{
		ID:        uuid.NewString(),
		Identity:  ident,
		Token:     result.Token,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return auth.Session{}, fmt.Errorf("save session: %w", saveErr)
	}
	return sess, nil
}

// Restore loads the persisted session for a browser. Absent, expired, or
// malformed state answers (nil, nil): the caller treats it as logged out,
// never as an error. The persistence adapters have already cleared any
// malformed entries by the time Restore returns.
func (s *AuthService) Restore(ctx context.Context, sessionID string) (*auth.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &sess, nil
}

// Logout clears the persisted credential and identity. Idempotent: logging
// out an absent session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Register forwards an account-creation request to the upstream API.
func (s *AuthService) Register(ctx context.Context, req upstream.RegisterRequest) error {
	return s.api.Register(ctx, req)
}
