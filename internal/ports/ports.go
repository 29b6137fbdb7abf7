// Package ports defines interfaces (hexagonal ports) for session persistence
// and upstream data access. Implementations live in internal/adapters and
// internal/upstream; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	"github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
)

// ErrSessionNotFound is returned when no well-formed session exists for an id.
// Malformed persisted state is reported the same way: adapters clear the
// broken entries and answer not-found, so callers treat it as logged out.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves browser sessions. The credential and
// the serialized identity are two durable entries; implementations must write
// and clear them together.
type SessionStore interface {
	Save(ctx context.Context, sess auth.Session) error
	Get(ctx context.Context, id string) (auth.Session, error)
	Delete(ctx context.Context, id string) error
}

// LookupSource fetches the combined reference-data payload from the upstream
// API. The payload shape varies per category, so it stays raw until the
// lookup domain normalizes it.
type LookupSource interface {
	FetchLookups(ctx context.Context, token string) (map[string]any, error)
}
