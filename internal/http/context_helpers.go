package httpx

import (
	"context"

	domainauth "github.com/Navaneethoudoju/ASHA-companion-Web/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext retrieves the session from the request context,
// or nil when the request is unauthenticated.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok {
		return session
	}
	return nil
}

// BearerFromContext returns the upstream credential for the current request.
// Empty when unauthenticated; all authenticated routes pass through the auth
// middleware, which guarantees a session is present.
func BearerFromContext(ctx context.Context) string {
	if session := GetSessionFromContext(ctx); session != nil {
		return session.Token
	}
	return ""
}
