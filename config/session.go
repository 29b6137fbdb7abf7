package config

import "time"

// SessionConfig contains session lifetime configuration.
type SessionConfig struct {
	// TTL is how long a logged-in session remains valid without re-login.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 12 * time.Hour
	}
}
