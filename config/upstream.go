package config

import "time"

// UpstreamConfig contains the EHR API client configuration.
type UpstreamConfig struct {
	// BaseURL is the root of the EHR REST API all data flows through.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000/api"`

	// Timeout bounds each request to the API.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize applies guardrails to upstream configuration values.
func (u *UpstreamConfig) Sanitize() {
	if u.Timeout <= 0 {
		u.Timeout = 15 * time.Second
	}
}
