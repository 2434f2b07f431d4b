package refresh

import "time"

// Config holds the refresh scheduling knobs.
type Config struct {
	// LeadTime is how far ahead of token expiry the refresh fires.
	LeadTime time.Duration `env:"AUTH_REFRESH_LEAD_TIME" envDefault:"1m"`

	// Jitter is the upper bound of the random offset subtracted from
	// the fire time, spreading refreshes across open sessions.
	Jitter time.Duration `env:"AUTH_REFRESH_JITTER" envDefault:"10s"`

	// MaxRetries bounds refresh attempts after the first failure.
	MaxRetries int `env:"AUTH_REFRESH_MAX_RETRIES" envDefault:"3"`

	// RetryBaseDelay is the backoff base; attempt n waits base << n.
	RetryBaseDelay time.Duration `env:"AUTH_REFRESH_RETRY_BASE_DELAY" envDefault:"2s"`

	// RequestTimeout bounds each refresh call.
	RequestTimeout time.Duration `env:"AUTH_REFRESH_REQUEST_TIMEOUT" envDefault:"15s"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LeadTime:       time.Minute,
		Jitter:         10 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 2 * time.Second,
		RequestTimeout: 15 * time.Second,
	}
}
