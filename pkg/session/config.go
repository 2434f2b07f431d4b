package session

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vitalpath/authkit/pkg/refresh"
	"github.com/vitalpath/authkit/pkg/strategy"
)

// Config holds the manager configuration.
type Config struct {
	// BaseURL is the authentication API root, e.g. "https://api.example.com".
	BaseURL string `env:"AUTH_API_BASE_URL"`

	// Issuer labels two-factor provisioning URIs in authenticator apps.
	Issuer string `env:"AUTH_TOTP_ISSUER" envDefault:"VitalPath"`

	Refresh refresh.Config
	Google  strategy.GoogleConfig
}

// ErrParsingConfig is returned when environment variables cannot be
// parsed into the config struct.
var ErrParsingConfig = errors.New("session.config_parse_failed")

var defaultEnvLoaded sync.Once

// LoadConfig reads the configuration from environment variables,
// loading a .env file first if one exists.
func LoadConfig() (Config, error) {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}
