package cli

import "github.com/caarlos0/env/v10"

// Config holds settings read from the environment. Flags override these
// where a command exposes the same knob.
type Config struct {
	// Jobs bounds concurrent build steps. Zero means GOMAXPROCS.
	Jobs int `env:"LAIR_JOBS"`

	// CacheDir overrides the resolved-revision cache location.
	CacheDir string `env:"LAIR_CACHE_DIR"`

	// DepsDir overrides where dependency checkouts are placed.
	DepsDir string `env:"LAIR_DEPS_DIR"`

	// FailFast cancels pending steps after the first compile failure.
	FailFast bool `env:"LAIR_FAIL_FAST"`
}

// LoadConfig reads configuration from the environment. On error the zero
// config is returned alongside it, so callers can degrade to defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
