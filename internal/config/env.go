package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvAPIURL   = "TUTOR_API_URL"
	EnvToken    = "TUTOR_TOKEN"
	EnvSession  = "TUTOR_SESSION"
	EnvStateDir = "TUTOR_STATE_DIR"
	EnvTimeout  = "TUTOR_TIMEOUT"
	EnvDebug    = "TUTOR_DEBUG"
)

// loadDotEnv exports the variables in path that are not already set.
// A missing file is fine.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

type envConfig struct {
	apiURL   *string
	token    *string
	session  *string
	stateDir *string
	timeout  *string
	debug    *string
}

func readEnv() envConfig {
	get := func(key string) *string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return &v
		}
		return nil
	}
	return envConfig{
		apiURL:   get(EnvAPIURL),
		token:    get(EnvToken),
		session:  get(EnvSession),
		stateDir: get(EnvStateDir),
		timeout:  get(EnvTimeout),
		debug:    get(EnvDebug),
	}
}

func (e envConfig) apply(cfg *Config) error {
	if e.apiURL != nil {
		cfg.APIURL = *e.apiURL
	}
	if e.token != nil {
		cfg.Token = *e.token
	}
	if e.session != nil {
		cfg.Session = Backend(*e.session)
	}
	if e.stateDir != nil {
		cfg.StateDir = *e.stateDir
	}
	if e.timeout != nil {
		d, err := ParseTimeout(*e.timeout)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if e.debug != nil {
		b, err := strconv.ParseBool(*e.debug)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvDebug, err)
		}
		cfg.Debug = b
	}
	return nil
}

// ParseTimeout accepts a Go duration ("90s", "2m") or a whole number of
// seconds.
func ParseTimeout(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
