// Package config resolves runtime settings for the tutor CLI.
//
// Sources, later ones winning:
//
//	defaults -> YAML file -> environment (and .env) -> command-line flags
//
// The YAML file is the -config flag or, when that is unset,
// <state-dir>/config.yaml if it exists.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Backend selects where the session token is persisted.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Defaults.
const (
	DefaultAPIURL  = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second
	DefaultBackend = BackendFile
	stateDirName   = ".tutor"
	configFileName = "config.yaml"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds runtime settings.
type Config struct {
	APIURL   string
	StateDir string
	Session  Backend
	// RequestTimeout bounds each HTTP call. Zero disables it.
	RequestTimeout time.Duration
	Debug          bool
	// Token, when set, is used instead of the stored session and is never saved.
	Token string
	// File is the YAML file that was applied, if any.
	File string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("config.LoadDefaults: home dir: %w", err)
	}
	c.APIURL = DefaultAPIURL
	c.StateDir = filepath.Join(home, stateDirName)
	c.Session = DefaultBackend
	c.RequestTimeout = DefaultTimeout
	return nil
}

// Load builds a Config from args (without the program name) and the
// environment. It returns the arguments left after the global flags,
// i.e. the subcommand and its arguments. flag.ErrHelp is returned as-is.
func Load(args []string) (*Config, []string, error) {
	fl, err := parseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if err := loadDotEnv(".env"); err != nil {
		return nil, nil, err
	}
	env := readEnv()

	cfg := &Config{}
	if err := cfg.LoadDefaults(); err != nil {
		return nil, nil, err
	}

	// The state dir decides where the default config file lives, so it is
	// resolved from env and flags before the file is read.
	stateDir := cfg.StateDir
	if env.stateDir != nil {
		stateDir = *env.stateDir
	}
	if fl.stateDir != nil {
		stateDir = *fl.stateDir
	}

	path, required := fl.configFile, true
	if path == "" {
		path, required = filepath.Join(stateDir, configFileName), false
	}
	if err := applyFile(cfg, path, required); err != nil {
		return nil, nil, err
	}
	if err := env.apply(cfg); err != nil {
		return nil, nil, err
	}
	fl.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, fl.rest, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api url %q must be an absolute http(s) URL", ErrInvalid, c.APIURL)
	}
	switch c.Session {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: session backend %q (want file or sqlite)", ErrInvalid, c.Session)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout %s", ErrInvalid, c.RequestTimeout)
	}
	if c.StateDir == "" {
		return fmt.Errorf("%w: empty state dir", ErrInvalid)
	}
	return nil
}

// TokenPath is the file backend's token file.
func (c *Config) TokenPath() string { return filepath.Join(c.StateDir, "token") }

// DBPath is the SQLite backend's database file.
func (c *Config) DBPath() string { return filepath.Join(c.StateDir, "session.db") }

// LogPath is where the client writes its log.
func (c *Config) LogPath() string { return filepath.Join(c.StateDir, "tutor.log") }
