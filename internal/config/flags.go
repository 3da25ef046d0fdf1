package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

type flagConfig struct {
	apiURL     *string
	session    *string
	stateDir   *string
	timeout    *time.Duration
	debug      *bool
	configFile string
	rest       []string
}

// parseFlags reads the global flags. Only flags present on the command line
// are recorded, so unset ones never override env or file values.
//
//	-api URL          API base URL
//	-config FILE      YAML config file
//	-session BACKEND  file or sqlite
//	-state-dir DIR    token, database, config and log directory
//	-timeout DUR      per-request timeout, 0 disables
//	-debug            verbose logging
func parseFlags(args []string) (flagConfig, error) {
	fs := flag.NewFlagSet("tutor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		fc       flagConfig
		apiURL   = fs.String("api", "", "API base URL")
		session  = fs.String("session", "", "session backend: file or sqlite")
		stateDir = fs.String("state-dir", "", "state directory")
		timeout  = fs.String("timeout", "", "request timeout, seconds or duration (0 disables)")
		debug    = fs.Bool("debug", false, "enable debug logging")
	)
	fs.StringVar(&fc.configFile, "config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return fc, err
		}
		return fc, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			fc.apiURL = apiURL
		case "session":
			fc.session = session
		case "state-dir":
			fc.stateDir = stateDir
		case "timeout":
			d, err := ParseTimeout(*timeout)
			if err != nil {
				parseErr = fmt.Errorf("%w: -timeout %q: %w", ErrInvalid, *timeout, err)
				return
			}
			fc.timeout = &d
		case "debug":
			fc.debug = debug
		}
	})
	if parseErr != nil {
		return fc, parseErr
	}
	fc.rest = fs.Args()
	return fc, nil
}

func (f flagConfig) apply(cfg *Config) {
	if f.apiURL != nil {
		cfg.APIURL = *f.apiURL
	}
	if f.session != nil {
		cfg.Session = Backend(*f.session)
	}
	if f.stateDir != nil {
		cfg.StateDir = *f.stateDir
	}
	if f.timeout != nil {
		cfg.RequestTimeout = *f.timeout
	}
	if f.debug != nil {
		cfg.Debug = *f.debug
	}
}

// Usage describes the global flags for help output.
const Usage = `Global flags:
  -api URL          API base URL (env TUTOR_API_URL, default http://localhost:8000)
  -config FILE      YAML config file (default <state-dir>/config.yaml)
  -session BACKEND  token storage: file or sqlite (env TUTOR_SESSION)
  -state-dir DIR    state directory (env TUTOR_STATE_DIR, default ~/.tutor)
  -timeout DUR      request timeout, 0 disables (env TUTOR_TIMEOUT, default 120s)
  -debug            debug logging to <state-dir>/tutor.log (env TUTOR_DEBUG)
`
