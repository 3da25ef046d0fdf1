package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape. Pointers tell absent keys from zero values.
type fileConfig struct {
	APIURL         *string        `yaml:"api_url"`
	StateDir       *string        `yaml:"state_dir"`
	Session        *Backend       `yaml:"session"`
	RequestTimeout *time.Duration `yaml:"request_timeout"`
	Debug          *bool          `yaml:"debug"`
}

// applyFile overlays cfg with path. A missing file is an error only when
// it was asked for explicitly.
func applyFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.APIURL != nil {
		cfg.APIURL = *fc.APIURL
	}
	if fc.StateDir != nil {
		cfg.StateDir = *fc.StateDir
	}
	if fc.Session != nil {
		cfg.Session = *fc.Session
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = *fc.RequestTimeout
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	cfg.File = path
	return nil
}
