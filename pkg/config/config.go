// Package config loads the archive client configuration from a TOML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/archiveai/client"
)

const (
	envBaseURL = "ARCHIVE_BASE_URL"
	envDebug   = "ARCHIVE_DEBUG"
)

// Config is the resolved client configuration.
type Config struct {
	// BaseURL is the backend origin.
	BaseURL string `toml:"base_url"`

	// LogFile receives the interactive chat's logs.
	LogFile string `toml:"log_file"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`

	// Timeout bounds each backend request, e.g. "2m". Empty means none.
	Timeout Duration `toml:"timeout"`
}

// Duration is a time.Duration that decodes from a TOML string.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// Dir returns the per-user configuration directory (~/.archive).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ".archive"), nil
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{
		BaseURL: client.DefaultBaseURL,
	}
	if dir, err := Dir(); err == nil {
		cfg.LogFile = filepath.Join(dir, "archive.log")
	}
	return cfg
}

// Load builds the configuration from defaults, then the TOML file at path,
// then the environment. An empty path means ~/.archive/config.toml, and a
// missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return Config{}, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	if v := os.Getenv(envBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(envDebug); v != "" {
		cfg.Debug = v == "1" || v == "true" || v == "TRUE"
	}

	return cfg, nil
}

// ClientConfig converts the configuration into the backend client's.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout.Duration,
	}
}
