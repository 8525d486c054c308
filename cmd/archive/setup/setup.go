// Package setup holds the flags shared by every archive subcommand and turns
// them into a resolved configuration.
package setup

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/papercomputeco/archiveai/pkg/config"
)

// Options are the common command-line overrides.
type Options struct {
	ConfigPath string
	BaseURL    string
	LogFile    string
	Debug      bool
}

// Register adds the common flags to cmd.
func (o *Options) Register(cmd *cobra.Command) {
	o.addFlags(cmd.Flags())
}

// RegisterPersistent adds the common flags to cmd and, through inheritance,
// to every subcommand that does not declare its own.
func (o *Options) RegisterPersistent(cmd *cobra.Command) {
	o.addFlags(cmd.PersistentFlags())
}

func (o *Options) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "Path to config file (default ~/.archive/config.toml)")
	fs.StringVarP(&o.BaseURL, "url", "u", "", "Backend base URL (default http://127.0.0.1:3000)")
	fs.StringVar(&o.LogFile, "log-file", "", "Log file for the interactive chat")
	fs.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
}

// Resolve loads the config file and environment, then applies flags.
func (o *Options) Resolve() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.Debug {
		cfg.Debug = true
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(os.TempDir(), "archive.log")
	}

	return cfg, nil
}
