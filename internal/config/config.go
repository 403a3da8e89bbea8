// Package config loads idlereap's configuration from the optional TOML
// config file and the environment.
//
// Precedence, lowest to highest: built-in defaults, config file,
// environment variables. The watch target comes from the command line
// and is validated here at startup, before any watching begins.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultTimeoutSeconds is eight hours of quiescence.
	DefaultTimeoutSeconds = 28800

	// DefaultPollSeconds is the monitor's polling cadence.
	DefaultPollSeconds = 60

	// EnvTimeout overrides the inactivity threshold, in seconds.
	EnvTimeout = "INACTIVITY_TIMEOUT"

	// EnvToken supplies the DigitalOcean API token. It is read at
	// startup but only required once the destroy action fires.
	EnvToken = "DIGITALOCEAN_TOKEN"
)

// Config holds the daemon's runtime configuration.
type Config struct {
	// WatchDir is the directory tree to observe. Command-line only.
	WatchDir string `toml:"-"`

	// Recursive controls whether subdirectories are watched too.
	Recursive bool `toml:"recursive"`

	// TimeoutSeconds is the inactivity threshold.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// PollSeconds is the monitor's polling interval.
	PollSeconds int `toml:"poll_seconds"`

	// Token is the DigitalOcean API credential. Environment only; it
	// never lives in the config file.
	Token string `toml:"-"`

	// LogFile is where the daemon's log stream is duplicated.
	LogFile string `toml:"log_file"`

	// JournalPath is the SQLite activity journal location.
	JournalPath string `toml:"journal_path"`

	// MetadataURL is the instance metadata endpoint returning the
	// droplet ID. Overridable for tests.
	MetadataURL string `toml:"metadata_url"`

	// APIBaseURL is the DigitalOcean API base. Overridable for tests.
	APIBaseURL string `toml:"api_base_url"`
}

// Dir returns the idlereap config directory, respecting
// XDG_CONFIG_HOME. Defaults to ~/.config/idlereap.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "idlereap"), nil
}

// DataDir returns the idlereap state directory (~/.idlereap), creating
// it if needed. The journal, PID file, and log file live here by
// default.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".idlereap")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Recursive:      true,
		TimeoutSeconds: DefaultTimeoutSeconds,
		PollSeconds:    DefaultPollSeconds,
	}
}

// LoadFile builds a Config from defaults, the optional config file at
// {config.Dir()}/config.toml, and the environment. The watch target is
// not set and not validated; commands that only read state use this.
func LoadFile() (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err == nil {
		if err := readTOML(filepath.Join(dir, "config.toml"), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.fillDefaultPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load builds the full daemon configuration for the given watch
// target and validates it.
func Load(watchDir string) (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(watchDir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}
	cfg.WatchDir = abs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants that must hold before
// any concurrent activity starts.
func (c *Config) Validate() error {
	if c.WatchDir == "" {
		return errors.New("watch directory is required")
	}
	info, err := os.Stat(c.WatchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("watch directory %s does not exist", c.WatchDir)
		}
		return fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", c.WatchDir)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSeconds)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.PollSeconds)
	}
	return nil
}

// Timeout returns the inactivity threshold as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval returns the polling cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c *Config) applyEnv() error {
	if raw, ok := os.LookupEnv(EnvTimeout); ok {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a whole number of seconds", EnvTimeout, raw)
		}
		c.TimeoutSeconds = secs
	}
	if token, ok := os.LookupEnv(EnvToken); ok {
		c.Token = token
	}
	return nil
}

func (c *Config) fillDefaultPaths() error {
	if c.LogFile != "" && c.JournalPath != "" {
		return nil
	}
	dir, err := DataDir()
	if err != nil {
		return err
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "idlereap.log")
	}
	if c.JournalPath == "" {
		c.JournalPath = filepath.Join(dir, "idlereap.db")
	}
	return nil
}

func readTOML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
