package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds runtime settings for the SANes CLI.
//
// Fields:
//   - ServerBaseURL: scheme://host:port of the backend HTTP API.
//   - RequestTimeout: deadline of a single API request.
//   - DataDir: directory holding the local database and the sealing key.
//   - EncryptStore: seal the persisted session with a per-device key.
//   - LogLevel, LogFormat: see logging.New.
//   - RequestsPerSecond, RequestBurst: outgoing request pacing.
//   - KeepSessionOffline: keep a restored session when the server cannot be
//     reached at start instead of logging out.
type Config struct {
	ServerBaseURL      string
	RequestTimeout     time.Duration
	DataDir            string
	EncryptStore       bool
	LogLevel           string
	LogFormat          string
	RequestsPerSecond  float64
	RequestBurst       int
	KeepSessionOffline bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = ".sanes"
	c.EncryptStore = true
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.RequestsPerSecond = 10
	c.RequestBurst = 5
	c.KeepSessionOffline = false
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.RequestBurst < 0 {
		return fmt.Errorf("request burst must not be negative, got %d", c.RequestBurst)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given), the environment and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
