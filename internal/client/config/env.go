package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/dmitrijs2005/sanes/internal/timex"
	"github.com/joho/godotenv"
)

// EnvFile is loaded, when present, before the environment is read. Variables
// already set in the process environment win over the file.
var EnvFile = ".env"

const (
	envServerURL          = "SANES_SERVER_URL"
	envRequestTimeout     = "SANES_REQUEST_TIMEOUT"
	envDataDir            = "SANES_DATA_DIR"
	envEncryptStore       = "SANES_ENCRYPT_STORE"
	envLogLevel           = "SANES_LOG_LEVEL"
	envLogFormat          = "SANES_LOG_FORMAT"
	envRequestsPerSecond  = "SANES_REQUESTS_PER_SECOND"
	envRequestBurst       = "SANES_REQUEST_BURST"
	envKeepSessionOffline = "SANES_KEEP_SESSION_OFFLINE"
)

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}
	return applyEnv(cfg, os.LookupEnv)
}

// applyEnv overlays cfg with the SANES_* variables visible through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envServerURL); ok {
		cfg.ServerBaseURL = v
	}
	if v, ok := lookup(envRequestTimeout); ok {
		var d timex.Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", envRequestTimeout, err)
		}
		cfg.RequestTimeout = d.Duration
	}
	if v, ok := lookup(envDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(envEncryptStore); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envEncryptStore, err)
		}
		cfg.EncryptStore = b
	}
	if v, ok := lookup(envLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(envLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := lookup(envRequestsPerSecond); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envRequestsPerSecond, err)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := lookup(envRequestBurst); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envRequestBurst, err)
		}
		cfg.RequestBurst = n
	}
	if v, ok := lookup(envKeepSessionOffline); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envKeepSessionOffline, err)
		}
		cfg.KeepSessionOffline = b
	}
	return nil
}
