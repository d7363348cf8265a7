package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sanes/internal/flagx"
	"github.com/dmitrijs2005/sanes/internal/timex"
	"github.com/goccy/go-yaml"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Pointer fields
// tell "absent" from "zero", so a file only overrides what it names.
// Durations use timex.Duration and may be strings like "10s".
type FileConfig struct {
	ServerBaseURL      *string         `json:"server_url" yaml:"server_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DataDir            *string         `json:"data_dir" yaml:"data_dir"`
	EncryptStore       *bool           `json:"encrypt_store" yaml:"encrypt_store"`
	LogLevel           *string         `json:"log_level" yaml:"log_level"`
	LogFormat          *string         `json:"log_format" yaml:"log_format"`
	RequestsPerSecond  *float64        `json:"requests_per_second" yaml:"requests_per_second"`
	RequestBurst       *int            `json:"request_burst" yaml:"request_burst"`
	KeepSessionOffline *bool           `json:"keep_session_offline" yaml:"keep_session_offline"`
}

// parseFile overlays Config with values from the file named by -c/-config.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *fc.ServerBaseURL
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.EncryptStore != nil {
		cfg.EncryptStore = *fc.EncryptStore
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	if fc.RequestBurst != nil {
		cfg.RequestBurst = *fc.RequestBurst
	}
	if fc.KeepSessionOffline != nil {
		cfg.KeepSessionOffline = *fc.KeepSessionOffline
	}
}
