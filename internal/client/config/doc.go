// Package config loads runtime configuration for the SANes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseFile) selected via flags: -c or
//     -config. The format follows the file extension.
//  3. Environment variables SANES_*, after loading EnvFile (.env) if present.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the backend API
//	-t duration   request timeout
//	-d string     data directory
//	-l string     log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "10s":
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "data_dir": ".sanes",
//	  "encrypt_store": true,
//	  "log_level": "info",
//	  "log_format": "text",
//	  "requests_per_second": 10,
//	  "request_burst": 5,
//	  "keep_session_offline": false
//	}
//
// The YAML form uses the same keys.
//
// Primary API
//
//   - type Config                        holds the settings
//   - func LoadConfig() (*Config, error) applies defaults, file, env, then flags
//   - func (*Config) LoadDefaults()      sets sensible defaults
//   - func (*Config) Validate() error    checks the merged result
package config
