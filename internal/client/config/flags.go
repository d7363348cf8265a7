package config

import (
	"flag"
	"io"
	"os"

	"github.com/dmitrijs2005/sanes/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     base URL of the backend API (default from Config)
//	-t duration   request timeout, e.g. 10s (default from Config)
//	-d string     data directory (default from Config)
//	-l string     log level: debug, info, warn, error (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
