package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/storefront/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-p", "-l"}

// parseFlags overlays cfg with the flags it knows about. Other arguments,
// such as -c, are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.AuthFailurePolicy, "p", cfg.AuthFailurePolicy, "401 policy: logout or refresh")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
