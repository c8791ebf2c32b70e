package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrijs2005/storefront/internal/client/client"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

const envPrefix = "STOREFRONT_"

// Config holds runtime settings for the storefront CLI.
type Config struct {
	APIBaseURL        string        `env:"API_BASE_URL"`
	DatabasePath      string        `env:"DATABASE_PATH"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	AuthFailurePolicy string        `env:"AUTH_FAILURE_POLICY"`
	CatalogCacheTTL   time.Duration `env:"CATALOG_CACHE_TTL"`
	LogLevel          string        `env:"LOG_LEVEL"`
	LogFormat         string        `env:"LOG_FORMAT"`
	LogBackend        string        `env:"LOG_BACKEND"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.DatabasePath = defaultDatabasePath()
	c.RequestTimeout = 10 * time.Second
	c.AuthFailurePolicy = string(client.PolicyLogout)
	c.CatalogCacheTTL = 5 * time.Minute
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogBackend = logging.BackendSlog
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "storefront.db")
}

// Policy returns the parsed AuthFailurePolicy.
func (c *Config) Policy() client.Policy {
	p, _ := client.ParsePolicy(c.AuthFailurePolicy)
	return p
}

// LogOptions maps the logging settings onto logging.Options.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat, Backend: c.LogBackend}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api base url %q must be an absolute http(s) URL", c.APIBaseURL))
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if _, err := client.ParsePolicy(c.AuthFailurePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.CatalogCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("catalog cache ttl must not be negative, got %s", c.CatalogCacheTTL))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch strings.ToLower(c.LogBackend) {
	case logging.BackendSlog, logging.BackendZap:
	default:
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.LogBackend))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, then the JSON file named in args, then
// environ, then the flags in args. Later sources take precedence.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], env.ToMap(os.Environ()))
}

func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
