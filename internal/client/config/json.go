package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// JSONConfig is the on-disk form of Config. Pointer fields tell an absent
// key from a zero value, so a file may set only some options.
type JSONConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	DatabasePath      *string         `json:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	AuthFailurePolicy *string         `json:"auth_failure_policy"`
	CatalogCacheTTL   *timex.Duration `json:"catalog_cache_ttl"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	LogBackend        *string         `json:"log_backend"`
}

// parseJSON overlays cfg with the JSON file given by -c/-config in args. It
// does nothing when no file is named.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.AuthFailurePolicy, jc.AuthFailurePolicy)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CatalogCacheTTL != nil {
		cfg.CatalogCacheTTL = jc.CatalogCacheTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
