// Package config loads runtime configuration for the storefront CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with STOREFRONT_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     backend base URL
//	-d string     local database path
//	-t duration   per-request timeout, e.g. 10s
//	-p string     401 policy: logout or refresh
//	-l string     log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "database_path": "/home/me/.storefront/storefront.db",
//	  "request_timeout": "10s",
//	  "auth_failure_policy": "refresh",
//	  "catalog_cache_ttl": "5m",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_backend": "slog"
//	}
//
// # Environment
//
//	STOREFRONT_API_BASE_URL, STOREFRONT_DATABASE_PATH, STOREFRONT_REQUEST_TIMEOUT,
//	STOREFRONT_AUTH_FAILURE_POLICY, STOREFRONT_CATALOG_CACHE_TTL,
//	STOREFRONT_LOG_LEVEL, STOREFRONT_LOG_FORMAT, STOREFRONT_LOG_BACKEND
package config
