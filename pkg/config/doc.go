// Package config provides configuration management for warren, the
// proxy-rotation gateway.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention WARREN_SECTION_FIELD.
// For example:
//
//   - WARREN_LISTEN_ADDRESS overrides listen.address
//   - WARREN_JUDGES_URLS overrides judges.urls (comma-separated)
//   - WARREN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Listen.Address)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Hot Reload
//
// A Watcher (backed by fsnotify) can re-validate and atomically swap a
// running configuration's scalar tunables when the file changes. The
// listener address is intentionally excluded from hot reload and always
// requires a restart:
//
//	w, err := config.NewWatcher("config.yaml", 0, nil)
//	go w.Watch(ctx)
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., at least one judge URL, a listen address)
//   - Range validation (e.g., concurrency limits must be positive)
//   - Format validation (e.g., cron expressions, enumerated options)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - judges.urls: at least one judge URL must be configured
//	  - ledger.backend: unknown backend "postgres", must be "memory" or "sqlite"
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	listen:
//	  address: "0.0.0.0:3128"
//	  protocols: ["http", "https", "socks4", "socks5"]
//
//	judges:
//	  urls:
//	    - "http://httpbin.org/get"
//	    - "https://azenv.net/"
//
//	ledger:
//	  enabled: true
//	  backend: "memory"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
