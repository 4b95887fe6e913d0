package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies default values, validates the result, and returns it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Booleans that default to true are seeded before parsing: yaml leaves
	// them as they are when the file omits them, while ApplyDefaults cannot
	// tell an omitted bool from an explicit false.
	var cfg Config
	cfg.Ledger.Enabled = true
	cfg.Telemetry.Logging.RedactCredentials = true
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Telemetry.Tracing.OTLP.Insecure = true
	cfg.Telemetry.Health.Enabled = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention WARREN_SECTION_FIELD (e.g., WARREN_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format WARREN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WARREN_LISTEN_ADDRESS"); val != "" {
		cfg.Listen.Address = val
	}
	if val := os.Getenv("WARREN_LISTEN_PROTOCOLS"); val != "" {
		cfg.Listen.Protocols = splitCSV(val)
	}
	if val := os.Getenv("WARREN_LISTEN_METRICS_ADDRESS"); val != "" {
		cfg.Listen.MetricsAddress = val
	}

	if val := os.Getenv("WARREN_POOL_MAX_AVG_RESPONSE_TIME_MS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Pool.MaxAvgResponseTimeMS = i
		}
	}
	if val := os.Getenv("WARREN_POOL_MIN_REQUESTS_FOR_FILTERING"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Pool.MinRequestsForFiltering = i
		}
	}
	if val := os.Getenv("WARREN_POOL_PER_PROXY_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Pool.PerProxyConcurrency = i
		}
	}
	if val := os.Getenv("WARREN_POOL_EVICTION_SCHEDULE"); val != "" {
		cfg.Pool.EvictionSchedule = val
	}

	if val := os.Getenv("WARREN_VALIDATOR_MAX_TRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validator.MaxTries = i
		}
	}
	if val := os.Getenv("WARREN_VALIDATOR_DEFAULT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Validator.DefaultTimeout = d
		}
	}
	if val := os.Getenv("WARREN_VALIDATOR_MAX_CONCURRENT_CHECKS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validator.MaxConcurrentChecks = i
		}
	}

	if val := os.Getenv("WARREN_JUDGES_URLS"); val != "" {
		cfg.Judges.URLs = splitCSV(val)
	}
	if val := os.Getenv("WARREN_JUDGES_REFRESH_INTERVAL_S"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Judges.RefreshIntervalSeconds = i
		}
	}
	if val := os.Getenv("WARREN_JUDGES_PROBE_TIMEOUT_S"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Judges.ProbeTimeoutSeconds = i
		}
	}

	if val := os.Getenv("WARREN_SELECTION_COUNTRIES_ALLOW"); val != "" {
		cfg.Selection.CountriesAllow = splitCSV(val)
	}
	if val := os.Getenv("WARREN_SELECTION_COUNTRIES_EXCLUDE"); val != "" {
		cfg.Selection.CountriesExclude = splitCSV(val)
	}
	if val := os.Getenv("WARREN_SELECTION_MIN_ANONYMITY"); val != "" {
		cfg.Selection.MinAnonymity = val
	}

	if val := os.Getenv("WARREN_DNSBL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.DNSBL.Enabled = b
		}
	}
	if val := os.Getenv("WARREN_DNSBL_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.DNSBL.Threshold = i
		}
	}

	if val := os.Getenv("WARREN_SESSION_MAX_CONNECTIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Session.MaxConnections = i
		}
	}
	if val := os.Getenv("WARREN_SESSION_MAX_TRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Session.MaxTries = i
		}
	}
	if val := os.Getenv("WARREN_SESSION_BRIDGE_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Session.BridgeIdleTimeout = d
		}
	}

	if val := os.Getenv("WARREN_LEDGER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ledger.Enabled = b
		}
	}
	if val := os.Getenv("WARREN_LEDGER_BACKEND"); val != "" {
		cfg.Ledger.Backend = val
	}
	if val := os.Getenv("WARREN_LEDGER_SQLITE_PATH"); val != "" {
		cfg.Ledger.SQLite.Path = val
	}
	if val := os.Getenv("WARREN_LEDGER_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Ledger.Retention.Days = i
		}
	}

	if val := os.Getenv("WARREN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("WARREN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("WARREN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("WARREN_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("WARREN_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("WARREN_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	if val := os.Getenv("WARREN_SECURITY_MIN_TLS_VERSION"); val != "" {
		cfg.Security.MinTLSVersion = val
	}
	if val := os.Getenv("WARREN_SECURITY_INSECURE_SKIP_VERIFY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Security.InsecureSkipVerify = b
		}
	}
}

func splitCSV(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
