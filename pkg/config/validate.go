package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "listen.address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

var validClientProtocols = map[string]bool{
	"http": true, "https": true, "socks4": true, "socks5": true,
}

var validAnonymityLevels = map[string]bool{
	"": true, "transparent": true, "anonymous": true, "high": true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateListen(&cfg.Listen)...)
	errs = append(errs, validatePool(&cfg.Pool)...)
	errs = append(errs, validateValidator(&cfg.Validator)...)
	errs = append(errs, validateJudges(&cfg.Judges)...)
	errs = append(errs, validateSelection(&cfg.Selection)...)
	errs = append(errs, validateDNSBL(&cfg.DNSBL)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateListen(cfg *ListenConfig) []FieldError {
	var errs []FieldError
	if cfg.Address == "" {
		errs = append(errs, FieldError{Field: "listen.address", Message: "listen address is required"})
	}
	for _, p := range cfg.Protocols {
		if !validClientProtocols[p] {
			errs = append(errs, FieldError{Field: "listen.protocols", Message: fmt.Sprintf("unknown protocol %q", p)})
		}
	}
	if len(cfg.Protocols) == 0 {
		errs = append(errs, FieldError{Field: "listen.protocols", Message: "at least one protocol must be enabled"})
	}
	return errs
}

func validatePool(cfg *PoolConfig) []FieldError {
	var errs []FieldError
	if cfg.MaxAvgResponseTimeMS < 0 {
		errs = append(errs, FieldError{Field: "pool.max_avg_response_time_ms", Message: "must be non-negative"})
	}
	if cfg.MinRequestsForFiltering < 0 {
		errs = append(errs, FieldError{Field: "pool.min_requests_for_filtering", Message: "must be non-negative"})
	}
	if cfg.PerProxyConcurrency < 1 {
		errs = append(errs, FieldError{Field: "pool.per_proxy_concurrency", Message: "must be at least 1"})
	}
	if cfg.RuntimeSampleCap < 1 {
		errs = append(errs, FieldError{Field: "pool.runtime_sample_cap", Message: "must be at least 1"})
	}
	if cfg.EvictionSchedule != "" {
		if _, err := cron.ParseStandard(cfg.EvictionSchedule); err != nil {
			errs = append(errs, FieldError{Field: "pool.eviction_schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateValidator(cfg *ValidatorConfig) []FieldError {
	var errs []FieldError
	if cfg.MaxTries < 1 {
		errs = append(errs, FieldError{Field: "validator.max_tries", Message: "must be at least 1"})
	}
	if cfg.DefaultTimeout < 0 {
		errs = append(errs, FieldError{Field: "validator.default_timeout", Message: "must be non-negative"})
	}
	if cfg.MaxConcurrentChecks < 1 {
		errs = append(errs, FieldError{Field: "validator.max_concurrent_checks", Message: "must be at least 1"})
	}
	for _, p := range cfg.Protocols {
		if !validClientProtocols[p] && p != "connect:80" && p != "connect:25" {
			errs = append(errs, FieldError{Field: "validator.protocols", Message: fmt.Sprintf("unknown protocol %q", p)})
		}
	}
	return errs
}

func validateJudges(cfg *JudgesConfig) []FieldError {
	var errs []FieldError
	if len(cfg.URLs) == 0 {
		errs = append(errs, FieldError{Field: "judges.urls", Message: "at least one judge URL must be configured"})
	}
	if cfg.RefreshIntervalSeconds < 0 {
		errs = append(errs, FieldError{Field: "judges.refresh_interval_s", Message: "must be non-negative"})
	}
	if cfg.ProbeTimeoutSeconds < 1 {
		errs = append(errs, FieldError{Field: "judges.probe_timeout_s", Message: "must be at least 1"})
	}
	return errs
}

func validateSelection(cfg *SelectionConfig) []FieldError {
	var errs []FieldError
	if !validAnonymityLevels[cfg.MinAnonymity] {
		errs = append(errs, FieldError{Field: "selection.min_anonymity", Message: fmt.Sprintf("unknown anonymity level %q", cfg.MinAnonymity)})
	}
	for _, c := range cfg.CountriesAllow {
		if c == "" {
			errs = append(errs, FieldError{Field: "selection.countries_allow", Message: "country codes must not be empty"})
		}
	}
	return errs
}

func validateDNSBL(cfg *DNSBLConfig) []FieldError {
	var errs []FieldError
	if cfg.Enabled && cfg.Threshold < 1 {
		errs = append(errs, FieldError{Field: "dnsbl.threshold", Message: "must be at least 1 when DNSBL is enabled"})
	}
	return errs
}

func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError
	if cfg.MaxConnections < 0 {
		errs = append(errs, FieldError{Field: "session.max_connections", Message: "must be non-negative"})
	}
	if cfg.MaxTries < 1 {
		errs = append(errs, FieldError{Field: "session.max_tries", Message: "must be at least 1"})
	}
	if cfg.ClientHandshakeRead < 0 {
		errs = append(errs, FieldError{Field: "session.client_handshake_read", Message: "must be non-negative"})
	}
	if cfg.BridgeIdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "session.bridge_idle_timeout", Message: "must be non-negative"})
	}
	if cfg.ShutdownGrace < 0 {
		errs = append(errs, FieldError{Field: "session.shutdown_grace", Message: "must be non-negative"})
	}
	return errs
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError
	if cfg.Backend != "memory" && cfg.Backend != "sqlite" {
		errs = append(errs, FieldError{Field: "ledger.backend", Message: fmt.Sprintf("unknown backend %q, must be \"memory\" or \"sqlite\"", cfg.Backend)})
	}
	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{Field: "ledger.sqlite.path", Message: "path is required when backend is sqlite"})
	}
	if cfg.RingCapacity < 1 {
		errs = append(errs, FieldError{Field: "ledger.ring_capacity", Message: "must be at least 1"})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{Field: "ledger.retention.days", Message: "must be non-negative"})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{Field: "ledger.retention.max_records", Message: "must be non-negative"})
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			errs = append(errs, FieldError{Field: "ledger.retention.prune_schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{Field: "telemetry.logging.level", Message: fmt.Sprintf("invalid level %q", cfg.Logging.Level)})
	}
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{Field: "telemetry.logging.format", Message: fmt.Sprintf("invalid format %q", cfg.Logging.Format)})
	}

	if cfg.Tracing.Enabled {
		validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
		if !validSamplers[cfg.Tracing.Sampler] {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sampler", Message: fmt.Sprintf("invalid sampler %q", cfg.Tracing.Sampler)})
		}
		if cfg.Tracing.Sampler == "ratio" && (cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1) {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "must be between 0.0 and 1.0"})
		}
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.exporter", Message: fmt.Sprintf("unsupported exporter %q", cfg.Tracing.Exporter)})
		}
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError
	if cfg.MinTLSVersion != "1.2" && cfg.MinTLSVersion != "1.3" {
		errs = append(errs, FieldError{Field: "security.min_tls_version", Message: fmt.Sprintf("unsupported TLS version %q", cfg.MinTLSVersion)})
	}
	return errs
}
