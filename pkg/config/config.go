package config

import "time"

// Config is the root configuration structure for warren, the proxy-rotation
// gateway. It contains every section needed to run a client-facing server:
// the listener, the pool, the validator, the judge registry, selection
// defaults, the DNSBL collaborator, session limits, the session ledger, and
// the telemetry/security ambient stack.
type Config struct {
	// Listen contains client-facing listener configuration.
	Listen ListenConfig `yaml:"listen"`

	// Pool contains proxy pool admission, filtering, and eviction configuration.
	Pool PoolConfig `yaml:"pool"`

	// Validator contains candidate validation configuration.
	Validator ValidatorConfig `yaml:"validator"`

	// Judges contains judge registry configuration.
	Judges JudgesConfig `yaml:"judges"`

	// Selection contains default Requirements applied to client sessions
	// that do not otherwise constrain their upstream choice.
	Selection SelectionConfig `yaml:"selection"`

	// DNSBL contains DNS blacklist collaborator configuration.
	DNSBL DNSBLConfig `yaml:"dnsbl"`

	// Session contains per-connection server limits.
	Session SessionConfig `yaml:"session"`

	// Ledger contains session-outcome audit log configuration.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains configuration for observability.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains outbound TLS posture for HTTPS judge probing.
	Security SecurityConfig `yaml:"security"`
}

// ListenConfig contains the client-facing listener configuration.
type ListenConfig struct {
	// Address is the address and port the gateway listens on for client
	// connections of any supported protocol.
	// Format: "host:port" (e.g., "0.0.0.0:3128").
	// Default: "0.0.0.0:3128"
	//
	// Address does not hot-reload; a change requires a restart.
	Address string `yaml:"address"`

	// Protocols is checked against the options below but is not passed to
	// the server: the listener accepts HTTP (including CONNECT), SOCKS4 and
	// SOCKS5 clients whatever this list holds.
	// Options: "http", "https", "socks4", "socks5".
	// Default: all four.
	Protocols []string `yaml:"protocols"`

	// MetricsAddress is the separate internal listener address for
	// /metrics and /healthz. Never multiplexed with client traffic.
	// Default: "127.0.0.1:9090"
	MetricsAddress string `yaml:"metrics_address"`
}

// PoolConfig contains proxy pool configuration (spec §4.3, §6).
type PoolConfig struct {
	// MaxAvgResponseTimeMS is max_avg_response_time_ms: the eviction and
	// Select ceiling on a record's average observed latency.
	// Default: 8000
	MaxAvgResponseTimeMS int64 `yaml:"max_avg_response_time_ms"`

	// MinRequestsForFiltering is min_requests_for_filtering: the sample
	// count below which latency/success-rate filtering is skipped.
	// Default: 5
	MinRequestsForFiltering int `yaml:"min_requests_for_filtering"`

	// PerProxyConcurrency bounds concurrent checkouts per record.
	// Default: 16
	PerProxyConcurrency int `yaml:"per_proxy_concurrency"`

	// RuntimeSampleCap is validated (it must be at least 1) but is not
	// passed to the pool: every record keeps the pool's fixed ring of the
	// 50 most recent runtime samples for latency averaging.
	// Default: 50
	RuntimeSampleCap int `yaml:"runtime_sample_cap"`

	// EvictionSchedule is a cron expression for the periodic eviction
	// sweep. An empty value is replaced by the default (eviction also
	// happens inline on Release).
	// Default: "@every 1m"
	EvictionSchedule string `yaml:"eviction_schedule"`
}

// ValidatorConfig contains candidate validation configuration (spec §4.2).
type ValidatorConfig struct {
	// MaxTries bounds attempts per protocol.
	// Default: 3
	MaxTries int `yaml:"max_tries"`

	// DefaultTimeout bounds each individual validation attempt.
	// Default: 8s
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// MaxConcurrentChecks bounds how many candidates are validated at once.
	// Default: 50
	MaxConcurrentChecks int `yaml:"max_concurrent_checks"`

	// Protocols lists which client-side protocol probes to attempt against
	// a candidate. Options mirror pool.Protocol values.
	// Default: "http", "https", "socks4", "socks5".
	Protocols []string `yaml:"protocols"`
}

// JudgesConfig contains judge registry configuration (spec §4.1).
type JudgesConfig struct {
	// URLs lists judge endpoints, one per scheme the judge answers on
	// (e.g. "http://httpbin.org/get", "https://azenv.net/").
	URLs []string `yaml:"urls"`

	// RefreshIntervalSeconds is judges.refresh_interval_s: how often every
	// registered judge is re-probed for health.
	// Default: 300 (5 minutes)
	RefreshIntervalSeconds int `yaml:"refresh_interval_s"`

	// ProbeTimeoutSeconds bounds one judge health probe.
	// Default: 2
	ProbeTimeoutSeconds int `yaml:"probe_timeout_s"`
}

// SelectionConfig contains default Select requirements (spec §4.3, §6).
type SelectionConfig struct {
	// CountriesAllow restricts selection to these ISO country codes, if set.
	CountriesAllow []string `yaml:"countries_allow"`

	// CountriesExclude removes these ISO country codes from consideration.
	CountriesExclude []string `yaml:"countries_exclude"`

	// MinAnonymity is the minimum anonymity level a record must satisfy:
	// "transparent", "anonymous", "high", or "" (unknown, no requirement).
	// Default: ""
	MinAnonymity string `yaml:"min_anonymity"`
}

// DNSBLConfig contains DNS blacklist collaborator configuration.
type DNSBLConfig struct {
	// Enabled controls whether DNSBL lookups gate pool admission.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Threshold is the minimum number of list hits for a candidate IP to be
	// considered malicious and excluded from admission.
	// Default: 1
	Threshold int `yaml:"threshold"`
}

// SessionConfig contains per-connection server limits (spec §5, §6).
type SessionConfig struct {
	// MaxConnections bounds concurrent client sessions. 0 means unbounded.
	// Default: 0
	MaxConnections int `yaml:"max_connections"`

	// MaxTries bounds pool reselection attempts per client session before
	// giving up with an upstream-exhausted error.
	// Default: 3
	MaxTries int `yaml:"max_tries"`

	// ClientHandshakeRead bounds how long the server waits to read a
	// client's initial protocol handshake/request.
	// Default: 30s
	ClientHandshakeRead time.Duration `yaml:"client_handshake_read"`

	// BridgeIdleTimeout resets on every byte read in either direction of a
	// bridged session; the session is torn down once it elapses with no
	// activity.
	// Default: 60s
	BridgeIdleTimeout time.Duration `yaml:"bridge_idle_timeout"`

	// ShutdownGrace bounds how long Shutdown waits for in-flight sessions
	// to drain before returning.
	// Default: 250ms
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// LedgerConfig contains session ledger configuration (SPEC_FULL §12.1).
type LedgerConfig struct {
	// Enabled controls whether completed sessions are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the ledger storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration, used when Backend is
	// "sqlite".
	SQLite LedgerSQLiteConfig `yaml:"sqlite"`

	// RingCapacity bounds the in-memory ring buffer, used when Backend is
	// "memory".
	// Default: 10000
	RingCapacity int `yaml:"ring_capacity"`

	// AsyncBuffer is the size of the async record write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a session record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Retention contains retention pruning configuration.
	Retention LedgerRetentionConfig `yaml:"retention"`
}

// LedgerSQLiteConfig contains SQLite-specific ledger configuration.
type LedgerSQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/ledger.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LedgerRetentionConfig contains ledger retention pruning configuration.
type LedgerRetentionConfig struct {
	// Days is the number of days to retain session records. 0 is treated
	// as unset and replaced by the default; negative values are rejected.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep. 0 means
	// unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactCredentials enables automatic redaction of upstream proxy
	// credentials (user:pass@host:port), auth headers and IP addresses in
	// logged fields.
	// Default: true
	RedactCredentials bool `yaml:"redact_credentials"`

	// BufferSize is the size of the async log buffer.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "warren"
	Namespace string `yaml:"namespace"`

	// SessionDurationBuckets defines histogram buckets for session
	// duration (seconds).
	// Default: [0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0]
	SessionDurationBuckets []float64 `yaml:"session_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0). Only
	// used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to every span.
	// Default: "warren"
	ServiceName string `yaml:"service_name"`

	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled is not consulted by the serve command: the liveness path is
	// registered whenever Listen.MetricsAddress is set.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint, served on
	// Listen.MetricsAddress alongside /metrics.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// SecurityConfig contains outbound TLS posture used when probing HTTPS
// judges or negotiating HTTPS/CONNECT upstreams. This is not a listener TLS
// config: the gateway never terminates client TLS (spec §1 Non-goals).
type SecurityConfig struct {
	// MinTLSVersion is the minimum TLS version accepted from judges and
	// upstream proxies.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinTLSVersion string `yaml:"min_tls_version"`

	// InsecureSkipVerify disables certificate verification for outbound
	// HTTPS probes. Only meant for judges/proxies with self-signed
	// certificates during local testing.
	// Default: false
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}
