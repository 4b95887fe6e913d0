package config

import "time"

// Default values for configuration fields.
const (
	// Listen defaults
	DefaultListenAddress  = "0.0.0.0:3128"
	DefaultMetricsAddress = "127.0.0.1:9090"

	// Pool defaults
	DefaultPoolMaxAvgResponseTimeMS    = int64(8000)
	DefaultPoolMinRequestsForFiltering = 5
	DefaultPoolPerProxyConcurrency     = 16
	DefaultPoolRuntimeSampleCap        = 50
	DefaultPoolEvictionSchedule        = "@every 1m"

	// Validator defaults
	DefaultValidatorMaxTries            = 3
	DefaultValidatorTimeout             = 8 * time.Second
	DefaultValidatorMaxConcurrentChecks = 50

	// Judges defaults
	DefaultJudgesRefreshIntervalSeconds = 300
	DefaultJudgesProbeTimeoutSeconds    = 2

	// DNSBL defaults
	DefaultDNSBLThreshold = 1

	// Session defaults
	DefaultSessionMaxTries            = 3
	DefaultSessionClientHandshakeRead = 30 * time.Second
	DefaultSessionBridgeIdleTimeout   = 60 * time.Second
	DefaultSessionShutdownGrace       = 250 * time.Millisecond

	// Ledger defaults
	DefaultLedgerBackend       = "memory"
	DefaultLedgerRingCapacity  = 10000
	DefaultLedgerAsyncBuffer   = 1000
	DefaultLedgerWriteTimeout  = 5 * time.Second
	DefaultLedgerSQLitePath    = "data/ledger.db"
	DefaultLedgerBusyTimeout   = 5 * time.Second
	DefaultLedgerRetentionDays = 30
	DefaultLedgerPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultLoggingBufferSize  = 10000
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "warren"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "warren"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultHealthLivenessPath = "/healthz"
	DefaultHealthCheckTimeout = 5 * time.Second

	// Security defaults
	DefaultMinTLSVersion = "1.2"
)

// defaultJudgeURLs is used only when no judges are configured at all, so a
// freshly installed gateway can still validate candidates out of the box.
var defaultJudgeURLs = []string{
	"http://httpbin.org/get",
	"https://azenv.net/",
}

var defaultProtocols = []string{"http", "https", "socks4", "socks5"}

var defaultSessionDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}

// ApplyDefaults applies default values to a Config struct for any fields
// that have zero values. Idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Listen.Address == "" {
		cfg.Listen.Address = DefaultListenAddress
	}
	if len(cfg.Listen.Protocols) == 0 {
		cfg.Listen.Protocols = append([]string(nil), defaultProtocols...)
	}
	if cfg.Listen.MetricsAddress == "" {
		cfg.Listen.MetricsAddress = DefaultMetricsAddress
	}

	if cfg.Pool.MaxAvgResponseTimeMS <= 0 {
		cfg.Pool.MaxAvgResponseTimeMS = DefaultPoolMaxAvgResponseTimeMS
	}
	if cfg.Pool.MinRequestsForFiltering <= 0 {
		cfg.Pool.MinRequestsForFiltering = DefaultPoolMinRequestsForFiltering
	}
	if cfg.Pool.PerProxyConcurrency <= 0 {
		cfg.Pool.PerProxyConcurrency = DefaultPoolPerProxyConcurrency
	}
	if cfg.Pool.RuntimeSampleCap <= 0 {
		cfg.Pool.RuntimeSampleCap = DefaultPoolRuntimeSampleCap
	}
	if cfg.Pool.EvictionSchedule == "" {
		cfg.Pool.EvictionSchedule = DefaultPoolEvictionSchedule
	}

	if cfg.Validator.MaxTries <= 0 {
		cfg.Validator.MaxTries = DefaultValidatorMaxTries
	}
	if cfg.Validator.DefaultTimeout <= 0 {
		cfg.Validator.DefaultTimeout = DefaultValidatorTimeout
	}
	if cfg.Validator.MaxConcurrentChecks <= 0 {
		cfg.Validator.MaxConcurrentChecks = DefaultValidatorMaxConcurrentChecks
	}
	if len(cfg.Validator.Protocols) == 0 {
		cfg.Validator.Protocols = append([]string(nil), defaultProtocols...)
	}

	if len(cfg.Judges.URLs) == 0 {
		cfg.Judges.URLs = append([]string(nil), defaultJudgeURLs...)
	}
	if cfg.Judges.RefreshIntervalSeconds <= 0 {
		cfg.Judges.RefreshIntervalSeconds = DefaultJudgesRefreshIntervalSeconds
	}
	if cfg.Judges.ProbeTimeoutSeconds <= 0 {
		cfg.Judges.ProbeTimeoutSeconds = DefaultJudgesProbeTimeoutSeconds
	}

	if cfg.DNSBL.Threshold <= 0 {
		cfg.DNSBL.Threshold = DefaultDNSBLThreshold
	}

	if cfg.Session.MaxTries <= 0 {
		cfg.Session.MaxTries = DefaultSessionMaxTries
	}
	if cfg.Session.ClientHandshakeRead <= 0 {
		cfg.Session.ClientHandshakeRead = DefaultSessionClientHandshakeRead
	}
	if cfg.Session.BridgeIdleTimeout <= 0 {
		cfg.Session.BridgeIdleTimeout = DefaultSessionBridgeIdleTimeout
	}
	if cfg.Session.ShutdownGrace <= 0 {
		cfg.Session.ShutdownGrace = DefaultSessionShutdownGrace
	}

	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = DefaultLedgerBackend
	}
	if cfg.Ledger.RingCapacity <= 0 {
		cfg.Ledger.RingCapacity = DefaultLedgerRingCapacity
	}
	if cfg.Ledger.AsyncBuffer <= 0 {
		cfg.Ledger.AsyncBuffer = DefaultLedgerAsyncBuffer
	}
	if cfg.Ledger.WriteTimeout <= 0 {
		cfg.Ledger.WriteTimeout = DefaultLedgerWriteTimeout
	}
	if cfg.Ledger.SQLite.Path == "" {
		cfg.Ledger.SQLite.Path = DefaultLedgerSQLitePath
	}
	if cfg.Ledger.SQLite.BusyTimeout <= 0 {
		cfg.Ledger.SQLite.BusyTimeout = DefaultLedgerBusyTimeout
	}
	if cfg.Ledger.Retention.Days == 0 {
		cfg.Ledger.Retention.Days = DefaultLedgerRetentionDays
	}
	if cfg.Ledger.Retention.PruneSchedule == "" {
		cfg.Ledger.Retention.PruneSchedule = DefaultLedgerPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.BufferSize <= 0 {
		cfg.Telemetry.Logging.BufferSize = DefaultLoggingBufferSize
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.SessionDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.SessionDurationBuckets = append([]float64(nil), defaultSessionDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout <= 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.CheckTimeout <= 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}

	if cfg.Security.MinTLSVersion == "" {
		cfg.Security.MinTLSVersion = DefaultMinTLSVersion
	}
}
