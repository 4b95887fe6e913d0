package config

// ConfigBuilder provides a fluent API for building Config instances in
// tests. It starts with sensible defaults and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder seeded with defaults. The
// resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	var cfg Config
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the constructed configuration.
func (b *ConfigBuilder) Build() *Config {
	cfg := b.cfg
	return &cfg
}

// WithListenAddress overrides the listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Listen.Address = addr
	return b
}

// WithJudgeURLs overrides the configured judge URLs.
func (b *ConfigBuilder) WithJudgeURLs(urls ...string) *ConfigBuilder {
	b.cfg.Judges.URLs = urls
	return b
}

// WithLedgerBackend overrides the ledger backend.
func (b *ConfigBuilder) WithLedgerBackend(backend string) *ConfigBuilder {
	b.cfg.Ledger.Backend = backend
	return b
}

// MinimalConfig returns the smallest configuration that passes Validate.
func MinimalConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
