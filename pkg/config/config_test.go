package config

import "testing"

func TestNewTestConfigAppliesDefaults(t *testing.T) {
	cfg := NewTestConfig().Build()

	if cfg.Listen.Address != DefaultListenAddress {
		t.Errorf("expected listen address %q, got %q", DefaultListenAddress, cfg.Listen.Address)
	}
	if cfg.Pool.MaxAvgResponseTimeMS != DefaultPoolMaxAvgResponseTimeMS {
		t.Errorf("expected max avg response time %d, got %d", DefaultPoolMaxAvgResponseTimeMS, cfg.Pool.MaxAvgResponseTimeMS)
	}
	if len(cfg.Judges.URLs) == 0 {
		t.Error("expected default judge URLs to be populated")
	}
	if cfg.Ledger.Backend != DefaultLedgerBackend {
		t.Errorf("expected ledger backend %q, got %q", DefaultLedgerBackend, cfg.Ledger.Backend)
	}
}

func TestConfigBuilderOverrides(t *testing.T) {
	cfg := NewTestConfig().
		WithListenAddress("127.0.0.1:9999").
		WithJudgeURLs("http://example.test/judge").
		WithLedgerBackend("sqlite").
		Build()

	if cfg.Listen.Address != "127.0.0.1:9999" {
		t.Errorf("expected overridden listen address, got %q", cfg.Listen.Address)
	}
	if len(cfg.Judges.URLs) != 1 || cfg.Judges.URLs[0] != "http://example.test/judge" {
		t.Errorf("expected overridden judge URLs, got %v", cfg.Judges.URLs)
	}
	if cfg.Ledger.Backend != "sqlite" {
		t.Errorf("expected overridden ledger backend, got %q", cfg.Ledger.Backend)
	}
}

func TestMinimalConfigIsValid(t *testing.T) {
	if err := Validate(MinimalConfig()); err != nil {
		t.Fatalf("expected minimal config to be valid, got: %v", err)
	}
}
