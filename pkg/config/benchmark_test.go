package config

import (
	"os"
	"path/filepath"
	"testing"
)

// BenchmarkLoadConfig benchmarks loading a typical configuration file.
func BenchmarkLoadConfig(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
listen:
  address: "0.0.0.0:3128"
  protocols: ["http", "https", "socks4", "socks5"]

pool:
  max_avg_response_time_ms: 8000
  min_requests_for_filtering: 5

judges:
  urls:
    - "http://httpbin.org/get"
    - "https://azenv.net/"

ledger:
  enabled: true
  backend: "memory"

telemetry:
  logging:
    level: "info"
    format: "json"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig(path); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkValidate benchmarks validating an already-defaulted configuration.
func BenchmarkValidate(b *testing.B) {
	cfg := MinimalConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Validate(cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkApplyDefaults benchmarks applying defaults to an empty config.
func BenchmarkApplyDefaults(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var cfg Config
		ApplyDefaults(&cfg)
	}
}
