package validator

import (
	"time"

	"warren-hq/warren/pkg/pool"
)

// Candidate is a raw (host, port) pair awaiting validation.
type Candidate struct {
	Host string
	Port int
}

// Config controls one Validate call (spec §4.2).
type Config struct {
	// MaxTries bounds attempts per protocol (default 3).
	MaxTries int
	// AttemptTimeout bounds each individual attempt (default 8s).
	AttemptTimeout time.Duration
	// MaxAvgResponseTimeMS and MinSamplesForFiltering mirror the pool's
	// admission threshold (spec §4.2 "Admission rule").
	MaxAvgResponseTimeMS   int64
	MinSamplesForFiltering int
	// Protocols lists which client-side protocol probes to attempt.
	Protocols []pool.Protocol
}

// Result is what a successful or partial validation produced.
type Result struct {
	Host      string
	Port      int
	Protocols []pool.Protocol
	Anonymity pool.Anonymity
	Country   string
	Runtimes  []int64
	Admitted  bool
	JudgeID   string
}

func defaultConfig(cfg Config) Config {
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 8 * time.Second
	}
	if cfg.MaxAvgResponseTimeMS <= 0 {
		cfg.MaxAvgResponseTimeMS = 8000
	}
	if cfg.MinSamplesForFiltering <= 0 {
		cfg.MinSamplesForFiltering = 5
	}
	if len(cfg.Protocols) == 0 {
		cfg.Protocols = []pool.Protocol{
			pool.ProtoHTTP, pool.ProtoHTTPS, pool.ProtoSOCKS4, pool.ProtoSOCKS5,
			pool.ProtoConnect80, pool.ProtoConnect25,
		}
	}
	return cfg
}
