package judge

import (
	"net/url"
	"sync"
)

// Scheme is the transport a judge endpoint is reached through.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeSMTP  Scheme = "smtp"
)

// consecutiveFailureUnhealthyThreshold marks a judge unhealthy after three
// consecutive failed probes (spec §4.1).
const consecutiveFailureUnhealthyThreshold = 3

// emaAlpha is the smoothing factor for the observed-latency EMA (spec §4.1).
const emaAlpha = 0.3

// Judge is one external echo endpoint used to probe candidates. All mutable
// fields are guarded by mu; EMA updates and Best() reads must observe each
// other atomically (spec §5 "Shared resources").
type Judge struct {
	URL    string
	Scheme Scheme
	Host   string

	mu                  sync.Mutex
	observedLatencyMS   float64
	latencySeeded       bool
	successCount        uint64
	failureCount        uint64
	lastProbeEpochMS    int64
	lastSuccessEpochMS  int64
	consecutiveFailures int
	healthy             bool
}

// NewJudge parses a judge URL and returns an unhealthy, unprobed Judge ready
// for its first probe.
func NewJudge(rawURL string) (*Judge, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	scheme := Scheme(u.Scheme)
	switch scheme {
	case SchemeHTTP, SchemeHTTPS, SchemeSMTP:
	default:
		scheme = SchemeHTTP
	}
	return &Judge{
		URL:    rawURL,
		Scheme: scheme,
		Host:   u.Host,
	}, nil
}

// score computes min(10, 1000/latency_ms) * (success/(success+failure+1))
// (spec §3 "Judge record"). Caller must hold mu.
func (j *Judge) scoreLocked() float64 {
	if !j.latencySeeded || j.observedLatencyMS <= 0 {
		return 0
	}
	latencyTerm := 1000 / j.observedLatencyMS
	if latencyTerm > 10 {
		latencyTerm = 10
	}
	denom := float64(j.successCount + j.failureCount + 1)
	return latencyTerm * (float64(j.successCount) / denom)
}

// Healthy reports whether the judge is currently eligible for Best().
func (j *Judge) Healthy() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.healthy
}

// Snapshot is a point-in-time copy of a judge's scoring state, safe to read
// without holding the judge's lock.
type Snapshot struct {
	URL                 string
	Scheme              Scheme
	ObservedLatencyMS   float64
	SuccessCount        uint64
	FailureCount        uint64
	LastProbeEpochMS    int64
	LastSuccessEpochMS  int64
	ConsecutiveFailures int
	Healthy             bool
	Score               float64
}

// Stats returns a Snapshot of the judge's current state.
func (j *Judge) Stats() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		URL:                 j.URL,
		Scheme:              j.Scheme,
		ObservedLatencyMS:   j.observedLatencyMS,
		SuccessCount:        j.successCount,
		FailureCount:        j.failureCount,
		LastProbeEpochMS:    j.lastProbeEpochMS,
		LastSuccessEpochMS:  j.lastSuccessEpochMS,
		ConsecutiveFailures: j.consecutiveFailures,
		Healthy:             j.healthy,
		Score:               j.scoreLocked(),
	}
}
