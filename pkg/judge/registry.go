package judge

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is what a probe attempt observed.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

// Prober performs one probe attempt against a judge and reports whether it
// succeeded. It is supplied by the caller (normally the Validator package)
// so the registry itself stays transport-agnostic.
type Prober func(ctx context.Context, j *Judge) error

// Registry owns every configured Judge exclusively. Best hands the
// Validator a pointer to the top-ranked Judge; its health state is updated
// only through the Registry (spec §3 "Ownership").
type Registry struct {
	proberTimeout time.Duration
	prober        Prober

	mu     sync.RWMutex
	judges map[string][]*Judge // keyed by Scheme
}

// NewRegistry builds an empty registry. prober performs the actual network
// probe; proberTimeout bounds each attempt (default 2s per spec §4.1).
func NewRegistry(prober Prober, proberTimeout time.Duration) *Registry {
	if proberTimeout <= 0 {
		proberTimeout = 2 * time.Second
	}
	return &Registry{
		proberTimeout: proberTimeout,
		prober:        prober,
		judges:        make(map[string][]*Judge),
	}
}

// Add registers a judge URL. Safe to call before or after Initialize.
func (r *Registry) Add(rawURL string) error {
	j, err := NewJudge(rawURL)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.judges[string(j.Scheme)] = append(r.judges[string(j.Scheme)], j)
	return nil
}

// Initialize probes every configured judge in parallel and returns the count
// of judges that came back healthy, per scheme.
func (r *Registry) Initialize(ctx context.Context) map[Scheme]int {
	r.mu.RLock()
	all := make([]*Judge, 0)
	for _, list := range r.judges {
		all = append(all, list...)
	}
	r.mu.RUnlock()

	var wg sync.WaitGroup
	for _, j := range all {
		wg.Add(1)
		go func(j *Judge) {
			defer wg.Done()
			r.probeOne(ctx, j)
		}(j)
	}
	wg.Wait()

	counts := make(map[Scheme]int)
	for _, j := range all {
		if j.Healthy() {
			counts[j.Scheme]++
		}
	}
	return counts
}

// Best returns the currently highest-scoring healthy judge for scheme, or
// false if none qualifies. Ties break by most recent success time.
func (r *Registry) Best(scheme Scheme) (*Judge, bool) {
	r.mu.RLock()
	candidates := r.judges[string(scheme)]
	r.mu.RUnlock()

	var best *Judge
	var bestSnap Snapshot
	for _, j := range candidates {
		snap := j.Stats()
		if !snap.Healthy {
			continue
		}
		if best == nil {
			best, bestSnap = j, snap
			continue
		}
		if snap.Score > bestSnap.Score ||
			(snap.Score == bestSnap.Score && snap.LastSuccessEpochMS > bestSnap.LastSuccessEpochMS) {
			best, bestSnap = j, snap
		}
	}
	return best, best != nil
}

// Report records the outcome of a probe attempt performed by a caller
// outside the registry (e.g. a Validator protocol probe that reused the
// judge rather than going through probeOne). It updates the EMA latency and
// success/failure counters the same way an internal probe would.
func (r *Registry) Report(j *Judge, outcome Outcome, elapsedMS int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	r.applyOutcomeLocked(j, outcome, elapsedMS)
}

// applyOutcomeLocked updates EMA latency, success/failure counts, and
// health state. Caller must hold j.mu.
func (r *Registry) applyOutcomeLocked(j *Judge, outcome Outcome, elapsedMS int64) {
	j.lastProbeEpochMS = time.Now().UnixMilli()

	if outcome == Success {
		j.successCount++
		j.consecutiveFailures = 0
		j.healthy = true
		j.lastSuccessEpochMS = j.lastProbeEpochMS
		if !j.latencySeeded {
			j.observedLatencyMS = float64(elapsedMS)
			j.latencySeeded = true
		} else {
			j.observedLatencyMS = emaAlpha*float64(elapsedMS) + (1-emaAlpha)*j.observedLatencyMS
		}
		return
	}

	j.failureCount++
	j.consecutiveFailures++
	if j.consecutiveFailures >= consecutiveFailureUnhealthyThreshold {
		j.healthy = false
	}
}

// probeOne runs the registry's own Prober against j and applies the result.
// A probe timeout is itself a failure (spec §4.1).
func (r *Registry) probeOne(ctx context.Context, j *Judge) {
	if r.prober == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, r.proberTimeout)
	defer cancel()

	start := time.Now()
	err := r.prober(probeCtx, j)
	elapsed := time.Since(start).Milliseconds()

	outcome := Success
	if err != nil {
		outcome = Failure
	}
	r.Report(j, outcome, elapsed)
}

// Snapshot returns a point-in-time Snapshot of every registered judge,
// keyed by URL, for metrics/health reporting.
func (r *Registry) Snapshot() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Snapshot)
	for _, list := range r.judges {
		for _, j := range list {
			out[j.URL] = j.Stats()
		}
	}
	return out
}

// Refresh re-probes every configured judge. Intended to run on a fixed
// interval (default 5 min, spec §4.1); callers schedule it via cron.
func (r *Registry) Refresh(ctx context.Context) map[Scheme]int {
	return r.Initialize(ctx)
}

// NewProbeAttemptID mints a correlation ID for one probe attempt, so logs
// from the registry and from protocol-specific validator probes can be
// joined on a single request.
func NewProbeAttemptID() string {
	return uuid.NewString()
}
