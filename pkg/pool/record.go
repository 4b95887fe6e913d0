package pool

import (
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRuntimeSamples is the bounded history length for Record.runtimes (N
// in spec §3).
const DefaultRuntimeSamples = 50

// DefaultMinSamples is the minimum number of runtime samples required before
// latency-based filtering and eviction apply (spec §3 invariant d).
const DefaultMinSamples = 5

// DefaultPerProxyConcurrency is the number of concurrent checkouts a single
// record may have outstanding before Select skips it (spec §4.3).
const DefaultPerProxyConcurrency = 16

// consecutiveFailureEvictionThreshold is eviction rule (a) in spec §4.3:
// five consecutive failures with no intervening success.
const consecutiveFailureEvictionThreshold = 5

// Key identifies a record by its unique (host, port) pair (spec §3
// invariant a).
type Key struct {
	Host string
	Port int
}

func (k Key) String() string {
	return net.JoinHostPort(k.Host, strconv.Itoa(k.Port))
}

// Record is one admitted upstream proxy. All mutable fields are guarded by
// mu except inUse, which is a counting semaphore accessed atomically so that
// Select never has to block on a record's own lock.
type Record struct {
	Key Key

	mu         sync.Mutex
	protocols  map[Protocol]struct{}
	anonymity  Anonymity
	country    string
	runtimes   []int64 // ring buffer, len capped at maxSamples
	next       int     // next write index in the ring
	filled     bool    // true once the ring has wrapped at least once
	maxSamples int

	requestsTotal       uint64
	requestsFailed      uint64
	lastUsedEpochMS     int64
	errorLast           string
	consecutiveFailures int

	lastJudgeID string // opaque identifier only; pool never holds a judge handle

	state  State
	inUse  int32
	capVal int32
}

// NewRecord creates a Ready record with the given identity and initial
// protocol/runtime seed, as produced by a successful validation.
func NewRecord(key Key, protocols []Protocol, anonymity Anonymity, country string, seedRuntimes []int64, perProxyConcurrency int) *Record {
	if perProxyConcurrency <= 0 {
		perProxyConcurrency = DefaultPerProxyConcurrency
	}
	r := &Record{
		Key:        key,
		protocols:  make(map[Protocol]struct{}, len(protocols)),
		anonymity:  anonymity,
		country:    country,
		maxSamples: DefaultRuntimeSamples,
		state:      StateReady,
		capVal:     int32(perProxyConcurrency),
	}
	for _, p := range protocols {
		r.protocols[p] = struct{}{}
	}
	for _, ms := range seedRuntimes {
		r.appendRuntimeLocked(ms)
	}
	return r
}

// HasProtocol reports whether the record was validated for p.
func (r *Record) HasProtocol(p Protocol) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.protocols[p]
	return ok
}

// Protocols returns a snapshot of the record's validated protocols.
func (r *Record) Protocols() []Protocol {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Protocol, 0, len(r.protocols))
	for p := range r.protocols {
		out = append(out, p)
	}
	return out
}

// mergeProtocols adds protocols to the set without clearing existing ones,
// used by Pool.Admit when re-validating a known (host,port).
func (r *Record) mergeProtocols(protocols []Protocol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range protocols {
		r.protocols[p] = struct{}{}
	}
}

// Anonymity returns the record's classified anonymity level.
func (r *Record) Anonymity() Anonymity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anonymity
}

// Country returns the ISO-3166 alpha-2 code, or "--" if unknown.
func (r *Record) Country() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.country == "" {
		return "--"
	}
	return r.country
}

// State returns the record's current lifecycle state.
func (r *Record) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// appendRuntimeLocked pushes a new elapsed-ms sample into the bounded ring.
// Caller must hold mu.
func (r *Record) appendRuntimeLocked(ms int64) {
	if r.maxSamples <= 0 {
		r.maxSamples = DefaultRuntimeSamples
	}
	if len(r.runtimes) < r.maxSamples {
		r.runtimes = append(r.runtimes, ms)
		r.next = len(r.runtimes) % r.maxSamples
		return
	}
	r.runtimes[r.next] = ms
	r.next = (r.next + 1) % r.maxSamples
	r.filled = true
}

// SampleCount returns |runtimes|.
func (r *Record) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runtimes)
}

// AvgRuntimeMS returns the mean of recorded runtimes and whether there are
// enough samples (>= minSamples) for the average to be meaningful (spec §3
// invariant d).
func (r *Record) AvgRuntimeMS(minSamples int) (avg int64, sufficient bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runtimes) < minSamples {
		return 0, false
	}
	var sum int64
	for _, v := range r.runtimes {
		sum += v
	}
	return sum / int64(len(r.runtimes)), true
}

// Stats is a point-in-time snapshot of a record's counters.
type Stats struct {
	RequestsTotal       uint64
	RequestsFailed      uint64
	LastUsedEpochMS     int64
	ErrorLast           string
	ConsecutiveFailures int
}

// StatsSnapshot returns a copy of the record's current counters.
func (r *Record) StatsSnapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		RequestsTotal:       r.requestsTotal,
		RequestsFailed:      r.requestsFailed,
		LastUsedEpochMS:     r.lastUsedEpochMS,
		ErrorLast:           r.errorLast,
		ConsecutiveFailures: r.consecutiveFailures,
	}
}

// failureRate returns requests_failed / requests_total, 0 when no requests
// have been made yet (treated as best-case for selection ordering).
func (r *Record) failureRateLocked() float64 {
	if r.requestsTotal == 0 {
		return 0
	}
	return float64(r.requestsFailed) / float64(r.requestsTotal)
}

// recordOutcome applies a session outcome under the record's own lock. It
// never returns an error — release is infallible per spec §4.3.
func (r *Record) recordOutcome(outcome Outcome, elapsedMS int64, cause string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requestsTotal++
	r.lastUsedEpochMS = time.Now().UnixMilli()
	if elapsedMS >= 0 {
		r.appendRuntimeLocked(elapsedMS)
	}

	if outcome == Failure {
		r.requestsFailed++
		r.consecutiveFailures++
		r.errorLast = cause
	} else {
		r.consecutiveFailures = 0
		r.errorLast = ""
	}
}

// shouldEvictLocked applies spec §4.3's three eviction clauses. Caller must
// hold mu.
func (r *Record) shouldEvictLocked(maxAvgRTMS int64, minSamples int) bool {
	if r.consecutiveFailures >= consecutiveFailureEvictionThreshold {
		return true
	}
	if len(r.runtimes) >= minSamples {
		var sum int64
		for _, v := range r.runtimes {
			sum += v
		}
		avg := sum / int64(len(r.runtimes))
		if avg > maxAvgRTMS {
			return true
		}
	}
	if r.requestsTotal >= 20 {
		successRate := 1 - r.failureRateLocked()
		if successRate < 0.1 {
			return true
		}
	}
	return false
}

// tryCheckout attempts to atomically increment the in-use counter, honoring
// the per-proxy concurrency cap. It never blocks.
func (r *Record) tryCheckout() bool {
	for {
		cur := atomic.LoadInt32(&r.inUse)
		if cur >= r.capVal {
			return false
		}
		if atomic.CompareAndSwapInt32(&r.inUse, cur, cur+1) {
			return true
		}
	}
}

// checkin releases one outstanding checkout.
func (r *Record) checkin() {
	for {
		cur := atomic.LoadInt32(&r.inUse)
		if cur <= 0 {
			return
		}
		if atomic.CompareAndSwapInt32(&r.inUse, cur, cur-1) {
			return
		}
	}
}

// InUseCount returns the number of outstanding checkouts.
func (r *Record) InUseCount() int {
	return int(atomic.LoadInt32(&r.inUse))
}

// SetLastJudge records the opaque identifier of the judge last used to
// validate this record. The pool never holds a handle to the judge itself
// (spec §9 "cyclic relations").
func (r *Record) SetLastJudge(judgeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastJudgeID = judgeID
}

// LastJudge returns the opaque judge identifier last recorded.
func (r *Record) LastJudge() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastJudgeID
}
