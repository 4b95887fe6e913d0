package pool

import "testing"

func TestKeyString(t *testing.T) {
	k := Key{Host: "192.168.1.1", Port: 1080}
	if got, want := k.String(), "192.168.1.1:1080"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecordOutcomeFailureRateNeverExceedsTotal(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US", nil, 16)
	for i := 0; i < 10; i++ {
		outcome := Success
		if i%3 == 0 {
			outcome = Failure
		}
		r.recordOutcome(outcome, 50, "boom")
	}
	snap := r.StatsSnapshot()
	if snap.RequestsFailed > snap.RequestsTotal {
		t.Fatalf("requests_failed (%d) > requests_total (%d)", snap.RequestsFailed, snap.RequestsTotal)
	}
}

func TestRecordOutcomeSuccessResetsConsecutiveFailures(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US", nil, 16)
	r.recordOutcome(Failure, 10, "timeout")
	r.recordOutcome(Failure, 10, "timeout")
	r.recordOutcome(Success, 10, "")
	snap := r.StatsSnapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("expected consecutive failures reset to 0, got %d", snap.ConsecutiveFailures)
	}
	if snap.ErrorLast != "" {
		t.Fatalf("expected error_last cleared on success, got %q", snap.ErrorLast)
	}
}

func TestShouldEvictFiveConsecutiveFailures(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US", nil, 16)
	for i := 0; i < 4; i++ {
		r.recordOutcome(Failure, 10, "reset")
	}
	r.mu.Lock()
	evict := r.shouldEvictLocked(8000, 5)
	r.mu.Unlock()
	if evict {
		t.Fatal("expected no eviction before fifth consecutive failure")
	}
	r.recordOutcome(Failure, 10, "reset")
	r.mu.Lock()
	evict = r.shouldEvictLocked(8000, 5)
	r.mu.Unlock()
	if !evict {
		t.Fatal("expected eviction on fifth consecutive failure")
	}
}

func TestShouldEvictLowSuccessRateAtVolume(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US", nil, 16)
	// 20 total requests, only 1 success (5%). The success is the last call,
	// so the consecutive-failure streak is back at zero and only the
	// success-rate rule can trigger.
	for i := 0; i < 20; i++ {
		if i == 19 {
			r.recordOutcome(Success, 10, "")
			continue
		}
		r.recordOutcome(Failure, 10, "reset")
	}
	r.mu.Lock()
	evict := r.shouldEvictLocked(8000, 5)
	r.mu.Unlock()
	if !evict {
		t.Fatal("expected eviction for <10% success rate at >=20 requests")
	}
}

func TestShouldEvictHighAverageRuntime(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US",
		[]int64{9000, 9100, 9200, 9300, 9400}, 16)
	r.mu.Lock()
	evict := r.shouldEvictLocked(8000, 5)
	r.mu.Unlock()
	if !evict {
		t.Fatal("expected eviction when average runtime exceeds threshold with enough samples")
	}
}

func TestTryCheckoutRespectsCapAndNeverBlocks(t *testing.T) {
	r := NewRecord(Key{Host: "a", Port: 1}, []Protocol{ProtoHTTP}, AnonymityHigh, "US", nil, 2)
	if !r.tryCheckout() {
		t.Fatal("expected first checkout to succeed")
	}
	if !r.tryCheckout() {
		t.Fatal("expected second checkout to succeed (cap=2)")
	}
	if r.tryCheckout() {
		t.Fatal("expected third checkout to fail immediately, not block")
	}
	r.checkin()
	if !r.tryCheckout() {
		t.Fatal("expected checkout to succeed again after checkin")
	}
}

func TestAnonymityParsing(t *testing.T) {
	cases := map[string]Anonymity{
		"transparent": AnonymityTransparent,
		"anonymous":   AnonymityAnonymous,
		"high":        AnonymityHigh,
	}
	for in, want := range cases {
		got, err := ParseAnonymity(in)
		if err != nil {
			t.Fatalf("ParseAnonymity(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAnonymity(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseAnonymity("bogus"); err == nil {
		t.Fatal("expected error for unknown anonymity level")
	}
}

func TestRequirementsCountryAllowed(t *testing.T) {
	req := Requirements{CountriesInclude: []string{"US", "DE"}}
	if !req.countryAllowed("us") {
		t.Fatal("expected case-insensitive inclusion match")
	}
	if req.countryAllowed("CN") {
		t.Fatal("expected country outside include list to be disallowed")
	}

	req2 := Requirements{CountriesExclude: []string{"CN"}}
	if req2.countryAllowed("cn") {
		t.Fatal("expected excluded country to be disallowed")
	}
	if !req2.countryAllowed("US") {
		t.Fatal("expected non-excluded country to be allowed")
	}
}
