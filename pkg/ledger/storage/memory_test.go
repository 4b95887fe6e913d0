package storage

import (
	"context"
	"testing"
	"time"

	"warren-hq/warren/pkg/ledger"
)

func TestRingStorageStoreAndQuery(t *testing.T) {
	s := NewRingStorage(10)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		rec := &ledger.SessionRecord{
			ID:           "s" + string(rune('0'+i)),
			StartTime:    now.Add(time.Duration(i) * time.Second),
			EndTime:      now.Add(time.Duration(i)*time.Second + time.Millisecond),
			UpstreamHost: "1.2.3.4",
			Protocol:     "http",
			Outcome:      "success",
		}
		if err := s.Store(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.Query(ctx, &ledger.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 records, got %d", len(results))
	}
}

func TestRingStorageCapacityEvictsOldest(t *testing.T) {
	s := NewRingStorage(2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Store(ctx, &ledger.SessionRecord{ID: "x", StartTime: time.Now()})
	}
	if s.Size() != 2 {
		t.Fatalf("expected capacity-bounded size 2, got %d", s.Size())
	}
}

func TestRingStorageDeleteByProtocol(t *testing.T) {
	s := NewRingStorage(10)
	ctx := context.Background()
	s.Store(ctx, &ledger.SessionRecord{ID: "a", Protocol: "http", StartTime: time.Now()})
	s.Store(ctx, &ledger.SessionRecord{ID: "b", Protocol: "socks5", StartTime: time.Now()})

	deleted, err := s.Delete(ctx, &ledger.Query{Protocol: "http"})
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}
	if s.Size() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.Size())
	}
}

func TestRingStorageLastHashEmptyThenSet(t *testing.T) {
	s := NewRingStorage(10)
	ctx := context.Background()

	hash, err := s.LastHash(ctx)
	if err != nil || hash != "" {
		t.Fatalf("expected empty hash on empty ledger, got %q err=%v", hash, err)
	}

	s.Store(ctx, &ledger.SessionRecord{ID: "a", Hash: "abc123", StartTime: time.Now()})
	hash, err = s.LastHash(ctx)
	if err != nil || hash != "abc123" {
		t.Fatalf("expected hash abc123, got %q err=%v", hash, err)
	}
}
