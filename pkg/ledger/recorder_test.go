package ledger

import (
	"context"
	"testing"
	"time"
)

type fakeStorage struct {
	stored []*SessionRecord
}

func (f *fakeStorage) Store(ctx context.Context, r *SessionRecord) error {
	f.stored = append(f.stored, r)
	return nil
}
func (f *fakeStorage) Query(ctx context.Context, q *Query) ([]*SessionRecord, error) { return f.stored, nil }
func (f *fakeStorage) Count(ctx context.Context, q *Query) (int64, error)            { return int64(len(f.stored)), nil }
func (f *fakeStorage) Delete(ctx context.Context, q *Query) (int64, error)           { return 0, nil }
func (f *fakeStorage) LastHash(ctx context.Context) (string, error) {
	if len(f.stored) == 0 {
		return "", nil
	}
	return f.stored[len(f.stored)-1].Hash, nil
}
func (f *fakeStorage) Close() error { return nil }

func waitForStored(t *testing.T, store *fakeStorage, n int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if len(store.stored) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d stored records, got %d", n, len(store.stored))
}

func TestRecorderChainsHashes(t *testing.T) {
	store := &fakeStorage{}
	r := NewRecorder(context.Background(), store, DefaultConfig())
	defer r.Close()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := r.Record(&SessionRecord{
			StartTime: now,
			EndTime:   now,
			Protocol:  "http",
			Outcome:   "success",
		}); err != nil {
			t.Fatal(err)
		}
	}
	waitForStored(t, store, 3)

	if store.stored[0].PrevHash != "" {
		t.Fatalf("expected first record's prev_hash empty, got %q", store.stored[0].PrevHash)
	}
	if store.stored[1].PrevHash != store.stored[0].Hash {
		t.Fatal("expected second record's prev_hash to chain from first's hash")
	}
	if store.stored[2].PrevHash != store.stored[1].Hash {
		t.Fatal("expected third record's prev_hash to chain from second's hash")
	}
}

func TestRecorderSeedsChainFromStorage(t *testing.T) {
	store := &fakeStorage{stored: []*SessionRecord{{ID: "seed", Hash: "seed-hash"}}}
	r := NewRecorder(context.Background(), store, DefaultConfig())
	defer r.Close()

	if err := r.Record(&SessionRecord{StartTime: time.Now(), EndTime: time.Now()}); err != nil {
		t.Fatal(err)
	}
	waitForStored(t, store, 2)
	if store.stored[1].PrevHash != "seed-hash" {
		t.Fatalf("expected new record to chain from seeded hash, got %q", store.stored[1].PrevHash)
	}
}

func TestRecorderDisabledIsNoop(t *testing.T) {
	store := &fakeStorage{}
	cfg := DefaultConfig()
	cfg.Enabled = false
	r := NewRecorder(context.Background(), store, cfg)
	defer r.Close()

	if err := r.Record(&SessionRecord{}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if len(store.stored) != 0 {
		t.Fatalf("expected no records stored when disabled, got %d", len(store.stored))
	}
}
