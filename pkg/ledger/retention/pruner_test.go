package retention

import (
	"context"
	"testing"
	"time"

	"warren-hq/warren/pkg/ledger"
	"warren-hq/warren/pkg/ledger/storage"
)

func TestPrunerPruneOldRecords(t *testing.T) {
	store := storage.NewRingStorage(100)
	config := DefaultConfig()
	config.RetentionDays = 7

	pruner := NewPruner(store, config)
	ctx := context.Background()
	now := time.Now()

	records := []*ledger.SessionRecord{
		{ID: "old-1", StartTime: now.AddDate(0, 0, -10)},
		{ID: "old-2", StartTime: now.AddDate(0, 0, -8)},
		{ID: "recent-1", StartTime: now.AddDate(0, 0, -5)},
		{ID: "recent-2", StartTime: now.AddDate(0, 0, -3)},
	}
	for _, r := range records {
		if err := store.Store(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	count, _ := store.Count(ctx, &ledger.Query{})
	if count != 2 {
		t.Fatalf("expected 2 remaining, got %d", count)
	}
}

func TestPrunerMaxRecordsLimit(t *testing.T) {
	store := storage.NewRingStorage(100)
	config := &Config{RetentionDays: 0, MaxRecords: 2}
	pruner := NewPruner(store, config)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		store.Store(ctx, &ledger.SessionRecord{ID: "r", StartTime: now.Add(time.Duration(i) * time.Hour)})
	}

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted to respect max_records=2, got %d", deleted)
	}
	count, _ := store.Count(ctx, &ledger.Query{})
	if count != 2 {
		t.Fatalf("expected 2 remaining, got %d", count)
	}
}

func TestPrunerZeroRetentionKeepsForever(t *testing.T) {
	store := storage.NewRingStorage(100)
	pruner := NewPruner(store, &Config{RetentionDays: 0})
	ctx := context.Background()
	store.Store(ctx, &ledger.SessionRecord{ID: "ancient", StartTime: time.Now().AddDate(-5, 0, 0)})

	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions with retention disabled, got %d", deleted)
	}
}
