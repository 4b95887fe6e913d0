package storage

import (
	"context"
	"sort"
	"sync"

	"warren-hq/warren/pkg/ledger"
)

// RingStorage is an in-memory, bounded ring buffer backend for the session
// ledger: the default when durability across restarts is not required.
// Oldest records are overwritten once Capacity is reached.
type RingStorage struct {
	mu       sync.RWMutex
	records  []*ledger.SessionRecord
	capacity int
}

// NewRingStorage creates a ring buffer holding at most capacity records. A
// non-positive capacity defaults to 10000.
func NewRingStorage(capacity int) *RingStorage {
	if capacity <= 0 {
		capacity = 10000
	}
	return &RingStorage{capacity: capacity}
}

func (s *RingStorage) Store(ctx context.Context, record *ledger.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return nil
}

func (s *RingStorage) Query(ctx context.Context, query *ledger.Query) ([]*ledger.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*ledger.SessionRecord
	for _, r := range s.records {
		if matches(r, query) {
			recordCopy := *r
			results = append(results, &recordCopy)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].StartTime.Before(results[j].StartTime) })

	start := query.Offset
	if start > len(results) {
		return []*ledger.SessionRecord{}, nil
	}
	end := len(results)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	return results[start:end], nil
}

func (s *RingStorage) Count(ctx context.Context, query *ledger.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.records {
		if matches(r, query) {
			n++
		}
	}
	return n, nil
}

func (s *RingStorage) Delete(ctx context.Context, query *ledger.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if matches(r, query) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

func (s *RingStorage) LastHash(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return "", nil
	}
	return s.records[len(s.records)-1].Hash, nil
}

func (s *RingStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Size returns the current record count, for tests/CLI reporting.
func (s *RingStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(r *ledger.SessionRecord, q *ledger.Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.StartTime.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.StartTime.After(*q.EndTime) {
		return false
	}
	if q.UpstreamHost != "" && r.UpstreamHost != q.UpstreamHost {
		return false
	}
	if q.Protocol != "" && r.Protocol != q.Protocol {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}
