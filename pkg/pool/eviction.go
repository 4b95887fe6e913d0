package pool

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// MaintenanceScheduler periodically sweeps the pool for records that have
// crossed an eviction threshold, on a cron schedule. Grounded on the
// teacher's evidence/retention Scheduler: a cron.Cron wrapping one
// idempotent job, stoppable and restartable.
type MaintenanceScheduler struct {
	pool     *Pool
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewMaintenanceScheduler creates a scheduler that evicts against the
// pool's DefaultEvictionPredicate on the given cron schedule (e.g. "@every
// 30s").
func NewMaintenanceScheduler(p *Pool, schedule string, logger *slog.Logger) *MaintenanceScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceScheduler{
		pool:     p,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With("component", "pool.maintenance"),
	}
}

// Start begins the scheduled eviction sweep. It returns immediately; the
// sweep runs in cron's own goroutine until the context is cancelled or Stop
// is called.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("no maintenance schedule configured, eviction runs only on release")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		removed := s.pool.Evict(s.pool.DefaultEvictionPredicate())
		if removed > 0 {
			s.logger.Info("maintenance sweep evicted records", "count", removed)
		} else {
			s.logger.Debug("maintenance sweep found nothing to evict")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight sweep to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
}
