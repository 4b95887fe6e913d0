package judge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshScheduler re-probes every registered judge on a fixed interval
// (default 5 min, spec §4.1), grounded on the same cron.Cron wrapper the
// pool's maintenance scheduler and the ledger's retention pruner use.
type RefreshScheduler struct {
	registry *Registry
	cron     *cron.Cron
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// DefaultRefreshInterval is judges.refresh_interval_s's default.
const DefaultRefreshInterval = 5 * time.Minute

// NewRefreshScheduler creates a scheduler. A non-positive interval falls
// back to DefaultRefreshInterval.
func NewRefreshScheduler(r *Registry, interval time.Duration, logger *slog.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		registry: r,
		cron:     cron.New(),
		interval: interval,
		logger:   logger.With("component", "judge.refresh"),
	}
}

// Start begins the periodic refresh. It returns immediately.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, func() {
		counts := s.registry.Refresh(ctxOrBackground(ctx))
		s.logger.Debug("judge refresh completed", "healthy_by_scheme", counts)
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

// Stop halts the scheduler, waiting for any in-flight refresh to finish.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
