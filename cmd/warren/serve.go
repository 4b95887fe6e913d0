package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"warren-hq/warren/pkg/cli"
	"warren-hq/warren/pkg/config"
	"warren-hq/warren/pkg/judge"
	"warren-hq/warren/pkg/ledger"
	"warren-hq/warren/pkg/ledger/retention"
	"warren-hq/warren/pkg/ledger/storage"
	"warren-hq/warren/pkg/pool"
	"warren-hq/warren/pkg/server"
	"warren-hq/warren/pkg/telemetry/health"
	"warren-hq/warren/pkg/telemetry/logging"
	"warren-hq/warren/pkg/telemetry/metrics"
	"warren-hq/warren/pkg/telemetry/tracing"
	"warren-hq/warren/pkg/validator"
)

var serveFlags struct {
	listenAddress string
	candidates    string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Warren proxy-rotation gateway",
	Long: `Start the Warren gateway: a client-facing listener that accepts
HTTP/HTTPS/SOCKS4/SOCKS5 sessions and dispatches each one through a record
drawn from the proxy pool, alongside the judge registry, validator, pool
maintenance sweep, session ledger, and telemetry endpoints that keep the
pool populated and observable while it runs.

Examples:
  # Start with the default config
  warren serve

  # Start with a candidate source to keep the pool continuously populated
  warren serve --candidates candidates.txt

  # Validate config without starting anything
  warren serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.candidates, "candidates", "", "candidate file (host:port per line) to continuously feed the validator")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Listen.Address = serveFlags.listenAddress
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer logger.Shutdown()

	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx := cli.SetupSignalHandler()

	registry, err := newJudgeRegistry(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	refresh := judge.NewRefreshScheduler(registry, time.Duration(cfg.Judges.RefreshIntervalSeconds)*time.Second, slogLogger(cfg))
	if err := refresh.Start(ctx); err != nil {
		logger.Warn("judge refresh scheduler disabled", "error", err)
	} else {
		defer refresh.Stop()
	}

	v := newValidator(cfg, registry)
	if err := v.CapturePublicIP(ctx); err != nil {
		logger.Warn("failed to capture validator's own public IP", "error", err)
	}

	p := newPool(cfg)

	maintenance := pool.NewMaintenanceScheduler(p, cfg.Pool.EvictionSchedule, slogLogger(cfg))
	if err := maintenance.Start(ctx); err != nil {
		logger.Warn("pool maintenance scheduler disabled", "error", err)
	} else {
		defer maintenance.Stop()
	}

	ledgerRecorder, ledgerStorage, pruner, err := setupLedger(ctx, cfg, slogLogger(cfg))
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	if ledgerStorage != nil {
		defer ledgerStorage.Close()
	}
	if ledgerRecorder != nil {
		defer ledgerRecorder.Close()
	}
	if pruner != nil {
		defer pruner.Stop()
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer tracer.Shutdown(context.Background())
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("pool", func(ctx context.Context) error {
		if p.Len() == 0 {
			return fmt.Errorf("pool is empty")
		}
		return nil
	})
	checker.RegisterCheck("judges", func(ctx context.Context) error {
		for _, snap := range registry.Snapshot() {
			if snap.Healthy {
				return nil
			}
		}
		return fmt.Errorf("no healthy judges")
	})

	stopTelemetry := startTelemetryListener(cfg, collector, checker, logger)
	defer stopTelemetry()

	if serveFlags.candidates != "" {
		stopFeed := startCandidateFeed(ctx, cfg, serveFlags.candidates, v, p, logger, collector)
		defer stopFeed()
	}

	minAnonymity, err := pool.ParseAnonymity(cfg.Selection.MinAnonymity)
	if err != nil {
		logger.Warn("unrecognized selection.min_anonymity, treating as unset", "value", cfg.Selection.MinAnonymity, "error", err)
	}

	srv := server.New(server.Config{
		ListenAddress:       cfg.Listen.Address,
		MaxConnections:      cfg.Session.MaxConnections,
		MaxTries:            cfg.Session.MaxTries,
		ClientHandshakeRead: cfg.Session.ClientHandshakeRead,
		BridgeIdle:          cfg.Session.BridgeIdleTimeout,
		ShutdownGrace:       cfg.Session.ShutdownGrace,
		CountriesAllow:      cfg.Selection.CountriesAllow,
		CountriesExclude:    cfg.Selection.CountriesExclude,
		MinAnonymity:        minAnonymity,
	}, p, slogLogger(cfg))

	srv.SetSessionObserver(func(summary server.SessionSummary) {
		collector.RecordSession(summary.Protocol, summary.Outcome, time.Duration(summary.ElapsedMS)*time.Millisecond)
		for i := 0; i < summary.RetryCount; i++ {
			collector.RecordRetry()
		}
		if ledgerRecorder != nil {
			end := time.Now()
			rec := &ledger.SessionRecord{
				ID:           ledger.NewSessionID(),
				StartTime:    end.Add(-time.Duration(summary.ElapsedMS) * time.Millisecond),
				EndTime:      end,
				ClientAddr:   summary.ClientAddr,
				UpstreamHost: summary.UpstreamHost,
				UpstreamPort: summary.UpstreamPort,
				Protocol:     summary.Protocol,
				Outcome:      summary.Outcome,
				RetryCount:   summary.RetryCount,
				ElapsedMS:    summary.ElapsedMS,
				Error:        summary.Error,
			}
			if err := ledgerRecorder.Record(rec); err != nil {
				logger.Warn("failed to record session", "error", err)
			}
		}
	})

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting gateway", "address", cfg.Listen.Address)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return cli.NewCommandError("serve", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal, shutting down gracefully")
		srv.Shutdown()
		return nil
	}
}

// slogLogger builds a plain stdlib logger for the handful of collaborators
// (server, pool scheduler, judge scheduler) that intentionally stay free of
// a dependency on pkg/telemetry/logging's structured Logger.
func slogLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// setupLedger builds the session recorder, its storage backend, and the
// retention pruner from cfg.Ledger. Returns nil values when disabled.
func setupLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ledger.Recorder, ledger.Storage, *retention.Pruner, error) {
	if !cfg.Ledger.Enabled {
		return nil, nil, nil, nil
	}

	var backend ledger.Storage
	var err error
	switch cfg.Ledger.Backend {
	case "sqlite":
		backend, err = storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:        cfg.Ledger.SQLite.Path,
			BusyTimeout: cfg.Ledger.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite ledger: %w", err)
		}
	case "memory", "":
		backend = storage.NewRingStorage(cfg.Ledger.RingCapacity)
	default:
		return nil, nil, nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Ledger.Backend)
	}

	recorder := ledger.NewRecorder(ctx, backend, &ledger.Config{
		Enabled:      true,
		AsyncBuffer:  cfg.Ledger.AsyncBuffer,
		WriteTimeout: cfg.Ledger.WriteTimeout,
	})

	var pruner *retention.Pruner
	if cfg.Ledger.Retention.PruneSchedule != "" {
		pruner = retention.NewPruner(backend, &retention.Config{
			RetentionDays: cfg.Ledger.Retention.Days,
			PruneSchedule: cfg.Ledger.Retention.PruneSchedule,
			MaxRecords:    cfg.Ledger.Retention.MaxRecords,
		})
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("retention scheduler disabled", "error", err)
			pruner = nil
		}
	}

	return recorder, backend, pruner, nil
}

// startTelemetryListener serves /metrics and the liveness/readiness paths
// on cfg.Listen.MetricsAddress, kept off the client-facing listener
// entirely. Returns a shutdown func; errors starting the listener are
// logged, not fatal, since telemetry is never load-bearing for proxying.
func startTelemetryListener(cfg *config.Config, collector *metrics.Collector, checker *health.Checker, logger *logging.Logger) func() {
	if cfg.Listen.MetricsAddress == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
	mux.HandleFunc(cfg.Telemetry.Health.LivenessPath, checker.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())

	srv := &http.Server{Addr: cfg.Listen.MetricsAddress, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("telemetry listener stopped", "error", err)
		}
	}()
	logger.Info("telemetry listener started", "address", cfg.Listen.MetricsAddress)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// startCandidateFeed runs a background loop over a file-backed Grabber,
// validating and admitting candidates, looping back to the start of the
// file once exhausted so the pool stays populated for the life of the
// process. The real candidate source is an external collaborator reached
// through the same Grabber interface (spec §1); this is the concrete
// stand-in wired for local/demo deployments.
func startCandidateFeed(ctx context.Context, cfg *config.Config, path string, v *validator.Validator, p *pool.Pool, logger *logging.Logger, collector *metrics.Collector) func() {
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			default:
			}

			raw, err := readCandidateFile(path)
			if err != nil {
				logger.Warn("candidate feed: failed to read file", "path", path, "error", err)
				select {
				case <-time.After(30 * time.Second):
				case <-ctx.Done():
					return
				case <-stop:
					return
				}
				continue
			}

			results := v.ValidateBatch(ctx, toValidatorCandidates(raw), cfg.Validator.MaxConcurrentChecks)
			admitted := 0
			for _, r := range results {
				if err := admit(p, r); err != nil {
					logger.Warn("candidate feed: failed to admit", "host", r.Host, "port", r.Port, "error", err)
					continue
				}
				if !r.Admitted {
					continue
				}
				admitted++
				for _, proto := range r.Protocols {
					collector.RecordSelection(string(proto), "validated")
				}
			}
			collector.UpdatePoolSize("all", p.Len())
			logger.Info("candidate feed pass complete", "checked", len(results), "admitted", admitted)

			select {
			case <-time.After(time.Minute):
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return func() { close(stop) }
}
