package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"warren-hq/warren/pkg/pool"
)

// Config controls the listener and per-session defaults (spec §5, §6).
type Config struct {
	ListenAddress       string
	MaxConnections      int
	MaxTries            int
	ClientHandshakeRead time.Duration
	BridgeIdle          time.Duration
	ShutdownGrace       time.Duration

	// CountriesAllow/CountriesExclude/MinAnonymity are the operator-configured
	// selection filters (spec §6 "Selection filters"), applied to every
	// pool.Select call alongside the per-request required protocol.
	CountriesAllow   []string
	CountriesExclude []string
	MinAnonymity     pool.Anonymity
}

// SessionSummary describes one completed client session, for an observer
// that wants to record it (ledger, metrics, tracing) without the server
// itself depending on any of those packages.
type SessionSummary struct {
	ClientAddr   string
	UpstreamHost string
	UpstreamPort int
	Protocol     string
	Outcome      string // "success" or "failure"
	RetryCount   int
	ElapsedMS    int64
	Error        string
}

// SessionObserver receives a SessionSummary once a session ends. Observers
// must not block; the server calls them synchronously on the session's own
// goroutine.
type SessionObserver func(SessionSummary)

func defaultConfig(cfg Config) Config {
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = 3
	}
	if cfg.ClientHandshakeRead <= 0 {
		cfg.ClientHandshakeRead = 30 * time.Second
	}
	if cfg.BridgeIdle <= 0 {
		cfg.BridgeIdle = 60 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 250 * time.Millisecond
	}
	return cfg
}

// Server is the single TCP listener accepting client sessions. It mirrors
// the teacher's once-only shutdown and RWMutex-guarded running flag, traded
// for a raw Accept loop instead of net/http.
type Server struct {
	cfg    Config
	pool   *pool.Pool
	logger *slog.Logger

	listener net.Listener

	mu        sync.RWMutex
	isRunning bool

	shutdownOnce sync.Once
	wg           sync.WaitGroup

	connSem   chan struct{}
	observer  SessionObserver
	selection pool.Requirements
}

// New creates a Server bound to pool for selection, with logger used for
// every per-session log line.
func New(cfg Config, p *pool.Pool, logger *slog.Logger) *Server {
	cfg = defaultConfig(cfg)
	if logger == nil {
		logger = slog.Default()
	}
	var sem chan struct{}
	if cfg.MaxConnections > 0 {
		sem = make(chan struct{}, cfg.MaxConnections)
	}
	return &Server{
		cfg:     cfg,
		pool:    p,
		logger:  logger.With("component", "server"),
		connSem: sem,
		selection: pool.Requirements{
			CountriesInclude: cfg.CountriesAllow,
			CountriesExclude: cfg.CountriesExclude,
			MinAnonymity:     cfg.MinAnonymity,
		},
	}
}

// SetSessionObserver registers an observer invoked once per completed
// session. Replaces any previously registered observer. Must be called
// before Start.
func (s *Server) SetSessionObserver(observer SessionObserver) {
	s.observer = observer
}

func (s *Server) observeSession(summary SessionSummary) {
	if s.observer == nil {
		return
	}
	s.observer(summary)
}

// Start binds the listener and accepts connections until ctx is cancelled
// or a fatal accept error occurs. It blocks for the server's lifetime.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server: already running")
	}
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("server: listen %s: %w", s.cfg.ListenAddress, err)
	}
	s.listener = ln
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info("listening", "address", s.cfg.ListenAddress)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.RLock()
			running := s.isRunning
			s.mu.RUnlock()
			if !running {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		if s.connSem != nil {
			select {
			case s.connSem <- struct{}{}:
			default:
				conn.Close()
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if s.connSem != nil {
				defer func() { <-s.connSem }()
			}
			s.handleSession(ctx, conn)
		}()
	}

	s.waitForSessions()
	s.logger.Info("listener stopped")
	return nil
}

// waitForSessions blocks for in-flight sessions to finish, up to
// bridge_idle+grace, matching spec §5's cancellation bound.
func (s *Server) waitForSessions() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.cfg.BridgeIdle + s.cfg.ShutdownGrace):
		s.logger.Warn("shutdown grace period expired with sessions still in flight")
	}
}

// Shutdown stops accepting new connections. Idempotent and safe to call
// multiple times or concurrently with Start's ctx-cancellation watcher.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.isRunning = false
		ln := s.listener
		s.mu.Unlock()
		if ln != nil {
			_ = ln.Close()
		}
	})
}

// Addr returns the listener's bound address, or nil before Start binds it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning reports whether the listener is currently accepting.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
