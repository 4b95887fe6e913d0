package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config controls the recorder's async write behavior.
type Config struct {
	// Enabled turns session recording on or off entirely.
	Enabled bool
	// AsyncBuffer is the size of the async write channel buffer.
	AsyncBuffer int
	// WriteTimeout bounds how long Record waits to enqueue before dropping.
	WriteTimeout time.Duration
}

// DefaultConfig returns the recorder's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder appends SessionRecords to storage asynchronously so that
// bridging sessions never block on a ledger write.
type Recorder struct {
	storage Storage
	config  *Config
	recChan chan *SessionRecord
	wg      sync.WaitGroup
	done    chan struct{}
	logger  *slog.Logger

	mu       sync.Mutex
	lastHash string
}

// NewRecorder creates a Recorder over storage, seeding the chain with
// storage's last known hash so a process restart extends rather than forks
// the ledger.
func NewRecorder(ctx context.Context, storage Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	r := &Recorder{
		storage: storage,
		config:  config,
		recChan: make(chan *SessionRecord, config.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "ledger.recorder"),
	}
	if last, err := storage.LastHash(ctx); err == nil {
		r.lastHash = last
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("session ledger recorder initialized", "async_buffer", config.AsyncBuffer)
	return r
}

// Record enqueues a completed session for async writing. id should be a
// fresh UUID (callers typically use NewSessionID); StartTime/EndTime must
// already be set by the caller.
func (r *Recorder) Record(rec *SessionRecord) error {
	if !r.config.Enabled {
		return nil
	}
	if rec.ID == "" {
		rec.ID = NewSessionID()
	}

	r.mu.Lock()
	rec.PrevHash = r.lastHash
	rec.Hash = chainHash(rec.PrevHash, rec)
	r.lastHash = rec.Hash
	r.mu.Unlock()

	select {
	case r.recChan <- rec:
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("ledger channel full, dropping session record", "record_id", rec.ID)
		return NewRecorderError(rec.ID, context.DeadlineExceeded)
	case <-r.done:
		return NewRecorderError(rec.ID, context.Canceled)
	}
}

// Close drains any pending records and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case rec := <-r.recChan:
			r.write(rec)
		case <-r.done:
			for {
				select {
				case rec := <-r.recChan:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *SessionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()
	if err := r.storage.Store(ctx, rec); err != nil {
		r.logger.Error("failed to store session record", "record_id", rec.ID, "error", err)
	}
}

// NewSessionID generates a fresh session record identifier.
func NewSessionID() string {
	return uuid.New().String()
}
