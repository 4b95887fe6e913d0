package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"warren-hq/warren/pkg/ledger"
)

// SQLiteConfig contains configuration for the SQLite ledger backend.
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	WALMode      bool
	BusyTimeout  time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/ledger.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements ledger.Storage over a SQLite database, for
// durable history across restarts.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewSQLiteStorage opens (and if necessary creates) the ledger database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	logger := slog.Default().With("component", "ledger.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("sqlite ledger storage initialized", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ledger.NewStorageError("sqlite", "enable_wal", err)
		}
	}
	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return ledger.NewStorageError("sqlite", "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return ledger.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return ledger.NewStorageError("sqlite", "insert_schema_version", err)
	}
	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return ledger.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return ledger.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

func (s *SQLiteStorage) Store(ctx context.Context, r *ledger.SessionRecord) error {
	var errVal interface{}
	if r.Error != "" {
		errVal = r.Error
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, start_time, end_time, client_addr,
			upstream_host, upstream_port, protocol,
			outcome, retry_count, elapsed_ms, error,
			prev_hash, hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartTime, r.EndTime, r.ClientAddr,
		r.UpstreamHost, r.UpstreamPort, r.Protocol,
		r.Outcome, r.RetryCount, r.ElapsedMS, errVal,
		r.PrevHash, r.Hash,
	)
	if err != nil {
		return ledger.NewStorageError("sqlite", "store", err)
	}
	return nil
}

func (s *SQLiteStorage) Query(ctx context.Context, q *ledger.Query) ([]*ledger.SessionRecord, error) {
	where, args := buildWhereClause(q)
	sqlQuery := "SELECT id, start_time, end_time, client_addr, upstream_host, upstream_port, protocol, outcome, retry_count, elapsed_ms, error, prev_hash, hash FROM sessions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY start_time DESC"
	limit := 100
	if q != nil && q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if q != nil && q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, ledger.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*ledger.SessionRecord
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, ledger.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) Count(ctx context.Context, q *ledger.Query) (int64, error) {
	where, args := buildWhereClause(q)
	sqlQuery := "SELECT COUNT(*) FROM sessions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, ledger.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, q *ledger.Query) (int64, error) {
	where, args := buildWhereClause(q)
	sqlQuery := "DELETE FROM sessions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, ledger.NewStorageError("sqlite", "delete", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStorage) LastHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM sessions ORDER BY start_time DESC LIMIT 1").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", ledger.NewStorageError("sqlite", "last_hash", err)
	}
	return hash, nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return ledger.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func buildWhereClause(q *ledger.Query) (string, []interface{}) {
	if q == nil {
		return "", nil
	}
	var conditions []string
	var args []interface{}
	if q.StartTime != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, *q.StartTime)
	}
	if q.EndTime != nil {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, *q.EndTime)
	}
	if q.UpstreamHost != "" {
		conditions = append(conditions, "upstream_host = ?")
		args = append(args, q.UpstreamHost)
	}
	if q.Protocol != "" {
		conditions = append(conditions, "protocol = ?")
		args = append(args, q.Protocol)
	}
	if q.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, q.Outcome)
	}
	where := ""
	for i, c := range conditions {
		if i > 0 {
			where += " AND "
		}
		where += c
	}
	return where, args
}

func scanRow(rows *sql.Rows) (*ledger.SessionRecord, error) {
	var r ledger.SessionRecord
	var errVal sql.NullString
	if err := rows.Scan(
		&r.ID, &r.StartTime, &r.EndTime, &r.ClientAddr,
		&r.UpstreamHost, &r.UpstreamPort, &r.Protocol,
		&r.Outcome, &r.RetryCount, &r.ElapsedMS, &errVal,
		&r.PrevHash, &r.Hash,
	); err != nil {
		return nil, err
	}
	if errVal.Valid {
		r.Error = errVal.String
	}
	return &r, nil
}
