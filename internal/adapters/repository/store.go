// Package repository is the SQLite-backed interaction and results store.
//
// Linearizability per (user, target) comes from the partial unique index on
// reactions. Writes run in IMMEDIATE transactions, so the constraint check and
// the counter recomputation that follows see the same snapshot.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/papermatch/pkg/logger"
	"github.com/okian/papermatch/pkg/metrics"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	defaultMaxOpenConns = 8
	defaultBusyTimeout  = 5 * time.Second
)

// Store implements the interaction store, the target catalog and the match
// result log over one SQLite database.
type Store struct {
	db           *sql.DB
	log          logger.Logger
	now          func() time.Time
	newID        func() string
	maxOpenConns int
	busyTimeout  time.Duration
}

func newStore(opts ...Option) *Store {
	s := &Store{
		log:          logger.Nop(),
		now:          time.Now,
		newID:        uuid.NewString,
		maxOpenConns: defaultMaxOpenConns,
		busyTimeout:  defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New wraps an existing connection pool. The caller owns its pragmas.
func New(db *sql.DB, opts ...Option) *Store {
	s := newStore(opts...)
	s.db = db
	return s
}

// Open opens the database file at path with foreign keys, WAL and
// IMMEDIATE write transactions enabled on every pooled connection.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := newStore(opts...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	db, err := sql.Open("sqlite", dsn(path, s.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	s.db = db
	return s, nil
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a write transaction and commits when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// observe records latency and failures for op. Expected store signals are
// not counted as errors.
func (s *Store) observe(ctx context.Context, op string, start time.Time, err *error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if *err == nil || isSignal(*err) {
		return
	}
	metrics.RecordStoreError(op)
	s.log.Debug(ctx, "store operation failed", logger.String("op", op), logger.Error(*err))
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
