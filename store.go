package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// StoreConfig locates the backing store and bounds each operation.
type StoreConfig struct {
	Path             string        `mapstructure:"path"`
	BusyTimeout      time.Duration `mapstructure:"busy_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// Store owns the connection pool. Every operation runs in its own session
// opened by Do; nothing is cached between operations.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	log     *slog.Logger
}

// Open connects to the SQLite file at cfg.Path. ":memory:" gives a private
// in-memory store, which is what the tests use.
func Open(cfg StoreConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, cfg.Path, err)
	}

	// One connection: SQLite has a single writer, and an in-memory database
	// only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrStoreUnavailable, cfg.Path, err)
	}

	logger.Info("store opened", "path", cfg.Path, "operation_timeout", cfg.OperationTimeout)

	return &Store{db: db, timeout: cfg.OperationTimeout, log: logger}, nil
}

func dsn(cfg StoreConfig) string {
	busy := cfg.BusyTimeout
	if busy == 0 {
		busy = 5 * time.Second
	}

	path := cfg.Path
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	return fmt.Sprintf("%s?_foreign_keys=1&_busy_timeout=%d", path, busy.Milliseconds())
}

func (s *Store) Logger() *slog.Logger {
	return s.log
}

// Do runs fn inside a fresh transaction. The transaction is committed when fn
// succeeds and rolled back on every other path. Errors that are not already
// one of the package sentinels are reported as ErrStoreUnavailable.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin session: %w", ErrStoreUnavailable, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error("session rollback failed", "error", rbErr.Error())
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit session: %w", ErrStoreUnavailable, err)
	}

	return nil
}

// classify maps driver errors onto the package sentinels. A foreign key
// violation means a write pointed at a missing row.
func classify(err error) error {
	if domainError(err) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func (s *Store) Close() error {
	return s.db.Close()
}
