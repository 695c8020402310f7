package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"surveysync/internal/infrastructure/migration"
	"surveysync/internal/infrastructure/storage/health"
)

// Handle owns the on-device database and the image directory. It is
// constructed once per process and injected into every store, so
// availability state lives here instead of in package globals.
type Handle struct {
	db   *sql.DB
	gate *health.Gate
	log  *slog.Logger
}

// Option configures a Handle.
type Option func(*Handle)

// WithGate injects the health gate, used by tests.
func WithGate(gate *health.Gate) Option {
	return func(h *Handle) { h.gate = gate }
}

// Open opens the local database, runs the embedded migrations and
// returns a ready Handle.
func Open(dbPath string, log *slog.Logger, opts ...Option) (*Handle, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	mg := migration.New(dbPath, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	h := &Handle{
		db:   db,
		gate: health.NewGate(),
		log:  log,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// DB exposes the underlying connection to the stores in this tree.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// Gate returns the shared availability gate.
func (h *Handle) Gate() *health.Gate {
	return h.gate
}

// Available reports whether the handle may be used right now.
func (h *Handle) Available() bool {
	return h.gate.Available()
}

// MarkFailure records a database failure on the shared gate.
func (h *Handle) MarkFailure(op string, err error) {
	h.log.Error("local storage failure", "op", op, "error", err)
	h.gate.MarkFailure()
}

func (h *Handle) Close() error {
	return h.db.Close()
}
