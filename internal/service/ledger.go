package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nutrilog/nutrilog/internal/db"
)

// Ledger is the persistent store for the profile, food items, food logs and
// activity logs. Operations return ErrNotReady until Init has succeeded.
type Ledger struct {
	sqldb *sql.DB
	ready bool
	now   func() time.Time
}

type LedgerOption func(*Ledger)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(sqldb *sql.DB, opts ...LedgerOption) *Ledger {
	l := &Ledger{sqldb: sqldb, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init applies the schema and column migrations. It is safe to call again;
// a failed Init leaves the ledger unusable.
func (l *Ledger) Init() (db.MigrationReport, error) {
	report, err := db.ApplyMigrations(l.sqldb)
	if err != nil {
		l.ready = false
		return report, fmt.Errorf("init ledger: %w", err)
	}
	l.ready = true
	return report, nil
}

func (l *Ledger) Ready() bool {
	return l.ready
}

// DB exposes the underlying handle for file level maintenance.
func (l *Ledger) DB() *sql.DB {
	return l.sqldb
}

func (l *Ledger) checkReady() error {
	if !l.ready {
		return ErrNotReady
	}
	return nil
}
