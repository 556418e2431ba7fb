package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nutrilog/nutrilog/internal/db"
	"github.com/nutrilog/nutrilog/internal/service"
)

// testNow is the fixed clock used by ledger tests: a Saturday afternoon.
var testNow = time.Date(2024, time.June, 15, 14, 30, 0, 0, time.Local)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nutrilog.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func newTestLedger(t *testing.T) *service.Ledger {
	t.Helper()
	l := service.NewLedger(newTestDB(t), service.WithClock(func() time.Time { return testNow }))
	if _, err := l.Init(); err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	return l
}

func ptr[T any](v T) *T {
	return &v
}
