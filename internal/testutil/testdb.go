// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
)

// OpenDB opens a temporary SQLite database that is removed when the test ends.
// A file is used instead of :memory: so every pooled connection sees the same data.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kiosk-test.db")
	db, err := database.Open(database.Config{
		Driver:   database.DriverSQLite,
		DSN:      "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL",
		MaxConns: 4,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
