// internal/store/sqlite/helpers_test.go
package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/tamzrod/probe-harvester/internal/db"
)

// openTestDB returns a private in-memory database with the production
// pragmas and tables, closed when the test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared&%s", name, db.Pragmas)

	conn, err := db.OpenDSN(context.Background(), dsn)
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn, closed when the test
// finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}
