// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/dixis/dixis/database"
)

// New opens a migrated database in a temporary directory and closes it when
// the test ends.
func New(tb testing.TB) *database.DB {
	tb.Helper()

	db, err := database.New(filepath.Join(tb.TempDir(), "test.db"), database.Migrations(), zap.NewNop())
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}
