// Package dbtest provides a migrated SQLite database for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"memochat/internal/database"
)

// NewSQLite creates a file-backed SQLite database under t.TempDir(), applies
// all migrations and closes the pool when the test ends.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chat.db")
	require.NoError(t, database.Migrate(database.DriverSQLite, path))

	db, err := database.Open(context.Background(), database.Options{
		Driver:       database.DriverSQLite,
		DSN:          path,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
