package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memochat/internal/database"
	"memochat/internal/database/dbtest"
)

func TestMigrate_SQLite(t *testing.T) {
	db := dbtest.NewSQLite(t)

	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'chat_logs')").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	require.NoError(t, database.Migrate(database.DriverSQLite, path))
	require.NoError(t, database.Migrate(database.DriverSQLite, path))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), database.Options{Driver: "mysql", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
