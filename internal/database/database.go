package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // Registers the postgres:// migrate driver.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"  // Registers the sqlite3:// migrate driver.
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // Registers the "pgx" database/sql driver.
	_ "github.com/mattn/go-sqlite3"    // Registers the "sqlite3" database/sql driver.
)

// Supported values of DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// Options configures the connection pool.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open returns a pooled *sql.DB. Callers acquire a connection per statement
// through the pool and never hold one between operations.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	var driverName, dsn string
	switch opts.Driver {
	case DriverPostgres:
		driverName, dsn = "pgx", opts.DSN
	case DriverSQLite:
		if err := ensureDir(opts.DSN); err != nil {
			return nil, err
		}
		driverName, dsn = "sqlite3", withSQLiteParams(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			slog.Warn("Failed to enable WAL mode for SQLite, continuing without it.", "error", err)
		}
	}

	return db, nil
}

// Migrate applies the embedded schema migrations for the given driver.
// It opens its own short-lived connection, separate from the pool.
func Migrate(driver, dsn string) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(driver, dsn))
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			slog.Warn("Failed to close migrate instance", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("Migrations applied", "driver", driver, "version", version, "dirty", dirty)
	return nil
}

func migrationURL(driver, dsn string) string {
	if driver == DriverSQLite {
		return "sqlite3://" + strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

// withSQLiteParams turns on foreign keys and a busy timeout for every pooled connection.
func withSQLiteParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
