package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"footage-tracker/internal/logging"
	"footage-tracker/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database is the durable file-record store. All operations are single-record,
// single-statement units of work; correctness under concurrent writers relies
// on SQLite's per-statement atomicity plus the unique constraint on path, not
// on any application-level lock.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the database at dbPath and runs schema migrations.
// dbPath must be the full path to the database file and its parent directory
// must already exist and be writable; use startup.LoadConfig for validation.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnosePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// WAL lets the watcher, scanner, and request handlers write concurrently;
	// busy_timeout prevents "database is locked" errors under contention.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.migrate(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after migration failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

// migrations holds the versioned schema steps, applied in order exactly once.
// Never edit an existing entry; append a new one.
var migrations = []string{
	// v1: the files ledger and its query indexes
	`
	CREATE TABLE files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		parent_directory TEXT NOT NULL,
		file_type TEXT NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		discovered_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		processed INTEGER NOT NULL DEFAULT 0,
		processed_at INTEGER,
		is_directory INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX idx_files_processed ON files(processed);
	CREATE INDEX idx_files_file_type ON files(file_type);
	CREATE INDEX idx_files_parent_directory ON files(parent_directory);
	CREATE INDEX idx_files_discovered_at ON files(discovered_at);
	`,
}

// migrate brings the schema to the current version. It runs to completion
// before any other component touches the store.
func (d *Database) migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err = d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		logging.Info("Migrating database schema: v%d -> v%d", i, i+1)

		if _, err := d.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration to v%d failed: %w", i+1, err)
		}
		if _, err := d.db.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			return fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := d.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Ping verifies the store is reachable. Used by the readiness probe.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// diagnosePermissions checks database directory and file permissions so that
// read-only volume mounts fail loudly at startup instead of as write errors.
func diagnosePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	// WAL and SHM siblings inherit permissions from whoever created them,
	// which may not be this process.
	for _, suffix := range []string{"-wal", "-shm"} {
		sidecar := dbPath + suffix
		info, err := os.Stat(sidecar)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("%s is read-only (mode %v) - this will cause write failures", sidecar, info.Mode())
			if chmodErr := os.Chmod(sidecar, 0o600); chmodErr != nil {
				logging.Error("Failed to fix permissions on %s: %v", sidecar, chmodErr)
			} else {
				logging.Info("Fixed permissions on %s", sidecar)
			}
		}
	}

	return nil
}
