// Package store provides the index store: a single-writer, multi-reader
// SQLite database holding the file inventory, its full-text shadow index,
// the drive registry, thumbnail references, and settings.
package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/volumedex/volumedex/internal/utils"
)

// Config holds index-store connection configuration.
type Config struct {
	Path         string        // database file path
	BusyTimeout  time.Duration // PRAGMA busy_timeout
	CacheSizeKiB int           // negative-KiB PRAGMA cache_size
}

// DefaultConfig returns sensible defaults for a desktop deployment.
func DefaultConfig() *Config {
	return &Config{
		Path:         "./volumedex.db",
		BusyTimeout:  5 * time.Second,
		CacheSizeKiB: 10000,
	}
}

// dsn builds the modernc.org/sqlite DSN with the PRAGMAs spec.md §6 requires
// applied at connection time: foreign keys on, WAL journaling, synchronous
// NORMAL, a bounded page cache, and an in-memory temp store.
func (c *Config) dsn() string {
	path := c.Path
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-%d)&_pragma=temp_store(MEMORY)&_pragma=busy_timeout(%d)",
		path, c.CacheSizeKiB, c.BusyTimeout.Milliseconds(),
	)
}

// DB wraps the underlying connection pool. Open caps the pool at one open
// connection, so every statement and transaction, read or write, runs on
// that single connection in turn; readers on this pool do not run
// concurrently with a writer.
type DB struct {
	*sql.DB
	config *Config
}

// Open opens (and, on first use, creates) the index store at config.Path and
// runs pending migrations.
func Open(config *Config) (*DB, error) {
	if config == nil {
		config = DefaultConfig()
	}

	sqlDB, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, utils.WrapError(err, "open index store")
	}
	// A single physical connection avoids SQLITE_BUSY under WAL; reads
	// share it with writes and wait for it like any other statement.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, utils.WrapError(err, "ping index store")
	}

	db := &DB{DB: sqlDB, config: config}

	mm := NewMigrationManager(db)
	if err := mm.Migrate(); err != nil {
		sqlDB.Close()
		return nil, utils.WrapError(err, "run migrations")
	}

	return db, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Tx wraps a *sql.Tx so repositories can operate uniformly against a pool
// connection or an open transaction (see Executor in repository.go).
type Tx struct {
	*sql.Tx
}

// BeginTx starts a new transaction. Callers must Commit or Rollback.
func (db *DB) BeginTx() (*Tx, error) {
	tx, err := db.DB.Begin()
	if err != nil {
		return nil, utils.WrapError(err, "begin transaction")
	}
	return &Tx{Tx: tx}, nil
}

// HealthStatus reports index-store connectivity for diagnostics.
type HealthStatus struct {
	Connected    bool          `json:"connected"`
	Latency      time.Duration `json:"latency"`
	OpenConns    int           `json:"open_connections"`
	InUseConns   int           `json:"in_use_connections"`
	IdleConns    int           `json:"idle_connections"`
	LastError    string        `json:"last_error,omitempty"`
}

// Health pings the store and reports pool statistics.
func (db *DB) Health() *HealthStatus {
	start := time.Now()
	err := db.DB.Ping()
	stats := db.DB.Stats()
	h := &HealthStatus{
		Connected:  err == nil,
		Latency:    time.Since(start),
		OpenConns:  stats.OpenConnections,
		InUseConns: stats.InUse,
		IdleConns:  stats.Idle,
	}
	if err != nil {
		h.LastError = err.Error()
	}
	return h
}
