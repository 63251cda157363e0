// Package db owns the SQLite connection and schema migrations for the
// reader's local data directory.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Filename is the database file name inside the data directory.
const Filename = "rifted.db"

const (
	maxRetries   = 5
	initialWait  = 100 * time.Millisecond
	maxOpenConns = 10
	maxIdleConns = 5
	busyTimeout  = 5000 // milliseconds
)

// DB wraps a SQL database connection with retry logic and migrations.
type DB struct {
	conn *sql.DB
}

// Open creates a database connection in the given data directory, verifies
// connectivity with retry, and applies any pending migrations.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, Filename)

	// WAL mode and a busy timeout so a second process does not error out
	// immediately on a locked database.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrateUp(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying connection for the store layer.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// WithTx executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err := db.conn.PingContext(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("failed to ping database after %d retries", maxRetries)
}
