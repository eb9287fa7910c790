// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
	// sqlite driver
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database connection
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	// Configure database
	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	// Create schema
	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createLocationsTable(); err != nil {
		return err
	}
	if err := db.createRunsTable(); err != nil {
		return err
	}
	if err := db.createRunErrorsTable(); err != nil {
		return err
	}
	return db.createRunSummaryTable()
}

func (db *DB) createLocationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL,
		loc_id TEXT NOT NULL,
		site_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		UNIQUE(project_name, loc_id)
	);
	CREATE INDEX IF NOT EXISTS idx_locations_project ON locations(project_name, position);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createRunsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS fetch_runs (
		id TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT 'safe',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		total INTEGER DEFAULT 0,
		success INTEGER DEFAULT 0,
		empty INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		cancelled INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_project ON fetch_runs(project_name, started_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createRunErrorsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_errors (
		run_id TEXT NOT NULL REFERENCES fetch_runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		loc_id TEXT NOT NULL,
		site_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		reason TEXT,
		PRIMARY KEY(run_id, seq)
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createRunSummaryTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_summary_rows (
		run_id TEXT NOT NULL REFERENCES fetch_runs(id) ON DELETE CASCADE,
		rank INTEGER NOT NULL,
		loc_id TEXT NOT NULL,
		site_name TEXT NOT NULL,
		total_usage_gb REAL DEFAULT 0,
		avg_usage_gb REAL DEFAULT 0,
		PRIMARY KEY(run_id, rank)
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
