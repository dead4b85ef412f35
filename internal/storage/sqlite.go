// Package storage persists pipeline runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/service"
)

const memoryPath = ":memory:"

// DefaultRetryOptions governs retries of writes that hit a busy or locked database.
var DefaultRetryOptions = service.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 50 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	retry  service.RetryOptions
}

// NewSQLiteStorage creates a new SQLite storage instance. Pass ":memory:" for
// a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		retry:  DefaultRetryOptions,
	}, nil
}

func dsn(dbPath string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if dbPath != memoryPath {
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + params
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// withRetry runs a write, retrying while SQLite reports the database busy or locked.
func (s *SQLiteStorage) withRetry(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, func() error {
		return classifyError(op())
	}, s.retry)
}

// classifyError marks busy/locked errors retryable and everything else final.
// Constraint violations are reported as ErrDuplicateEntry.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %w", common.ErrDatabaseBusy, err),
				Retryable: true,
			}
		case sqlite3.ErrConstraint:
			err = fmt.Errorf("%w: %w", common.ErrDuplicateEntry, err)
		}
	}
	return &common.RetryableError{Err: err, Retryable: false}
}
