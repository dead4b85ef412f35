package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					started_at DATETIME NOT NULL,
					source TEXT NOT NULL DEFAULT '',
					message_count INTEGER NOT NULL DEFAULT 0,
					deal_count INTEGER NOT NULL DEFAULT 0,
					rejection_count INTEGER NOT NULL DEFAULT 0,
					start_count INTEGER NOT NULL DEFAULT 0,
					reply_count INTEGER NOT NULL DEFAULT 0,
					confirm_count INTEGER NOT NULL DEFAULT 0,
					noise_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_runs_started_at ON runs(started_at)`,

				`CREATE TABLE IF NOT EXISTS message_intents (
					run_id TEXT NOT NULL,
					message_index INTEGER NOT NULL,
					message_hash TEXT NOT NULL,
					intent TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					mentioned_name TEXT NOT NULL DEFAULT '',
					PRIMARY KEY (run_id, message_index),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS deals (
					run_id TEXT NOT NULL,
					start_index INTEGER NOT NULL,
					reply_index INTEGER NOT NULL,
					confirm_index INTEGER NOT NULL,
					deal_date TEXT NOT NULL,
					deal_time TEXT NOT NULL,
					buy_bank TEXT NOT NULL,
					sell_bank TEXT NOT NULL,
					amount TEXT NOT NULL,
					price INTEGER NOT NULL,
					actual_price TEXT NOT NULL,
					PRIMARY KEY (run_id, start_index),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS rejections (
					run_id TEXT NOT NULL,
					start_index INTEGER NOT NULL,
					stage TEXT NOT NULL,
					reason TEXT NOT NULL,
					PRIMARY KEY (run_id, start_index),
					FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index deals by date and rejections by reason",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_deals_date ON deals(deal_date)`,
				`CREATE INDEX IF NOT EXISTS idx_rejections_reason ON rejections(reason)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
