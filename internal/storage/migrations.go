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
		Description: "Prefill request inbox",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS prefill_requests (
					id TEXT PRIMARY KEY,
					source_id TEXT NOT NULL,
					source_label TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT 'AUTO',
					amount TEXT NOT NULL,
					note TEXT NOT NULL DEFAULT '',
					title TEXT NOT NULL DEFAULT '',
					summary TEXT NOT NULL DEFAULT '',
					detail TEXT NOT NULL DEFAULT '',
					request_code INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'pending'
						CHECK (status IN ('pending', 'confirmed', 'dismissed')),
					created_at DATETIME NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_prefill_requests_status ON prefill_requests(status)`,
				`CREATE INDEX idx_prefill_requests_created_at ON prefill_requests(created_at)`,
				`CREATE TRIGGER update_prefill_requests_updated_at
				AFTER UPDATE ON prefill_requests
				FOR EACH ROW
				BEGIN
					UPDATE prefill_requests SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END`,
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
		Description: "Expense records",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					amount TEXT NOT NULL,
					category TEXT NOT NULL,
					note TEXT NOT NULL DEFAULT '',
					timestamp DATETIME NOT NULL,
					source TEXT NOT NULL CHECK (source IN ('AUTO', 'MANUAL')),
					payment_app TEXT NOT NULL DEFAULT '',
					prefill_id TEXT REFERENCES prefill_requests(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_records_timestamp ON records(timestamp)`,
				`CREATE UNIQUE INDEX idx_records_prefill_id ON records(prefill_id) WHERE prefill_id IS NOT NULL`,
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

// Migrate applies all pending database migrations.
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

		// Update version
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
