// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup func(context.Context, *storage.SQLiteStorage) error
	Pending     []model.PrefillRequest
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range opts.Pending {
		if err := store.SavePrefillRequest(ctx, &opts.Pending[i]); err != nil {
			t.Fatalf("failed to seed prefill request: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustSeedPending stores a pending prefill request and returns its ID.
func (db *TestDB) MustSeedPending(sourceLabel, amount, note string, at time.Time) string {
	db.t.Helper()

	req := model.PrefillRequest{
		CreatedAt:   at,
		Amount:      decimal.RequireFromString(amount),
		SourceID:    sourceLabel,
		SourceLabel: sourceLabel,
		Source:      model.CaptureSourceAuto,
		Note:        note,
	}
	if err := db.Storage.SavePrefillRequest(context.Background(), &req); err != nil {
		db.t.Fatalf("failed to seed prefill request: %v", err)
	}
	return req.ID
}
