// Package testutil provides shared test helpers: an in-memory database and,
// in the chat subpackage, builders for scripted trading conversations.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/dealflow/internal/engine"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
	"github.com/Veraticus/dealflow/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	runID := db.MustSaveResult(result, "chat.csv")
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	ctx := context.Background()

	// Run migrations unless skipped
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Run custom setup
	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustSaveResult persists a pipeline result and returns its run ID.
func (db *TestDB) MustSaveResult(result *engine.Result, source string) string {
	db.t.Helper()

	record := result.Record(source)
	if err := db.Storage.SaveRun(context.Background(), record); err != nil {
		db.t.Fatalf("failed to save run: %v", err)
	}
	return record.Run.ID
}

// MustGetDeals returns the deals of a run or fails the test.
func (db *TestDB) MustGetDeals(runID string) []model.Deal {
	db.t.Helper()

	deals, err := db.Storage.GetDeals(context.Background(), runID)
	if err != nil {
		db.t.Fatalf("failed to get deals for run %s: %v", runID, err)
	}
	return deals
}
