// Package testutil provides shared fixtures for ledger tests: generated
// records and seeded throwaway databases.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// TestDB is a migrated in-memory ledger database.
type TestDB struct {
	Storage service.Storage
	Records []model.Transaction
}

// SetupTestDB creates an in-memory database seeded with records. It is
// closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.NewRecords().WithDaily(20, "Groceries", "Bills").Build())
func SetupTestDB(t *testing.T, records []model.Transaction) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(records) > 0 {
		if _, err := store.SaveTransactions(ctx, records); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}

	return &TestDB{Storage: store, Records: records}
}
