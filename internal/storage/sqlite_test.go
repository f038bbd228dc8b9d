package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestTransactions(count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range txns {
		category := "Dining"
		if i%3 == 0 {
			category = "Bills"
		}
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("txn-%02d", i+1),
			Date:        base.AddDate(0, 0, i).Format(time.DateOnly),
			Description: fmt.Sprintf("Merchant #%d", i+1),
			Amount:      model.ParseAmount(fmt.Sprintf("-%d.25", i+1)),
			Category:    category,
		}
	}
	return txns
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, store.Migrate(ctx), "migrating twice is a no-op")
}

func TestNewSQLiteStorage_Validation(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestSaveAndFetch(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	txns := createTestTransactions(6)

	inserted, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Equal(t, 6, inserted)

	again, err := store.SaveTransactions(ctx, txns)
	require.NoError(t, err)
	assert.Zero(t, again, "duplicates are ignored")

	all, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, txns[0].ID, all[0].ID)
	assert.Equal(t, "-1.25", all[0].AmountString())
	assert.Equal(t, "2024-05-01", all[0].Date)

	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestSave_KeepsMalformedValues(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.SaveTransactions(ctx, []model.Transaction{{
		ID:          "odd",
		Date:        "sometime in May",
		Description: "Cash gift",
		Amount:      model.ParseAmount("lots"),
		Recurring:   true,
		DueDay:      14,
	}})
	require.NoError(t, err)

	got, err := store.GetTransactionByID(ctx, "odd")
	require.NoError(t, err)
	assert.Equal(t, "sometime in May", got.Date)
	assert.False(t, got.Amount.Valid)
	assert.True(t, got.Recurring)
	assert.Equal(t, 14, got.DueDay)
}

func TestSave_Validation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.SaveTransactions(ctx, nil)
	require.ErrorIs(t, err, ErrNilParameter)

	_, err = store.SaveTransactions(ctx, []model.Transaction{})
	require.ErrorIs(t, err, ErrEmptySlice)

	_, err = store.SaveTransactions(ctx, []model.Transaction{{ID: "x"}})
	require.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestGetTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	_, err := store.SaveTransactions(ctx, createTestTransactions(10))
	require.NoError(t, err)

	bills, err := store.GetTransactions(ctx, service.TransactionFilter{Category: "bills"})
	require.NoError(t, err)
	assert.Len(t, bills, 4)

	start := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	ranged, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	page, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 3, Offset: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "txn-04", page[0].ID)

	_, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &end, EndDate: &start})
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGetTransactionByID_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetTransactionByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteAllTransactions(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	_, err := store.SaveTransactions(ctx, createTestTransactions(3))
	require.NoError(t, err)

	require.NoError(t, store.DeleteAllTransactions(ctx))
	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInMemoryStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(ctx))
	_, err = store.SaveTransactions(ctx, createTestTransactions(2))
	require.NoError(t, err)

	all, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
