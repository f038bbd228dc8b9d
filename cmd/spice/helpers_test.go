package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/source"
	"github.com/Veraticus/spice-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(fallback bool) *config.Settings {
	return &config.Settings{Fallback: fallback}
}

func TestNewSource_Database(t *testing.T) {
	db := testutil.SetupTestDB(t, queryRecords(12))

	records, err := newSource(db.Storage, "", testSettings(false)).Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 12)
}

func TestNewSource_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, source.EncodeSnapshot(f, queryRecords(3)))
	require.NoError(t, f.Close())

	records, err := newSource(nil, path, testSettings(false)).Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestNewSource_Fallback(t *testing.T) {
	failing := service.FetcherFunc(func(context.Context) ([]model.Transaction, error) {
		return nil, errors.New("database locked")
	})

	records, err := newSource(failing, "", testSettings(true)).Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 51)
}

func TestInitStorage_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")

	store, err := initStorage(context.Background(), &config.Settings{DatabasePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
