package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/Veraticus/spice-ledger/internal/source"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/spf13/viper"
)

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// initStorage opens the ledger database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (service.Storage, error) {
	dbPath := settings.DatabasePath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newSource picks the upstream for the ledger view: a snapshot file when one
// is given, the database otherwise. The bundled dataset stands in when the
// upstream fails and fallback is enabled.
func newSource(store service.Fetcher, snapshot string, settings *config.Settings) *source.Cache {
	var upstream service.Fetcher = store
	if snapshot != "" {
		upstream = source.FileSource{Path: config.ExpandPath(snapshot)}
	}
	if settings.Fallback {
		upstream = source.WithFallback(upstream, source.Fallback{})
	}
	return source.NewCache(upstream, source.WithTTL(settings.CacheTTL))
}
