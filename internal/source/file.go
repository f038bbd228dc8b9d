package source

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

//go:embed data/fallback.json
var fallbackData embed.FS

// FileSource reads a ledger snapshot from a JSON file on every fetch.
type FileSource struct {
	Path string
}

// Fetch decodes the file. A missing or undecodable file is a permanent
// failure.
func (f FileSource) Fetch(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		err = fmt.Errorf("failed to open snapshot %s: %w", f.Path, err)
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.Permanent(err)
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	records, err := DecodeSnapshot(file)
	if err != nil {
		return nil, common.Permanent(err)
	}
	return records, nil
}

// Fallback serves the bundled demo ledger.
type Fallback struct{}

// Fetch decodes the embedded dataset.
func (Fallback) Fetch(_ context.Context) ([]model.Transaction, error) {
	file, err := fallbackData.Open("data/fallback.json")
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback dataset: %w", err)
	}
	defer func() { _ = file.Close() }()

	return DecodeSnapshot(file)
}

// WithFallback returns a Fetcher serving fallback's data when primary fails.
func WithFallback(primary, fallback service.Fetcher) service.Fetcher {
	return service.FetcherFunc(func(ctx context.Context) ([]model.Transaction, error) {
		records, err := primary.Fetch(ctx)
		if err == nil {
			return records, nil
		}
		slog.Warn("Primary ledger source failed, using fallback data", "error", err)

		records, fbErr := fallback.Fetch(ctx)
		if fbErr != nil {
			return nil, fmt.Errorf("primary: %w; fallback: %w", err, fbErr)
		}
		return records, nil
	})
}
