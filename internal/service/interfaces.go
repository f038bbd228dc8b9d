// Package service defines the interfaces between the ledger view and the
// collaborators that feed it.
package service

import (
	"context"
	"io"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// TransactionFilter narrows a storage query.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Limit     int
	Offset    int
}

// Fetcher supplies a complete ledger snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Transaction, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.Transaction, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]model.Transaction, error) {
	return f(ctx)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Fetcher

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)
	DeleteAllTransactions(ctx context.Context) error

	// Maintenance
	Migrate(ctx context.Context) error
	Close() error
}

// Importer turns a statement file into ledger records.
type Importer interface {
	ParseFile(ctx context.Context, r io.Reader) ([]model.Transaction, error)
}

// RetryOptions configures retry behavior for upstream fetches.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
