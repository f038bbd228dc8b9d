package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Cache holds the most recent ledger snapshot from an upstream Fetcher.
// Snapshots are replaced wholesale, never patched.
type Cache struct {
	fetched  time.Time
	upstream service.Fetcher
	now      func() time.Time
	records  []model.Transaction
	retry    service.RetryOptions
	ttl      time.Duration
	mu       sync.Mutex
	valid    bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL expires snapshots after ttl. Zero keeps them until Refresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

// WithRetryOptions sets the retry policy for upstream fetches.
func WithRetryOptions(opts service.RetryOptions) CacheOption {
	return func(c *Cache) { c.retry = opts }
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache wraps upstream.
func NewCache(upstream service.Fetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		upstream: upstream,
		now:      time.Now,
		retry:    service.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot, fetching it when missing or expired.
// Upstream failures are reported as common.ErrDataUnavailable.
func (c *Cache) Get(ctx context.Context) ([]model.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && (c.ttl == 0 || c.now().Sub(c.fetched) < c.ttl) {
		return c.records, nil
	}

	var records []model.Transaction
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		records, fetchErr = c.upstream.Fetch(ctx)
		return fetchErr
	}, c.retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDataUnavailable, err)
	}

	c.records = records
	c.fetched = c.now()
	c.valid = true
	slog.Debug("Ledger snapshot fetched", "records", len(records))
	return records, nil
}

// Fetch implements service.Fetcher.
func (c *Cache) Fetch(ctx context.Context) ([]model.Transaction, error) {
	return c.Get(ctx)
}

// Refresh invalidates the snapshot so the next Get re-fetches.
func (c *Cache) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.records = nil
}
