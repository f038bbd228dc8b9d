package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noRetry = service.RetryOptions{MaxAttempts: 1}

func TestDecodeSnapshot_Array(t *testing.T) {
	input := `[
		{"id": "1", "date": "2024-01-02", "description": "Rent", "amount": -950, "category": "Bills", "recurring": true, "dueDay": 1},
		{"id": "2", "date": "2024-01-03", "name": "Employer", "amount": "2500.00", "category": "Income"},
		{"id": "3", "date": "whenever", "description": "Odd", "amount": "abc", "category": "misc"},
		{"id": "4", "date": "2024-01-04", "description": "Null", "amount": null, "category": "misc"}
	]`

	records, err := DecodeSnapshot(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "-950", records[0].AmountString())
	assert.True(t, records[0].Recurring)
	assert.Equal(t, 1, records[0].DueDay)
	assert.Equal(t, "Employer", records[1].Description)
	assert.Equal(t, "2500", records[1].AmountString())
	assert.False(t, records[2].Amount.Valid)
	assert.Equal(t, "whenever", records[2].Date)
	assert.False(t, records[3].Amount.Valid)
}

func TestDecodeSnapshot_DocumentAndGeneratedIDs(t *testing.T) {
	input := `{"transactions": [{"date": "2024-01-02", "description": "Coffee", "amount": -3}]}`

	first, err := DecodeSnapshot(strings.NewReader(input))
	require.NoError(t, err)
	second, err := DecodeSnapshot(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Len(t, first[0].ID, 36)
	assert.Equal(t, first[0].ID, second[0].ID, "generated IDs are stable")
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	_, err := DecodeSnapshot(strings.NewReader(`[{"id": 1,`))
	require.Error(t, err)
}

func TestEncodeSnapshot_RoundTrip(t *testing.T) {
	records := []model.Transaction{
		{ID: "a", Date: "2024-02-01", Description: "Gym", Amount: model.ParseAmount("-30.50"), Category: "Health", Recurring: true, DueDay: 5},
		{ID: "b", Date: "bad", Description: "Broken", Amount: model.ParseAmount("x")},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, records))
	assert.Contains(t, buf.String(), `"amount": -30.5`)
	assert.Contains(t, buf.String(), `"amount": null`)

	decoded, err := DecodeSnapshot(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "-30.5", decoded[0].AmountString())
	assert.Equal(t, 5, decoded[0].DueDay)
	assert.False(t, decoded[1].Amount.Valid)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","date":"2024-01-01","description":"X","amount":1,"category":"y"}]`), 0o600))

	records, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background())
	require.Error(t, err)
}

func TestCache_PermanentSnapshotErrorsSkipRetry(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte(`{not json`), 0o600))
	retry := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Hour}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.json")},
		{"corrupt", corrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileSource{Path: tt.path}.Fetch(context.Background())
			require.Error(t, err)
			assert.False(t, common.IsRetryable(err))

			// An hour-long backoff would hang the test if the error were retried.
			_, err = NewCache(FileSource{Path: tt.path}, WithRetryOptions(retry)).Get(context.Background())
			require.ErrorIs(t, err, common.ErrDataUnavailable)
			assert.NotErrorIs(t, err, common.ErrMaxRetries)
		})
	}
}

func TestFallback(t *testing.T) {
	records, err := Fallback{}.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, records)

	seen := make(map[string]bool)
	for _, r := range records {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.True(t, r.Amount.Valid, r.ID)
		_, ok := r.Timestamp()
		assert.True(t, ok, r.ID)
	}
}

func TestWithFallback(t *testing.T) {
	failing := service.FetcherFunc(func(context.Context) ([]model.Transaction, error) {
		return nil, errors.New("api down")
	})

	records, err := WithFallback(failing, Fallback{}).Fetch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, records)

	_, err = WithFallback(failing, failing).Fetch(context.Background())
	require.ErrorContains(t, err, "api down")
}

type countingFetcher struct {
	err     error
	records []model.Transaction
	calls   int
}

func (c *countingFetcher) Fetch(context.Context) ([]model.Transaction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.records, nil
}

func TestCache_GetAndRefresh(t *testing.T) {
	upstream := &countingFetcher{records: []model.Transaction{{ID: "1"}}}
	cache := NewCache(upstream, WithRetryOptions(noRetry))
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)

	upstream.records = []model.Transaction{{ID: "1"}, {ID: "2"}}
	cache.Refresh()
	records, err := cache.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, upstream.calls)
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	upstream := &countingFetcher{records: []model.Transaction{{ID: "1"}}}
	cache := NewCache(upstream,
		WithTTL(time.Minute),
		WithRetryOptions(noRetry),
		WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}

func TestCache_UpstreamFailure(t *testing.T) {
	upstream := &countingFetcher{err: errors.New("timeout")}
	cache := NewCache(upstream, WithRetryOptions(service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond}))

	_, err := cache.Get(context.Background())
	require.ErrorIs(t, err, common.ErrDataUnavailable)
	assert.Equal(t, 2, upstream.calls)
}
