package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, fastRetry)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return boom
	}, fastRetry)

	require.ErrorIs(t, err, ErrMaxRetries)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return Permanent(ErrNotFound)
	}, fastRetry)

	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errors.New("down") }, service.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Second,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not load ledger", ErrDataUnavailable)

	assert.Equal(t, "Could not load ledger: ledger data unavailable", err.Error())
	assert.ErrorIs(t, err, ErrDataUnavailable)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Could not load ledger", userErr.UserMessage)
}

func TestSetupLoggerTo(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelDebug, "json"))
	LogDebug("pipeline ready", Fields{"records": 3})
	assert.Contains(t, buf.String(), `"records":3`)

	err := SetupLoggerTo(&buf, slog.LevelInfo, "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
