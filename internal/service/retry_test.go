package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetry(attempts int) *Retry {
	return NewRetry(&RetryConfig{MaxAttempts: attempts, InitialInterval: time.Millisecond, Multiplier: 2}, NewNopLogger())
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	r := newTestRetry(3)
	calls := 0
	err := r.Do(context.Background(), "k", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	stats, ok := r.Stats("k")
	require.True(t, ok)
	assert.Equal(t, 3, stats.Attempts)
	assert.True(t, stats.Success)
}

func TestRetry_GivesUp(t *testing.T) {
	r := newTestRetry(2)
	calls := 0
	err := r.Do(context.Background(), "k", func(context.Context) error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, calls)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	r := newTestRetry(5)
	cause := NewError(ErrExternal, "remote file not found", nil)
	calls := 0
	err := r.Do(context.Background(), "k", func(context.Context) error {
		calls++
		return Permanent(cause)
	})
	assert.Same(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	r := NewRetry(&RetryConfig{MaxAttempts: 5, InitialInterval: time.Hour}, NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Do(ctx, "k", func(context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_Interval(t *testing.T) {
	r := NewRetry(&RetryConfig{MaxAttempts: 5, InitialInterval: 100 * time.Millisecond, MaxInterval: 300 * time.Millisecond, Multiplier: 2}, NewNopLogger())
	assert.Equal(t, 100*time.Millisecond, r.interval(1))
	assert.Equal(t, 200*time.Millisecond, r.interval(2))
	assert.Equal(t, 300*time.Millisecond, r.interval(3))
}
