package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/intent-resolver/retry"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), retry.DefaultConfig(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
	calls := 0
	err := retry.Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	t.Parallel()

	cfg := retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 2}
	sentinel := errors.New("still failing")
	calls := 0
	err := retry.Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry.Do(ctx, retry.DefaultConfig(), func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := retry.Config{MaxAttempts: 5, InitialDelay: time.Hour, Multiplier: 2}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- retry.Do(ctx, cfg, func(context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), retry.Config{}, func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
