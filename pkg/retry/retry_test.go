package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/pkg/retry"
)

var errConflict = errors.New("conflict")

func isConflict(err error) bool { return errors.Is(err, errConflict) }

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errConflict
		}
		return nil
	}, retry.WithRetryIf(isConflict), retry.WithBaseDelay(time.Microsecond))

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_FailsFastOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := retry.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, retry.WithRetryIf(isConflict))

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	var retried []int
	err := retry.Do(context.Background(), func(context.Context) error {
		calls++
		return errConflict
	},
		retry.WithRetryIf(isConflict),
		retry.WithMaxAttempts(4),
		retry.WithBaseDelay(time.Microsecond),
		retry.OnRetry(func(attempt int, _ error) { retried = append(retried, attempt) }),
	)

	require.ErrorIs(t, err, errConflict)
	require.Equal(t, 4, calls)
	require.Equal(t, []int{1, 2, 3}, retried)
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errConflict
	}, retry.WithRetryIf(isConflict), retry.WithBaseDelay(time.Hour))

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDo_InvalidOptions(t *testing.T) {
	noop := func(context.Context) error { return nil }
	require.ErrorIs(t, retry.Do(context.Background(), noop, retry.WithMaxAttempts(0)), retry.ErrInvalidMaxAttempts)
	require.ErrorIs(t, retry.Do(context.Background(), noop, retry.WithBaseDelay(-1)), retry.ErrNegativeBaseDelay)
	require.ErrorIs(t, retry.Do(context.Background(), noop, retry.WithJitterFactor(2)), retry.ErrInvalidJitterFactor)
}
