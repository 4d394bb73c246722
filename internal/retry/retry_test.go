package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTest = errors.New("unavailable")

func TestPolicyExhausted(t *testing.T) {
	calls := 0
	var failed []int

	p := Policy{
		Attempts: 3,
		Pause:    10 * time.Millisecond,
		OnError: func(attempt int, _ error) {
			failed = append(failed, attempt)
		},
	}

	start := time.Now()

	err := p.Do(context.Background(), func(_ context.Context) error {
		calls++
		return errTest
	})
	require.EqualError(t, err, "all 3 attempts failed: unavailable")
	require.ErrorIs(t, err, errTest)
	require.Equal(t, 3, calls)
	require.Equal(t, []int{1, 2, 3}, failed)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPolicySuccess(t *testing.T) {
	for _, ca := range []struct {
		name      string
		failures  int
		wantCalls int
	}{
		{"first attempt", 0, 1},
		{"second attempt", 1, 2},
		{"last attempt", 2, 3},
	} {
		t.Run(ca.name, func(t *testing.T) {
			calls := 0

			err := Policy{Attempts: 3}.Do(context.Background(), func(_ context.Context) error {
				calls++
				if calls <= ca.failures {
					return errTest
				}
				return nil
			})
			require.NoError(t, err)
			require.Equal(t, ca.wantCalls, calls)
		})
	}
}

func TestPolicyCanceled(t *testing.T) {
	ctx, ctxCancel := context.WithCancel(context.Background())

	calls := 0

	err := Policy{Attempts: 3, Pause: time.Hour}.Do(ctx, func(_ context.Context) error {
		calls++
		ctxCancel()
		return errTest
	})
	require.EqualError(t, err, "terminated: context canceled")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestPolicyCanceledDuringPause(t *testing.T) {
	ctx, ctxCancel := context.WithCancel(context.Background())

	calls := 0

	go func() {
		time.Sleep(50 * time.Millisecond)
		ctxCancel()
	}()

	start := time.Now()

	err := Policy{Attempts: 3, Pause: time.Hour}.Do(ctx, func(_ context.Context) error {
		calls++
		return errTest
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
	require.Less(t, time.Since(start), time.Minute)
}

func TestPolicyZeroAttempts(t *testing.T) {
	calls := 0

	err := Policy{}.Do(context.Background(), func(_ context.Context) error {
		calls++
		return errTest
	})
	require.EqualError(t, err, "all 1 attempts failed: unavailable")
	require.Equal(t, 1, calls)
}
