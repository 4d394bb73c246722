// Package retry contains a fixed retry policy.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a retry policy with a fixed number of attempts
// and a fixed pause between them.
type Policy struct {
	Attempts int
	Pause    time.Duration

	// called after every failed attempt.
	OnError func(attempt int, err error)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOffContext {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Pause), uint64(p.attempts()-1)),
		ctx)
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// Do calls fn until it succeeds or attempts are exhausted.
// It returns the error of the last attempt, or the context error
// when ctx is canceled before attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := 0

	err := backoff.Retry(func() error {
		attempt++

		err := fn(ctx)
		if err != nil && p.OnError != nil {
			p.OnError(attempt, err)
		}
		return err
	}, p.backOff(ctx))
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("terminated: %w", ctxErr)
	}

	return fmt.Errorf("all %d attempts failed: %w", attempt, err)
}
