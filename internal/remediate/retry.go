package remediate

import (
	"context"
	"time"
)

// RetryPolicy bounds a polling loop.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first.
	Attempts       int
	AttemptTimeout time.Duration
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
}

var sleepCh = time.After

// Retry calls fn until it returns nil, the attempts run out, or ctx ends.
// Each call gets its own AttemptTimeout deadline. The delay between calls
// doubles from BaseBackoff and is capped at MaxBackoff.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := policy.BaseBackoff

	for attempt := 1; ; attempt++ {
		err := runAttempt(ctx, policy.AttemptTimeout, fn)
		if err == nil {
			return nil
		}
		if attempt >= attempts {
			return err
		}

		delay := backoff
		if policy.MaxBackoff > 0 && delay > policy.MaxBackoff {
			delay = policy.MaxBackoff
		}
		select {
		case <-sleepCh(delay):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
