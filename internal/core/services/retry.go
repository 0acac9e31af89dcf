package services

import (
	"context"
	"time"

	"github.com/learnquest/questsync/internal/core/domain"
	"github.com/learnquest/questsync/internal/logger"
)

// RetryPolicy bounds immediate writes. Attempt n waits n*BaseDelay before
// attempt n+1.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns 3 attempts with a 1s base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: domain.DefaultMaxRetries,
		BaseDelay:   domain.DefaultRetryDelay,
	}
}

// sleepFunc waits for d or until ctx is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retry runs fn until it succeeds, the backend rejects the request or the
// attempts run out. The last error is returned.
func retry(ctx context.Context, policy RetryPolicy, sleep sleepFunc, name string, fn func(context.Context) error) error {
	attempts := max(policy.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if domain.IsRejection(err) || attempt == attempts {
			break
		}

		delay := time.Duration(attempt) * policy.BaseDelay
		logger.Debug("%s: attempt %d/%d failed, retrying in %s: %v", name, attempt, attempts, delay, err)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
	return err
}
