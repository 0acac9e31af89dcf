package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/learnquest/questsync/internal/core/domain"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestRetry_StopsAfterMaxAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	boom := errors.New("connection refused")

	err := retry(context.Background(), DefaultRetryPolicy(), sleeper.sleep, "submit", func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestRetry_DelaysAreNonDecreasing(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond}

	_ = retry(context.Background(), policy, sleeper.sleep, "submit", func(context.Context) error {
		return errors.New("down")
	})

	assert.Len(t, sleeper.delays, 4)
	for i := 1; i < len(sleeper.delays); i++ {
		assert.GreaterOrEqual(t, sleeper.delays[i], sleeper.delays[i-1])
	}
}

func TestRetry_SucceedsMidway(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	err := retry(context.Background(), DefaultRetryPolicy(), sleeper.sleep, "submit", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, sleeper.delays, 1)
}

func TestRetry_RejectionIsNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	err := retry(context.Background(), DefaultRetryPolicy(), sleeper.sleep, "submit", func(context.Context) error {
		calls++
		return &domain.RemoteError{StatusCode: 422}
	})

	assert.True(t, domain.IsRejection(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestRetry_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := retry(ctx, DefaultRetryPolicy(), sleepContext, "submit", func(context.Context) error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
