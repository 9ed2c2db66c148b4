package interaction

import (
	"context"
	"errors"
	"time"

	"swagflow/internal/domain/entity"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Operation is one attempt of a fallible read or action.
type Operation func(ctx context.Context) entity.Result

// WithRetry runs op up to policy.MaxAttempts times with a constant backoff.
// NotFound and Timeout are retried; Success and TransientError return at
// once. When attempts run out the last result is returned unchanged apart
// from Attempts.
func WithRetry(ctx context.Context, op Operation, policy entity.RetryPolicy) entity.Result {
	if err := policy.Validate(); err != nil {
		return entity.Transient(err)
	}

	start := time.Now()
	var (
		last     entity.Result
		attempts int
	)

	backoff := wait.Backoff{
		Duration: policy.Backoff,
		Factor:   1.0,
		Steps:    policy.MaxAttempts,
	}

	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		attempts++
		last = op(ctx)
		last.Attempts = attempts
		return !last.Retryable(), nil
	})

	if ctxErr := ctx.Err(); err != nil && ctxErr != nil && errors.Is(err, ctxErr) {
		res := entity.Transient(ctxErr)
		res.Locator = last.Locator
		res.Condition = last.Condition
		res.Attempts = attempts
		res.Elapsed = time.Since(start)
		return res
	}
	return last
}
