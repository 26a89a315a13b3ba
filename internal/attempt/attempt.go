// Package attempt implements the retry loop shared by the request kinds:
// bound each attempt with the effective timeout, route every failure through
// the retry policy, and surface the last cause once the budget is spent.
package attempt

import (
	"context"
	"fmt"
	"time"

	orch "github.com/johnbchron/openai-orch"
	"github.com/johnbchron/openai-orch/policies"
)

// Do runs call until it succeeds or retry reports exhaustion. Each attempt
// executes under a context bounded by timeout, so an attempt that exceeds it
// fails with context.DeadlineExceeded and consumes one retry like any other
// transient failure. Attempts are strictly sequential.
//
// On exhaustion the returned error wraps both orch.ErrRetriesExhausted and
// the last attempt's error. A parent context canceled mid-delay or mid-attempt
// surfaces ctx.Err() instead.
func Do[T any](
	ctx context.Context,
	retry *policies.RetryPolicy,
	timeout time.Duration,
	call func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	for {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		value, err := call(attemptCtx)
		cancel()

		if err == nil {
			return value, nil
		}

		if retry.OnFailure(ctx) {
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, fmt.Errorf("attempt aborted: %w", ctxErr)
		}

		return zero, fmt.Errorf("%w: %w", orch.ErrRetriesExhausted, err)
	}
}
