package query

import (
	"context"
	"fmt"
	"time"

	"lol-dashboard/internal/metrics"
)

// QueryTimeoutError carries the operation name and the bound that expired so
// callers can tell a timed-out aggregation apart from an empty result.
type QueryTimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *QueryTimeoutError) Error() string {
	return fmt.Sprintf("Query timeout: %s exceeded %dms", e.Operation, e.Timeout.Milliseconds())
}

// ExecuteWithTimeout bounds how long the caller waits for work. On expiry the
// in-flight statement is abandoned, not cancelled: it keeps running on the
// caller's context and its result is discarded. That leak-under-timeout
// tradeoff is inherited from the driver's cancellation behavior.
func ExecuteWithTimeout[T any](ctx context.Context, operation string, timeout time.Duration, work func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		value, err := work(ctx)
		done <- outcome{value: value, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-done:
		metrics.QueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		return result.value, result.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-timer.C:
		metrics.QueryTimeouts.WithLabelValues(operation).Inc()
		var zero T
		return zero, &QueryTimeoutError{Operation: operation, Timeout: timeout}
	}
}
