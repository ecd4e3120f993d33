package query

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteWithTimeoutReturnsResult(t *testing.T) {
	got, err := ExecuteWithTimeout(context.Background(), "fast", time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestExecuteWithTimeoutPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err := ExecuteWithTimeout(context.Background(), "failing", time.Second, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped work error, got %v", err)
	}
}

func TestExecuteWithTimeoutExpires(t *testing.T) {
	_, err := ExecuteWithTimeout(context.Background(), "slow", 10*time.Millisecond, func(ctx context.Context) (int, error) {
		time.Sleep(500 * time.Millisecond)
		return 0, nil
	})

	var timeoutErr *QueryTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected QueryTimeoutError, got %v", err)
	}
	if timeoutErr.Operation != "slow" {
		t.Fatalf("unexpected operation: %q", timeoutErr.Operation)
	}
	if timeoutErr.Timeout != 10*time.Millisecond {
		t.Fatalf("unexpected timeout: %v", timeoutErr.Timeout)
	}
}

func TestQueryTimeoutErrorMessage(t *testing.T) {
	err := &QueryTimeoutError{Operation: "op", Timeout: 5 * time.Second}
	if err.Error() != "Query timeout: op exceeded 5000ms" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	var asErr error = err
	if asErr == nil {
		t.Fatal("QueryTimeoutError must satisfy error")
	}
}

func TestExecuteWithTimeoutHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteWithTimeout(ctx, "cancelled", time.Second, func(ctx context.Context) (int, error) {
		time.Sleep(time.Second)
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
