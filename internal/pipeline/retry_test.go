package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testPolicy(attempts int, slept *int) retryPolicy {
	return retryPolicy{
		attempts: attempts,
		pause:    time.Second,
		sleep:    func(time.Duration) { *slept++ },
		logger:   slog.Default(),
	}
}

func TestRetrySucceedsOnLastAttempt(t *testing.T) {
	var slept, calls int
	p := testPolicy(5, &slept)

	err := p.do(context.Background(), "flaky op", func() error {
		calls++
		if calls < 5 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on 5th attempt: %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 calls, got %d", calls)
	}
	if slept != 4 {
		t.Errorf("expected 4 pauses, got %d", slept)
	}
}

func TestRetryExhaustion(t *testing.T) {
	var slept, calls int
	p := testPolicy(5, &slept)

	err := p.do(context.Background(), "doomed op", func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "after 5 attempts") {
		t.Errorf("error should report attempt count: %v", err)
	}
	if !strings.Contains(err.Error(), "permanent") {
		t.Errorf("error should wrap the last failure: %v", err)
	}
}

func TestRetryNoSleepOnFirstSuccess(t *testing.T) {
	var slept int
	p := testPolicy(3, &slept)

	if err := p.do(context.Background(), "ok op", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 0 {
		t.Errorf("expected no pauses, got %d", slept)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	var slept, calls int
	p := testPolicy(5, &slept)

	ctx, cancel := context.WithCancel(context.Background())
	err := p.do(ctx, "cancelled op", func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt after cancellation, got %d", calls)
	}
}
