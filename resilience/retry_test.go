package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordSleep returns a Sleep hook that records requested delays instead of waiting.
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), DefaultRetryConfig(), func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil || result != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", result, err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_FailsTwiceThenSucceeds(t *testing.T) {
	var delays []time.Duration
	var attempts []int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		BackoffFactor:  2,
		Sleep:          recordSleep(&delays),
	}

	result, err := Retry(context.Background(), cfg, func(ctx context.Context, attempt int) (int, error) {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return 0, errors.New("temporary")
		}
		return 42, nil
	})
	if err != nil || result != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", result, err)
	}
	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Errorf("unexpected attempts %v", attempts)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Errorf("delays = %v, want %v", delays, want)
	}
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	var delays []time.Duration
	cfg := RetryConfig{MaxAttempts: 4, InitialBackoff: time.Millisecond, Sleep: recordSleep(&delays)}
	calls := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", errors.New("fail " + string(rune('0'+attempt)))
	})
	if err == nil || err.Error() != "fail 4" {
		t.Errorf("expected last error 'fail 4', got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
	if len(delays) != 3 {
		t.Errorf("expected 3 sleeps (none after the last attempt), got %d", len(delays))
	}
}

func TestRetry_RetryIfStopsEarly(t *testing.T) {
	permanent := errors.New("permanent")
	cfg := RetryConfig{
		MaxAttempts: 5,
		RetryIf:     func(err error) bool { return !errors.Is(err, permanent) },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	calls := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("expected one call with permanent error, got %d calls, err %v", calls, err)
	}
}

func TestRetry_OnRetryHook(t *testing.T) {
	var seen []int
	cfg := RetryConfig{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, err error, backoff time.Duration) { seen = append(seen, attempt) },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
	_, _ = Retry(context.Background(), cfg, func(ctx context.Context, attempt int) (int, error) {
		return 0, errors.New("x")
	})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestRetry_AttemptTimeout(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    2,
		AttemptTimeout: 20 * time.Millisecond,
		Sleep:          func(context.Context, time.Duration) error { return nil },
	}
	calls := 0
	_, err := Retry(context.Background(), cfg, func(ctx context.Context, attempt int) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if calls != 2 {
		t.Errorf("per-attempt timeouts should be retried, got %d calls", calls)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{
		MaxAttempts: 3,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	calls := 0
	_, err := Retry(ctx, cfg, func(ctx context.Context, attempt int) (int, error) {
		calls++
		return 0, errors.New("provider down")
	})
	if calls != 1 {
		t.Errorf("expected no attempt after cancellation, got %d calls", calls)
	}
	if err == nil || err.Error() != "provider down" {
		t.Errorf("expected last attempt error, got %v", err)
	}
}

func TestRetry_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, DefaultRetryConfig(), func(ctx context.Context, attempt int) (int, error) {
		t.Fatal("fn should not run")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, BackoffFactor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempt, cfg); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: time.Minute, BackoffFactor: 2, Jitter: 0.1}
	for i := 0; i < 50; i++ {
		got := Backoff(1, cfg)
		if got < 900*time.Millisecond || got > 1100*time.Millisecond {
			t.Fatalf("jittered backoff %v outside ±10%%", got)
		}
	}
}

func TestSleepContext(t *testing.T) {
	if err := SleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
