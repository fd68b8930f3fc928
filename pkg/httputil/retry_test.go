package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := b.Do(ctx, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errBoom}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Do = %v after %d calls", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) || calls != 1 {
		t.Errorf("non-retryable: %v after %d calls", err, calls)
	}

	calls = 0
	err = Backoff{Attempts: 2, Delay: time.Millisecond}.Do(ctx, func() error {
		calls++
		return &RetryableError{Err: errBoom}
	})
	if !errors.Is(err, errBoom) || calls != 2 {
		t.Errorf("exhausted: %v after %d calls", err, calls)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error {
		return &RetryableError{Err: errBoom}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do = %v, want context.Canceled", err)
	}
}

func TestBackoffMaxCapsServerHint(t *testing.T) {
	b := Backoff{Attempts: 2, Delay: time.Millisecond, Max: 5 * time.Millisecond}
	start := time.Now()
	_ = b.Do(context.Background(), func() error {
		return &RetryableError{Err: errBoom, After: time.Hour}
	})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waited %s, Max should cap Retry-After", elapsed)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
