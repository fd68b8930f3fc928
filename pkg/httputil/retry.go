package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient failure. After, when positive, is the
// server's requested wait (Retry-After) and replaces the backoff delay for
// that attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is an exponential retry policy. Delays double from Delay and are
// capped at Max when Max is positive.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	Max      time.Duration
}

// DefaultBackoff suits a dashboard polling a nearby data service: a failed
// fetch should surface within a couple of seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 250 * time.Millisecond, Max: 2 * time.Second}

// Do runs fn until it succeeds, returns an error not wrapped in
// [RetryableError], or runs out of attempts. It returns the last error, or
// ctx.Err() if ctx ends while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		var re *RetryableError
		if lastErr == nil || !errors.As(lastErr, &re) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		if b.Max > 0 {
			wait = min(wait, b.Max)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return lastErr
}

// retryAfter parses a Retry-After header given in seconds. HTTP-date values
// are ignored.
func retryAfter(h http.Header) time.Duration {
	s := h.Get("Retry-After")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
