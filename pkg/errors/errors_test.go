package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidInterval, "interval %s not allowed", "7s")
	if got, want := err.Error(), "INVALID_INTERVAL: interval 7s not allowed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "fetch scope %s", "run-1")
	if got, want := wrapped.Error(), "NETWORK_ERROR: fetch scope run-1: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, cause) || errors.Unwrap(wrapped) != cause {
		t.Error("Wrap should keep the cause in the chain")
	}
}

func TestIs(t *testing.T) {
	timeout := New(ErrCodeTimeout, "deadline")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNotFound, "x"), ErrCodeNotFound, true},
		{"other code", New(ErrCodeNotFound, "x"), ErrCodeNetwork, false},
		{"outer of chain", Wrap(ErrCodeFetchFailed, timeout, "fetch"), ErrCodeFetchFailed, true},
		{"inner of chain", Wrap(ErrCodeFetchFailed, timeout, "fetch"), ErrCodeTimeout, true},
		{"behind fmt wrap", fmt.Errorf("load: %w", timeout), ErrCodeTimeout, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("reconcile: %w", Wrap(ErrCodeFetchFailed, New(ErrCodeTimeout, "deadline"), "could not load the task graph"))
	if got := GetCode(err); got != ErrCodeFetchFailed {
		t.Errorf("GetCode = %q, want outermost FETCH_FAILED", got)
	}
	if got := UserMessage(err); got != "could not load the task graph" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := errors.New("plain")
	if GetCode(plain) != "" || UserMessage(plain) != "plain" {
		t.Error("plain errors have no code and keep their text")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeNetwork, "x"), true},
		{New(ErrCodeTimeout, "x"), true},
		{New(ErrCodeFetchFailed, "x"), true},
		{New(ErrCodeInvalidDirection, "x"), false},
		{New(ErrCodeNotFound, "x"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
