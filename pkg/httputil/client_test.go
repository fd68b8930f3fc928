package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tgerrors "github.com/matzehuels/taskgraph/pkg/errors"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantCode  tgerrors.Code
		retryable bool
	}{
		{200, "", false},
		{204, "", false},
		{404, tgerrors.ErrCodeNotFound, false},
		{400, tgerrors.ErrCodeNetwork, false},
		{429, tgerrors.ErrCodeNetwork, true},
		{503, tgerrors.ErrCodeNetwork, true},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if got := tgerrors.GetCode(err); got != tt.wantCode {
			t.Errorf("CheckStatus(%d) code = %q, want %q", tt.code, got, tt.wantCode)
		}
		if got := isRetryable(err); got != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}

func TestClientGetJSON(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("Authorization") != "Bearer t" {
			t.Errorf("missing default header")
		}
		_, _ = w.Write([]byte(`{"n": 3}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, map[string]string{"Authorization": "Bearer t"}).WithBackoff(Backoff{Attempts: 3, Delay: time.Millisecond})
	var out struct{ N int }
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.N != 3 || calls.Load() != 2 {
		t.Errorf("out = %+v after %d calls", out, calls.Load())
	}
}

func TestClientNotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(time.Second, nil).WithBackoff(Backoff{Attempts: 3, Delay: time.Millisecond})
	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	if !tgerrors.Is(err, tgerrors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	err := NewClient(time.Second, nil).GetJSON(context.Background(), srv.URL, &struct{}{})
	if !tgerrors.Is(err, tgerrors.ErrCodeInvalidSnapshot) {
		t.Errorf("err = %v", err)
	}
}
