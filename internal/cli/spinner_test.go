package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out lockedBuffer
	s := newSpinnerTo(context.Background(), &out, "Computing layout...")
	s.interval = 5 * time.Millisecond
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Computing layout...") {
		t.Errorf("output should contain the message, got %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output should end by clearing the line, got %q", got)
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out lockedBuffer
	s := newSpinnerTo(ctx, &out, "waiting")
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner goroutine did not exit after cancel")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out lockedBuffer
	s := newSpinnerTo(context.Background(), &out, "x")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithError("failed")
}
