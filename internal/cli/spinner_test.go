package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer written by the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureSpinner(t *testing.T) *syncBuffer {
	t.Helper()
	out := &syncBuffer{}
	old := spinnerOut
	spinnerOut = out
	t.Cleanup(func() { spinnerOut = old })
	return out
}

func TestSpinnerDrawsMessage(t *testing.T) {
	out := captureSpinner(t)
	s := newSpinner("Connecting to redis...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Connecting to redis...") {
		t.Errorf("spinner output = %q", out.String())
	}
	if s.Cancelled() != true {
		t.Error("Stop should cancel the spinner context")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	captureSpinner(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Clearing page cache...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureSpinner(t)
	s := newSpinner("Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	captureSpinner(t)
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	s := newSpinner("Connecting to mongo...")
	s.Start()
	s.StopWithSuccess("Connected to mongo")
	if !strings.Contains(out.String(), "Connected to mongo") {
		t.Errorf("stdout = %q", out.String())
	}

	out.Reset()
	s = newSpinner("Connecting to mongo...")
	s.Start()
	s.StopWithError("connection refused")
	if !strings.Contains(out.String(), "connection refused") {
		t.Errorf("stdout = %q", out.String())
	}
}
