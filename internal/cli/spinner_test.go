package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsFrames(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Assembling...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Assembling...") {
		t.Errorf("spinner output %q lacks message", buf.String())
	}
	if s.Cancelled() {
		t.Error("stopped spinner reports cancellation")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Waiting...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &bytes.Buffer{}, "Waiting...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithError(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Failing...")
	s.Start()
	s.StopWithError("Section build failed")

	if !strings.Contains(buf.String(), "Section build failed") {
		t.Errorf("output %q lacks error message", buf.String())
	}
}
