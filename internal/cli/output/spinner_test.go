package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer written by the spinner goroutine.
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

func TestSpinner_StartStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Loading dashboard")
	s.interval = 5 * time.Millisecond

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Loading dashboard") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("Stop should clear the line last: %q", out)
	}
}

func TestSpinner_SuccessFail(t *testing.T) {
	tests := []struct {
		name  string
		end   func(*Spinner)
		glyph string
	}{
		{"success", func(s *Spinner) { s.Success("Done") }, "✓ Done\n"},
		{"fail", func(s *Spinner) { s.Fail("Broken") }, "✗ Broken\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			s := NewSpinner(&buf, "Working")
			s.Start()
			tt.end(s)
			if !strings.HasSuffix(buf.String(), tt.glyph) {
				t.Errorf("output = %q", buf.String())
			}
		})
	}
}

func TestSpinner_Idempotent(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Test")

	s.Stop()
	s.Stop()
	s.Success("ignored")

	if strings.Contains(buf.String(), "ignored") {
		t.Error("only the first finish call should write")
	}
}
