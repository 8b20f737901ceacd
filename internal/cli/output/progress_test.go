package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressBar_Update(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "logo.png")

	p.Update(512, 1024)
	out := buf.String()
	if !strings.Contains(out, "logo.png") || !strings.Contains(out, " 50%") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "512 B/1.0 KB") {
		t.Errorf("byte counts missing: %q", out)
	}
}

func TestProgressBar_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "stream")

	p.Update(2048, 0)
	if !strings.Contains(buf.String(), "stream 2.0 KB") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressBar_FinishAndTitle(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "a.png")

	p.Update(10, 100)
	p.Finish()
	if !strings.Contains(buf.String(), "100%") || !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("Finish output = %q", buf.String())
	}

	buf.Reset()
	p.SetTitle("b.png")
	p.Update(1, 4)
	if !strings.Contains(buf.String(), "b.png") || !strings.Contains(buf.String(), " 25%") {
		t.Errorf("after SetTitle = %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
