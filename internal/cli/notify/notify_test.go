package notify

import (
	"bytes"
	"testing"
	"time"
)

func TestType_Duration(t *testing.T) {
	tests := []struct {
		typ  Type
		want time.Duration
	}{
		{TypeSuccess, 3 * time.Second},
		{TypeError, 5 * time.Second},
		{TypeWarning, 4 * time.Second},
		{TypeInfo, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := tt.typ.Duration(); got != tt.want {
			t.Errorf("%s.Duration() = %v, want %v", tt.typ, got, tt.want)
		}
		if n := New(tt.typ, "x"); n.Duration != tt.want {
			t.Errorf("New(%s).Duration = %v, want %v", tt.typ, n.Duration, tt.want)
		}
	}
}

func TestTerminalSink_Plain(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSink(&buf, true) // not a terminal: colour disabled

	Success(s, "Saved %d items", 3)
	Error(s, "  Authentication required  ")
	Warning(s, "careful")
	Info(s, "fyi")

	want := "✓ Saved 3 items\n✗ Authentication required\n! careful\ni fyi\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTerminalSink_MessageWithPercent(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSink(&buf, false)

	Error(s, "100% failed")
	if buf.String() != "✗ 100% failed\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	Error(r, "a")
	Error(r, "b")
	Success(r, "c")

	if r.Count(TypeError) != 2 || r.Count(TypeSuccess) != 1 || r.Count("") != 3 {
		t.Errorf("counts = %d/%d/%d", r.Count(TypeError), r.Count(TypeSuccess), r.Count(""))
	}

	all := r.All()
	if len(all) != 3 || all[0].Message != "a" || all[2].Type != TypeSuccess {
		t.Errorf("All() = %+v", all)
	}

	r.Reset()
	if r.Count("") != 0 {
		t.Error("Reset() should clear notifications")
	}
}

type countingStub struct{ kinds []string }

func (c *countingStub) RecordNotification(kind string) { c.kinds = append(c.kinds, kind) }

func TestCountingAndTee(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	c := &countingStub{}

	s := Counting(Tee(a, nil, b), c)
	Warning(s, "w")

	if a.Count(TypeWarning) != 1 || b.Count(TypeWarning) != 1 {
		t.Error("Tee should deliver to every sink")
	}
	if len(c.kinds) != 1 || c.kinds[0] != "warning" {
		t.Errorf("counted kinds = %v", c.kinds)
	}

	if Counting(a, nil) != Sink(a) {
		t.Error("Counting with nil counter should return next unchanged")
	}

	// nil sink helpers must not panic
	Info(nil, "ignored")
	Discard.Notify(New(TypeInfo, "ignored"))
}
