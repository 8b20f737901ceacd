// Package notify surfaces user-facing messages (toasts) with type-specific
// styling and display duration.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Type is the kind of notification.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Duration returns how long a notification of type t stays visible.
func (t Type) Duration() time.Duration {
	switch t {
	case TypeError:
		return 5 * time.Second
	case TypeWarning:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

// Notification is one message shown to the user.
type Notification struct {
	Type     Type
	Message  string
	Duration time.Duration
}

// New builds a notification with the default duration for its type.
func New(t Type, message string) Notification {
	return Notification{Type: t, Message: message, Duration: t.Duration()}
}

// Sink receives notifications.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n Notification)

// Notify implements Sink.
func (f SinkFunc) Notify(n Notification) { f(n) }

// Success notifies a success message.
func Success(s Sink, format string, args ...any) { notify(s, TypeSuccess, format, args...) }

// Error notifies an error message.
func Error(s Sink, format string, args ...any) { notify(s, TypeError, format, args...) }

// Warning notifies a warning message.
func Warning(s Sink, format string, args ...any) { notify(s, TypeWarning, format, args...) }

// Info notifies an informational message.
func Info(s Sink, format string, args ...any) { notify(s, TypeInfo, format, args...) }

func notify(s Sink, t Type, format string, args ...any) {
	if s == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.Notify(New(t, msg))
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

type style struct {
	glyph string
	color lipgloss.Color
}

var styles = map[Type]style{
	TypeSuccess: {"✓", lipgloss.Color("42")},
	TypeError:   {"✗", lipgloss.Color("196")},
	TypeWarning: {"!", lipgloss.Color("214")},
	TypeInfo:    {"i", lipgloss.Color("39")},
}

// TerminalSink renders notifications as single styled lines.
type TerminalSink struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewTerminalSink writes to w. Colour is enabled only when w is a terminal
// and color is true.
func NewTerminalSink(w io.Writer, color bool) *TerminalSink {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color = false
	}
	return &TerminalSink{w: w, color: color}
}

// Notify implements Sink.
func (s *TerminalSink) Notify(n Notification) {
	st, ok := styles[n.Type]
	if !ok {
		st = styles[TypeInfo]
	}
	prefix := st.glyph
	if s.color {
		prefix = lipgloss.NewStyle().Foreground(st.color).Bold(true).Render(st.glyph)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "%s %s\n", prefix, strings.TrimSpace(n.Message))
}

// Recorder keeps every notification; used by tests and the shell.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Sink.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns how many notifications of type t were recorded.
// An empty t counts all.
func (r *Recorder) Count(t Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if t == "" || it.Type == t {
			n++
		}
	}
	return n
}

// Reset drops the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Counter is incremented once per notification type.
type Counter interface {
	RecordNotification(kind string)
}

// Counting wraps next and counts each notification.
func Counting(next Sink, c Counter) Sink {
	if c == nil {
		return next
	}
	return SinkFunc(func(n Notification) {
		c.RecordNotification(string(n.Type))
		next.Notify(n)
	})
}

// Tee fans a notification out to several sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(n Notification) {
		for _, s := range sinks {
			if s != nil {
				s.Notify(n)
			}
		}
	})
}
