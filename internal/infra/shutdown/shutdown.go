package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitCode is used when a second signal forces the process down.
const ExitCode = 130

// Handler handles interrupt-driven shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []func(context.Context) error
	mu      sync.Mutex
	done    chan struct{}
	force   func()
}

// NewHandler creates a handler whose hooks share a deadline of timeout.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]func(context.Context) error, 0),
		done:    make(chan struct{}),
		force:   func() { os.Exit(ExitCode) },
	}
}

// OnShutdown registers a hook run after the first signal.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Context returns a child of parent that is cancelled by the first
// SIGINT or SIGTERM. The returned stop function releases the signal
// handler; call it when the program is done.
func (h *Handler) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
		case <-stopped:
			return
		}
		cancel()
		h.runHooks()

		select {
		case <-sigCh:
			h.force()
		case <-stopped:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(stopped)
			cancel()
		})
	}
}

func (h *Handler) runHooks() {
	defer close(h.done)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		_ = hooks[i](ctx)
	}
}

// Done returns a channel that closes once the hooks of the first signal
// have run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
