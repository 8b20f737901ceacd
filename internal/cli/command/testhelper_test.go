package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/cmsadmin/internal/cli/config"
	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/session"
)

// mockServer is a CMS backend double. Handlers are matched by
// "METHOD /path" first, then by path prefix.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []*http.Request
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r)
		h, ok := m.handlers[r.Method+" "+r.URL.Path]
		if !ok {
			best := ""
			for pattern, handler := range m.handlers {
				if strings.HasPrefix(r.URL.Path, pattern) && len(pattern) > len(best) {
					best, h = pattern, handler
				}
			}
			ok = best != ""
		}
		m.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

// handle registers a handler for "METHOD /path" or a path prefix.
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[pattern] = handler
}

func (m *mockServer) count(method, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}
	return n
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ok writes a success envelope around data.
func ok(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"success": true, "data": data})
	}
}

// errorResponse writes a failure envelope.
func errorResponse(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, status, map[string]any{"success": false, "message": message})
	}
}

var testAdmin = model.Profile{
	ID:    "u1",
	Name:  "Ada Admin",
	Email: "ada@example.com",
	Role:  model.RoleAdmin,
}

// testEnv is an Env wired to a mock server with captured I/O.
type testEnv struct {
	*Env
	rec    *notify.Recorder
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestEnv(t *testing.T, srv *mockServer, input string) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/api"
	cfg.Session.Dir = t.TempDir()
	cfg.Output.Color = false

	te := &testEnv{
		rec:    &notify.Recorder{},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	env, err := NewEnv(cfg, filepath.Join(t.TempDir(), "cli.yaml"), EnvOptions{
		Storage: session.NewMemoryStorage(),
		Sink:    te.rec,
		Stdin:   strings.NewReader(input),
		Stdout:  te.out,
		Stderr:  te.errOut,
	})
	if err != nil {
		t.Fatalf("NewEnv() error = %v", err)
	}
	te.Env = env
	t.Cleanup(func() { env.Close() })
	return te
}

// signIn stores a session as if login had succeeded earlier.
func (te *testEnv) signIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := te.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := te.Store.Set(ctx, "tok-123", testAdmin); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

// run executes one command line through a fresh App sharing the Env. The
// Env stays open between runs.
func (te *testEnv) run(args ...string) error {
	app := App()
	app.Metadata[envKey] = te.Env
	app.Writer = te.out
	app.ErrWriter = te.errOut
	return app.Run(append([]string{"cmsadmin"}, args...))
}

func (te *testEnv) errors() int {
	return te.rec.Count(notify.TypeError)
}

func (te *testEnv) successes() int {
	return te.rec.Count(notify.TypeSuccess)
}
