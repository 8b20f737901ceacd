package command

import (
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

func TestShell_RunsCommands(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/auth/verify", ok(map[string]any{"user": testAdmin}))

	te := newTestEnv(t, srv, "whoami\nexit\n")
	te.signIn(t)

	if err := te.run("shell", "--no-history"); err != nil {
		t.Fatal(err)
	}
	out := te.out.String()
	for _, want := range []string{"cmsadmin (ada@example.com)> ", "Ada Admin", "Type 'help'"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if te.isInteractive() {
		t.Error("interactive flag must be restored")
	}
	if _, restored := te.Prompter.(*terminalPrompter); !restored {
		t.Errorf("prompter not restored: %T", te.Prompter)
	}
}

func TestShell_LoggedOutBanner(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "")

	if err := te.run("shell", "--no-history"); err != nil {
		t.Fatal(err)
	}
	out := te.out.String()
	if !strings.Contains(out, "Not logged in") || !strings.Contains(out, "cmsadmin (logged out)> ") {
		t.Errorf("output = %s", out)
	}
}

func TestShell_UnauthorizedRunsLoginFlow(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/auth/verify", ok(map[string]any{"user": testAdmin}))
	srv.handle("POST /api/auth/login", ok(model.AuthData{Token: "tok-new", User: testAdmin}))

	var calls atomic.Int32
	srv.handle("GET /api/contact", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			errorResponse(http.StatusUnauthorized, "Token expired")(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-new" {
			t.Errorf("Authorization = %q", got)
		}
		ok(model.ContactList{})(w, r)
	})

	input := strings.Join([]string{
		"contact list",
		"ada@example.com",
		"secret",
		"contact list",
		"exit",
	}, "\n") + "\n"
	te := newTestEnv(t, srv, input)
	te.signIn(t)

	if err := te.run("shell", "--no-history"); err != nil {
		t.Fatal(err)
	}

	out := te.out.String()
	if !strings.Contains(out, "Session ended. Please log in again.") {
		t.Errorf("login flow not started:\n%s", out)
	}
	if strings.Contains(out, "Error:") {
		t.Errorf("reported errors must not be printed twice:\n%s", out)
	}
	if strings.Contains(te.errOut.String(), "cmsadmin login") {
		t.Error("the one-shot hint is not used inside the shell")
	}
	if te.errors() != 1 || te.successes() != 1 {
		t.Errorf("notifications = %+v", te.rec.All())
	}
	if calls.Load() != 2 {
		t.Errorf("contact list calls = %d, want 2", calls.Load())
	}
	if te.Store.Token() != "tok-new" {
		t.Errorf("token = %q", te.Store.Token())
	}
	if te.nav.Pending() {
		t.Error("no login should remain pending")
	}
}

func TestShell_RejectsNestedShell(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "shell\nrepl\nexit\n")

	if err := te.run("shell", "--no-history"); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(te.out.String(), "Error: already in a shell"); n != 2 {
		t.Errorf("nested shell errors = %d:\n%s", n, te.out.String())
	}
}

func TestShell_PerLineOutputFlags(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/auth/verify", ok(map[string]any{"user": testAdmin}))
	srv.handle("GET /api/contact", ok(testContacts))

	te := newTestEnv(t, srv, "-o json contact list\ncontact list\nexit\n")
	te.signIn(t)

	if err := te.run("shell", "--no-history"); err != nil {
		t.Fatal(err)
	}
	out := te.out.String()
	if !strings.Contains(out, `"contacts"`) {
		t.Errorf("first line should print JSON:\n%s", out)
	}
	if !strings.Contains(out, "Page 1 of 1") {
		t.Errorf("second line should fall back to the table:\n%s", out)
	}
}
