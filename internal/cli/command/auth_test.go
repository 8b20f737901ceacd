package command

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/cmsadmin/internal/cli/model"
	"github.com/yndnr/cmsadmin/internal/cli/notify"
	"github.com/yndnr/cmsadmin/internal/cli/session"
)

func TestLogin_PromptsAndStoresSession(t *testing.T) {
	srv := newMockServer(t)
	var creds model.Credentials
	srv.handle("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&creds)
		ok(model.AuthData{Token: "tok-new", User: testAdmin})(w, r)
	})

	te := newTestEnv(t, srv, "ada@example.com\nsecret\n")
	if err := te.run("login"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	if creds.Email != "ada@example.com" || creds.Password != "secret" {
		t.Errorf("credentials sent = %+v", creds)
	}
	if te.Store.Token() != "tok-new" || te.Store.User().Email != testAdmin.Email {
		t.Errorf("session not stored: token=%q user=%v", te.Store.Token(), te.Store.User())
	}
	if te.successes() != 1 || te.errors() != 0 {
		t.Errorf("notifications = %+v", te.rec.All())
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"rejected credentials", errorResponse(http.StatusUnauthorized, "Invalid credentials")},
		{"success false", func(w http.ResponseWriter, r *http.Request) {
			jsonResponse(w, http.StatusOK, map[string]any{"success": false, "message": "Account disabled"})
		}},
		{"missing token", ok(map[string]any{"user": testAdmin})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			srv.handle("POST /api/auth/login", tt.handler)
			te := newTestEnv(t, srv, "")

			err := te.run("login", "-e", "ada@example.com", "-p", "wrong")
			if err == nil || !Silent(err) {
				t.Fatalf("error = %v, want an already reported error", err)
			}
			if te.errors() != 1 {
				t.Errorf("error notifications = %d, want 1", te.errors())
			}
			if te.Store.Token() != "" {
				t.Error("failed login must not store a session")
			}
		})
	}
}

func TestLogin_EmptyEmail(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "\n")

	if err := te.run("login"); err == nil || !strings.Contains(err.Error(), "email required") {
		t.Errorf("error = %v", err)
	}
}

func TestRegister_ConfirmsPassword(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("POST /api/auth/register", ok(model.AuthData{Token: "tok-reg", User: testAdmin}))

	te := newTestEnv(t, srv, "pw1\npw2\n")
	err := te.run("register", "--name", "Ada", "--email", "ada@example.com")
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Fatalf("error = %v, want mismatch", err)
	}
	if srv.count(http.MethodPost, "/api/auth/register") != 0 {
		t.Error("mismatched passwords must not reach the server")
	}

	te = newTestEnv(t, srv, "pw1\npw1\n")
	if err := te.run("register", "--name", "Ada", "--email", "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if te.Store.Token() != "tok-reg" {
		t.Errorf("token = %q", te.Store.Token())
	}
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantErrors int
	}{
		{"server ok", ok(nil), 0},
		{"server down", errorResponse(http.StatusInternalServerError, "boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			srv.handle("POST /api/auth/logout", tt.handler)
			te := newTestEnv(t, srv, "")
			te.signIn(t)

			if err := te.run("logout"); err != nil {
				t.Fatalf("logout error = %v", err)
			}
			if te.Store.Token() != "" || te.Store.User() != nil {
				t.Error("logout must always clear the local session")
			}
			if te.errors() != tt.wantErrors || te.successes() != 1 {
				t.Errorf("notifications = %+v", te.rec.All())
			}
		})
	}
}

func TestLogout_NotLoggedIn(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "")

	if err := te.run("logout"); err != nil {
		t.Fatal(err)
	}
	if srv.count(http.MethodPost, "/api/auth/logout") != 0 {
		t.Error("logout without a session should not call the server")
	}
}

func TestWhoami_Remote(t *testing.T) {
	srv := newMockServer(t)
	fresh := testAdmin
	fresh.Name = "Ada Lovelace"
	srv.handle("GET /api/auth/profile", ok(map[string]any{"user": fresh}))

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("whoami", "--remote"); err != nil {
		t.Fatal(err)
	}
	if te.Store.User().Name != "Ada Lovelace" {
		t.Errorf("cached profile not refreshed: %+v", te.Store.User())
	}
	if !strings.Contains(te.out.String(), "Ada Lovelace") {
		t.Errorf("output = %s", te.out.String())
	}
}

func TestWhoami_VerifiesStoredSession(t *testing.T) {
	fresh := testAdmin
	fresh.Name = "Ada Lovelace"

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantToken bool
	}{
		{"valid", ok(map[string]any{"user": fresh}), true},
		{"unauthorized", errorResponse(http.StatusUnauthorized, "Token expired"), false},
		{"rejected", func(w http.ResponseWriter, r *http.Request) {
			jsonResponse(w, http.StatusOK, map[string]any{"success": false})
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			srv.handle("GET /api/auth/verify", tt.handler)
			te := newTestEnv(t, srv, "")
			te.signIn(t)

			err := te.run("whoami")
			if srv.count(http.MethodGet, "/api/auth/verify") != 1 {
				t.Errorf("verify calls = %d, want 1", srv.count(http.MethodGet, "/api/auth/verify"))
			}
			if (te.Store.Token() != "") != tt.wantToken {
				t.Fatalf("token present = %v, want %v", te.Store.Token() != "", tt.wantToken)
			}

			if tt.wantToken {
				if err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(te.out.String(), "Ada Lovelace") {
					t.Errorf("profile not refreshed:\n%s", te.out.String())
				}
				if len(te.rec.All()) != 0 {
					t.Errorf("notifications = %+v", te.rec.All())
				}
				return
			}

			if err == nil || !Silent(err) {
				t.Fatalf("error = %v, want an already reported error", err)
			}
			if te.out.Len() != 0 {
				t.Errorf("a rejected session must not be printed:\n%s", te.out.String())
			}
			if n := te.rec.All(); len(n) != 1 || n[0].Type != notify.TypeError {
				t.Errorf("notifications = %+v, want one error", n)
			}
			if n := strings.Count(te.errOut.String(), "Run 'cmsadmin login'"); n != 1 {
				t.Errorf("login hints = %d, want 1:\n%s", n, te.errOut.String())
			}

			// The cleared session is persisted: a reload finds nothing.
			if found, err := te.Store.Load(context.Background()); err != nil || found {
				t.Errorf("Load() = %v, %v; want no session", found, err)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErr   error
		wantToken bool
	}{
		{"valid", ok(map[string]any{"user": testAdmin}), nil, true},
		{"rejected", func(w http.ResponseWriter, r *http.Request) {
			jsonResponse(w, http.StatusOK, map[string]any{"success": false})
		}, session.ErrRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			srv.handle("GET /api/auth/verify", tt.handler)
			te := newTestEnv(t, srv, "")
			te.signIn(t)

			err := te.run("verify")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if (te.Store.Token() != "") != tt.wantToken {
				t.Errorf("token present = %v, want %v", te.Store.Token() != "", tt.wantToken)
			}
		})
	}
}

func TestProfilePassword_Prompts(t *testing.T) {
	srv := newMockServer(t)
	var body model.PasswordChange
	srv.handle("PUT /api/auth/change-password", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		ok(nil)(w, r)
	})

	te := newTestEnv(t, srv, "old-pw\nnew-pw\nnew-pw\n")
	te.signIn(t)

	if err := te.run("profile", "password"); err != nil {
		t.Fatal(err)
	}
	if body.CurrentPassword != "old-pw" || body.NewPassword != "new-pw" {
		t.Errorf("body = %+v", body)
	}
}

func TestProfileUpdate_RequiresField(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("profile", "update"); err == nil {
		t.Error("update without fields should fail")
	}
}

func TestExpiryLine(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if got := expiryLine(now.Add(3*time.Hour), now); !strings.HasPrefix(got, "Token expires 3 hours from now") {
		t.Errorf("future = %q", got)
	}
	if got := expiryLine(now.Add(-2*time.Hour), now); !strings.HasPrefix(got, "Token expired 2 hours ago") {
		t.Errorf("past = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if displayName(nil) != "unknown user" {
		t.Error("nil profile")
	}
	if displayName(&model.Profile{Email: "x@example.com"}) != "x@example.com" {
		t.Error("email fallback")
	}
	if displayName(&testAdmin) != "Ada Admin" {
		t.Error("name preferred")
	}
}

func TestDashboard(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/admin/dashboard", ok(map[string]any{
		"users":    map[string]any{"total": 4},
		"contacts": map[string]any{"new": 2},
	}))

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("dashboard"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"users.total", "contacts.new"} {
		if !strings.Contains(te.out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, te.out.String())
		}
	}
}

func TestDashboard_RequiresSession(t *testing.T) {
	srv := newMockServer(t)
	te := newTestEnv(t, srv, "")

	if err := te.run("dashboard"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("error = %v, want errNotLoggedIn", err)
	}
	if srv.count(http.MethodGet, "/api/admin/dashboard") != 0 {
		t.Error("dashboard called without a session")
	}
}
