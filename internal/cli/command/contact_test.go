package command

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cmsadmin/internal/cli/model"
)

var testContacts = model.ContactList{
	Contacts: []model.Contact{
		{ID: "c1", Name: "Grace", Email: "grace@example.com", Subject: "Hello", Status: model.ContactNew, CreatedAt: time.Now()},
		{ID: "c2", Name: "Linus", Email: "linus@example.com", Subject: "Patch", Status: model.ContactRead, CreatedAt: time.Now()},
	},
	Pagination: model.Pagination{Page: 1, Limit: 20, Total: 2, Pages: 1},
}

func TestContactCommand(t *testing.T) {
	cmd := ContactCommand()
	if cmd.Name != "contact" {
		t.Errorf("Name = %q", cmd.Name)
	}

	subs := make(map[string]*cli.Command)
	for _, sub := range cmd.Subcommands {
		subs[sub.Name] = sub
	}
	for _, name := range []string{"list", "get", "update", "delete", "bulk", "stats", "submit"} {
		if subs[name] == nil || subs[name].Action == nil {
			t.Errorf("missing subcommand or action: %s", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range subs["list"].Flags {
		flags[f.Names()[0]] = true
	}
	for _, want := range []string{"page", "limit", "search", "sort", "status"} {
		if !flags[want] {
			t.Errorf("list should have --%s", want)
		}
	}
}

func TestContactList(t *testing.T) {
	srv := newMockServer(t)
	var query string
	srv.handle("GET /api/contact", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		ok(testContacts)(w, r)
	})

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("contact", "list", "--status", "new", "--limit", "5", "-q", "grace"); err != nil {
		t.Fatal(err)
	}
	if query != "limit=5&page=1&search=grace&status=new" {
		t.Errorf("query = %q", query)
	}
	out := te.out.String()
	for _, want := range []string{"grace@example.com", "STATUS", "Page 1 of 1 (2 contacts total)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestContactList_JSON(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/contact", ok(testContacts))

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("-o", "json", "contact", "list"); err != nil {
		t.Fatal(err)
	}
	var got model.ContactList
	if err := json.Unmarshal(te.out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, te.out.String())
	}
	if len(got.Contacts) != 2 || got.Pagination.Total != 2 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestContactList_Empty(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/contact", ok(model.ContactList{}))

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("contact", "list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(te.out.String(), "No contacts found.") {
		t.Errorf("output = %q", te.out.String())
	}
}

func TestContact_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad status filter", []string{"contact", "list", "--status", "spam"}, "invalid contact status"},
		{"get without id", []string{"contact", "get"}, "contact ID required"},
		{"get dot segment", []string{"contact", "get", ".."}, `invalid contact ID ".."`},
		{"delete dot segment", []string{"contact", "delete", "--yes", "."}, `invalid contact ID "."`},
		{"update without fields", []string{"contact", "update", "c1"}, "nothing to update"},
		{"bulk bad action", []string{"contact", "bulk", "purge", "c1"}, "invalid contact action"},
		{"bulk without ids", []string{"contact", "bulk", "archive"}, "at least one contact ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			te := newTestEnv(t, srv, "")
			te.signIn(t)

			err := te.run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
			if te.errors() != 0 {
				t.Error("argument errors are returned, not notified")
			}
			srv.mu.Lock()
			defer srv.mu.Unlock()
			if len(srv.requests) != 0 {
				t.Errorf("requests sent = %d, want 0", len(srv.requests))
			}
		})
	}
}

func TestContactUpdate(t *testing.T) {
	srv := newMockServer(t)
	var body model.ContactUpdate
	srv.handle("PUT /api/contact/c1", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		ok(model.Contact{ID: "c1", Status: body.Status, Notes: body.Notes})(w, r)
	})

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("contact", "update", "c1", "--status", "replied", "--notes", "called back"); err != nil {
		t.Fatal(err)
	}
	if body.Status != model.ContactReplied || body.Notes != "called back" {
		t.Errorf("body = %+v", body)
	}
	if te.successes() != 1 {
		t.Errorf("successes = %d", te.successes())
	}
}

func TestContactDelete_Confirmation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		args     []string
		wantSent int
	}{
		{"declined", "n\n", []string{"contact", "delete", "c1"}, 0},
		{"accepted", "yes\n", []string{"contact", "delete", "c1"}, 1},
		{"--yes", "", []string{"contact", "delete", "--yes", "c1"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newMockServer(t)
			srv.handle("DELETE /api/contact/c1", ok(nil))
			te := newTestEnv(t, srv, tt.input)
			te.signIn(t)

			if err := te.run(tt.args...); err != nil {
				t.Fatal(err)
			}
			if got := srv.count(http.MethodDelete, "/api/contact/c1"); got != tt.wantSent {
				t.Errorf("DELETE sent %d times, want %d", got, tt.wantSent)
			}
		})
	}
}

func TestContactBulk(t *testing.T) {
	srv := newMockServer(t)
	var body model.BulkRequest
	srv.handle("POST /api/contact/bulk-action", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		ok(model.BulkResult{Matched: 2, Modified: 2})(w, r)
	})

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("contact", "bulk", "markRead", "c1", "c2"); err != nil {
		t.Fatal(err)
	}
	if body.Action != "markRead" || len(body.IDs) != 2 {
		t.Errorf("body = %+v", body)
	}
	all := te.rec.All()
	if len(all) != 1 || !strings.Contains(all[0].Message, "2 of 2 updated") {
		t.Errorf("notifications = %+v", all)
	}
}

func TestContactSubmit_NoSessionNeeded(t *testing.T) {
	srv := newMockServer(t)
	var auth string
	srv.handle("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		ok(model.Contact{ID: "c9"})(w, r)
	})

	te := newTestEnv(t, srv, "")
	err := te.run("contact", "submit",
		"--name", "Grace", "--email", "grace@example.com",
		"--subject", "Hi", "-m", "Hello there")
	if err != nil {
		t.Fatal(err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want none", auth)
	}
}

func TestContactStats(t *testing.T) {
	srv := newMockServer(t)
	srv.handle("GET /api/contact/stats", ok(map[string]any{"total": 12, "byStatus": map[string]any{"new": 3}}))

	te := newTestEnv(t, srv, "")
	te.signIn(t)

	if err := te.run("contact", "stats"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(te.out.String(), "byStatus.new") {
		t.Errorf("nested stats should be flattened:\n%s", te.out.String())
	}
}
