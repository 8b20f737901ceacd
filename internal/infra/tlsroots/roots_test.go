package tlsroots

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// serverCAFile starts a TLS server and writes its certificate as a PEM file.
func serverCAFile(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return srv, path
}

func TestClientConfig_TrustsCAFile(t *testing.T) {
	srv, caFile := serverCAFile(t)

	cfg, err := ClientConfig(caFile)
	if err != nil {
		t.Fatalf("ClientConfig() error = %v", err)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x", cfg.MinVersion)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: cfg}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET with custom CA failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if _, err := http.Get(srv.URL); err == nil {
		t.Error("default client should not trust the test server")
	}
}

func TestClientConfig_Empty(t *testing.T) {
	cfg, err := ClientConfig("")
	if err != nil || cfg != nil {
		t.Errorf("ClientConfig(\"\") = %v, %v; want nil, nil", cfg, err)
	}
}

func TestClientConfig_Errors(t *testing.T) {
	if _, err := ClientConfig(filepath.Join(t.TempDir(), "missing.pem")); err == nil {
		t.Error("missing file should fail")
	}

	junk := filepath.Join(t.TempDir(), "junk.pem")
	if err := os.WriteFile(junk, []byte("not a certificate"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ClientConfig(junk); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("junk file error = %v, want ErrNoCertsFound", err)
	}
}

func TestAddCertPEM(t *testing.T) {
	srv, _ := serverCAFile(t)
	cert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	key := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("ignored")})

	p := NewEmptyPool()
	if err := p.AddCertPEM(append(key, cert...)); err != nil {
		t.Fatalf("AddCertPEM() error = %v", err)
	}
	if p.Added() != 1 {
		t.Errorf("Added() = %d, want 1", p.Added())
	}

	bad := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
	if err := p.AddCertPEM(bad); err == nil {
		t.Error("invalid certificate should fail")
	}
	if err := p.AddCertPEM(nil); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("empty PEM error = %v", err)
	}
}
