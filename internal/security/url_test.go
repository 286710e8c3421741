package security

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidateFetchURLBlocksLocalTargets(t *testing.T) {
	tests := []string{
		"http://127.0.0.1",
		"http://localhost:8080",
		"http://10.0.0.5",
		"http://192.168.1.10",
		"http://[::1]",
		"http://printer.local/t.json",
		"file:///etc/passwd",
		"",
	}

	for _, rawURL := range tests {
		if err := ValidateFetchURL(rawURL); err == nil {
			t.Fatalf("expected SSRF validation to block %q", rawURL)
		}
	}
}

func TestValidateFetchURLAllowsPublicIPLiteral(t *testing.T) {
	if err := ValidateFetchURL("https://93.184.216.34/templates/a.json"); err != nil {
		t.Fatalf("expected public IP literal to pass, got %v", err)
	}
}

func TestGuardChecksResolvedAddresses(t *testing.T) {
	g := &URLGuard{Enabled: true}

	g.LookupIP = func(string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("93.184.216.34"), net.ParseIP("10.1.2.3")}, nil
	}
	if err := g.Check("https://templates.example.com/x.json"); err == nil || !strings.Contains(err.Error(), "private") {
		t.Fatalf("expected private resolution to be blocked, got %v", err)
	}

	g.LookupIP = func(string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("93.184.216.34")}, nil
	}
	if err := g.Check("templates.example.com/x.json"); err != nil {
		t.Fatalf("expected public host to pass, got %v", err)
	}

	g.LookupIP = func(string) ([]net.IP, error) { return nil, errors.New("nxdomain") }
	if err := g.Check("https://nowhere.example.com"); err == nil {
		t.Fatalf("expected resolution failure to be reported")
	}
}

func TestGuardDisabledAllowsLocal(t *testing.T) {
	g := NewURLGuard(false)
	if err := g.Check("http://127.0.0.1:9000/t.json"); err != nil {
		t.Fatalf("disabled guard blocked local url: %v", err)
	}
	if err := g.Check("ftp://example.com/t.json"); err == nil {
		t.Fatalf("disabled guard must still reject unsupported schemes")
	}
}

func TestGuardHTTPClientRefusesPrivateDial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	blocked := NewURLGuard(true).HTTPClient(5 * time.Second)
	if _, err := blocked.Get(srv.URL); err == nil {
		t.Fatalf("expected loopback dial to be refused")
	}

	open := NewURLGuard(false).HTTPClient(5 * time.Second)
	resp, err := open.Get(srv.URL)
	if err != nil {
		t.Fatalf("unguarded client: %v", err)
	}
	resp.Body.Close()
}
