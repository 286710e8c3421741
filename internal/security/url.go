// Package security guards outbound fetches of user-supplied URLs.
package security

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

var privateCIDRs = mustCIDRs([]string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"100.64.0.0/10",
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
})

func mustCIDRs(cidrs []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			out = append(out, block)
		}
	}
	return out
}

// URLGuard decides whether a template import URL may be fetched.
type URLGuard struct {
	// Enabled turns the private-network checks on. When false only the
	// scheme and host are validated.
	Enabled bool
	// LookupIP resolves host names. Nil uses net.LookupIP.
	LookupIP func(host string) ([]net.IP, error)
}

// NewURLGuard returns a guard with the system resolver.
func NewURLGuard(enabled bool) *URLGuard {
	return &URLGuard{Enabled: enabled}
}

// ValidateFetchURL checks rawURL with private-network protection on.
func ValidateFetchURL(rawURL string) error {
	return NewURLGuard(true).Check(rawURL)
}

// Check validates a URL before an outbound fetch.
func (g *URLGuard) Check(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("empty url")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("unsupported url scheme: %s", parsed.Scheme)
	}

	host := strings.ToLower(strings.TrimSpace(parsed.Hostname()))
	if host == "" {
		return fmt.Errorf("url host is required")
	}
	if !g.Enabled {
		return nil
	}
	if isLocalHostname(host) {
		return fmt.Errorf("ssrf blocked: local hostname is not allowed")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateOrLocalIP(ip) {
			return fmt.Errorf("ssrf blocked: private or local ip is not allowed")
		}
		return nil
	}

	lookup := g.LookupIP
	if lookup == nil {
		lookup = net.LookupIP
	}
	addrs, err := lookup(host)
	if err != nil {
		return fmt.Errorf("failed to resolve host: %w", err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("host resolution returned no addresses")
	}
	for _, ip := range addrs {
		if isPrivateOrLocalIP(ip) {
			return fmt.Errorf("ssrf blocked: host resolves to private or local ip")
		}
	}
	return nil
}

// HTTPClient returns a client whose dialer refuses private addresses, so a
// host that resolves differently after Check still cannot reach them.
func (g *URLGuard) HTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if g.Enabled {
		dialer.Control = func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip != nil && isPrivateOrLocalIP(ip) {
				return fmt.Errorf("ssrf blocked: dial to %s refused", host)
			}
			return nil
		}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func isLocalHostname(host string) bool {
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		strings.HasSuffix(host, ".internal")
}

func isPrivateOrLocalIP(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
