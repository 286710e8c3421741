package templates

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/kayz/cue/internal/apperr"
)

//go:embed prebuilt/*.json
var prebuiltFS embed.FS

// maxTemplateBytes caps a single fetched template file.
const maxTemplateBytes = 1 << 20

// Fetcher returns the raw bytes of one named template file.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FSFetcher reads template files from a filesystem.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.FS, name)
}

// Embedded returns the prebuilt templates compiled into the binary.
func Embedded() Fetcher {
	sub, err := fs.Sub(prebuiltFS, "prebuilt")
	if err != nil {
		panic(err)
	}
	return FSFetcher{FS: sub}
}

// HTTPFetcher fetches "<BaseURL>/<name>".
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := strings.TrimRight(f.BaseURL, "/") + "/" + name
	return getBody(ctx, f.Client, url)
}

func getBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperr.Network("fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Network("fetch "+url, fmt.Errorf("status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes+1))
	if err != nil {
		return nil, apperr.Network("read "+url, err)
	}
	if len(data) > maxTemplateBytes {
		return nil, apperr.Network("read "+url, fmt.Errorf("body exceeds %d bytes", maxTemplateBytes))
	}
	return data, nil
}
