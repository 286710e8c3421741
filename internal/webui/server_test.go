package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/config"
	"github.com/kayz/cue/internal/cron"
	"github.com/kayz/cue/internal/library"
	"github.com/kayz/cue/internal/persist"
	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/templates"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) ListModels(context.Context) ([]ai.Model, error) {
	return []ai.Model{{ID: "stub/model"}}, nil
}

func (stubProvider) Complete(_ context.Context, model, prompt string) (string, error) {
	return model + " saw " + prompt, nil
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	t.Setenv(ai.EnvAPIKey, "")

	store, err := persist.NewStore(filepath.Join(t.TempDir(), "cue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	catalog := templates.New(store)
	if _, err := catalog.LoadPrebuilt(context.Background(), templates.Embedded(), config.DefaultPrebuiltTemplates); err != nil {
		t.Fatalf("load prebuilt: %v", err)
	}

	server := NewServer(Deps{
		Editor:  promptbuild.NewEditor(promptbuild.Document{}),
		Library: library.New(store),
		Catalog: catalog,
		Harness: ai.NewHarness(store, func(string) (ai.Provider, error) { return stubProvider{}, nil }),
	})
	t.Cleanup(server.Close)
	return server, server.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

func TestStatusEndpoint(t *testing.T) {
	_, handler := newTestServer(t)

	rr := do(t, handler, http.MethodGet, "/api/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") || !strings.Contains(rr.Body.String(), "\"jobs\":[]") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestStatusListsJobs(t *testing.T) {
	scheduler := cron.NewScheduler()
	if _, err := scheduler.AddFunc("refresh-models", "@every 1h", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add job: %v", err)
	}
	server, _ := newTestServer(t)
	server.deps.Jobs = scheduler.ListJobs

	rr := do(t, server.Handler(), http.MethodGet, "/api/status", nil)
	var status struct {
		Jobs []cron.Job `json:"jobs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(status.Jobs) != 1 || status.Jobs[0].Name != "refresh-models" || status.Jobs[0].Schedule != "@every 1h" {
		t.Fatalf("jobs = %+v", status.Jobs)
	}
}

func TestIndexPage(t *testing.T) {
	_, handler := newTestServer(t)
	rr := do(t, handler, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<title>cue</title>") {
		t.Fatalf("unexpected index: %d", rr.Code)
	}
}

// Template ids and categories come from imports, so they must never be
// spliced into inline handlers.
func TestIndexKeepsTemplateFieldsOutOfHandlers(t *testing.T) {
	_, handler := newTestServer(t)
	body := do(t, handler, http.MethodGet, "/", nil).Body.String()
	for _, bad := range []string{`onclick="useTemplate(`, `onclick="loadTemplates(`} {
		if strings.Contains(body, bad) {
			t.Fatalf("index still builds inline handler %q", bad)
		}
	}
	for _, want := range []string{`data-id="' + esc(t.id)`, `data-category="' + esc(c.id)`, `addEventListener('click'`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
}

func TestDocumentEditing(t *testing.T) {
	_, handler := newTestServer(t)

	rr := do(t, handler, http.MethodPost, "/api/sections", map[string]string{"title": "Goal", "content": "Write code"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add section: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, handler, http.MethodPost, "/api/rules", map[string]string{"text": "Be concise"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add rule: %d %s", rr.Code, rr.Body.String())
	}

	snap := decode[promptbuild.Snapshot](t, rr)
	if snap.Views.Plain != "Goal\n====\n\nWrite code\n\nRULES\n=====\n\n1. Be concise\n" {
		t.Fatalf("plain view = %q", snap.Views.Plain)
	}

	rr = do(t, handler, http.MethodPost, "/api/sections", map[string]string{"title": "", "content": "x"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", rr.Code)
	}
	if decode[errorBody](t, rr).Kind != "validation" {
		t.Fatalf("unexpected error body: %s", rr.Body.String())
	}

	rr = do(t, handler, http.MethodDelete, "/api/rules/5", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing rule, got %d", rr.Code)
	}
	rr = do(t, handler, http.MethodDelete, "/api/rules/x", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", rr.Code)
	}

	rr = do(t, handler, http.MethodPut, "/api/document/view", map[string]string{"view": "md"})
	if decode[promptbuild.Snapshot](t, rr).Active != promptbuild.ViewMarkdown {
		t.Fatalf("view not switched: %s", rr.Body.String())
	}

	rr = do(t, handler, http.MethodDelete, "/api/sections/0", nil)
	if got := decode[promptbuild.Snapshot](t, rr); len(got.Document.Sections) != 0 || got.Revision != 3 {
		t.Fatalf("unexpected snapshot after remove: %+v", got)
	}
}

func TestLibraryEndpoints(t *testing.T) {
	_, handler := newTestServer(t)
	do(t, handler, http.MethodPost, "/api/sections", map[string]string{"title": "T", "content": "C"})

	if rr := do(t, handler, http.MethodPost, "/api/library", map[string]string{"name": " "}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rr.Code)
	}
	if rr := do(t, handler, http.MethodPost, "/api/library", map[string]string{"name": "mine"}); rr.Code != http.StatusCreated {
		t.Fatalf("save: %d %s", rr.Code, rr.Body.String())
	}

	do(t, handler, http.MethodDelete, "/api/document", nil)
	rr := do(t, handler, http.MethodPost, "/api/library/0/load", nil)
	if got := decode[promptbuild.Snapshot](t, rr); len(got.Document.Sections) != 1 {
		t.Fatalf("load did not restore document: %+v", got)
	}

	if rr := do(t, handler, http.MethodPost, "/api/library/4/load", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr := do(t, handler, http.MethodDelete, "/api/library/0", nil); rr.Code != http.StatusOK {
		t.Fatalf("delete: %d", rr.Code)
	}
	list := decode[[]library.Entry](t, do(t, handler, http.MethodGet, "/api/library", nil))
	if len(list) != 0 {
		t.Fatalf("library not empty: %+v", list)
	}
}

func TestTemplateEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	type listing struct {
		Category  string               `json:"category"`
		Templates []templates.Template `json:"templates"`
	}
	got := decode[listing](t, do(t, handler, http.MethodGet, "/api/templates?category=coding", nil))
	if got.Category != "coding" || len(got.Templates) != 2 {
		t.Fatalf("coding listing = %+v", got)
	}
	got = decode[listing](t, do(t, handler, http.MethodGet, "/api/templates?category=all", nil))
	if len(got.Templates) != len(config.DefaultPrebuiltTemplates) {
		t.Fatalf("all listing = %d templates", len(got.Templates))
	}

	rr := do(t, handler, http.MethodPost, "/api/templates/prebuilt/code-review/load", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("load template: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, handler, http.MethodPost, "/api/templates/community/code-review/load", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 across namespaces, got %d", rr.Code)
	}

	rr = do(t, handler, http.MethodPost, "/api/templates/import", map[string]any{
		"template": map[string]any{"title": "No category", "sections": []any{}},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed import, got %d", rr.Code)
	}

	rr = do(t, handler, http.MethodPost, "/api/templates/submit", templates.SubmitFields{
		Title: "Mine", Category: "coding", Description: "d", AuthorName: "me",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rr.Code, rr.Body.String())
	}
	tpl := decode[templates.Template](t, rr)
	if len(tpl.Sections) != 3 {
		t.Fatalf("submitted template should copy the loaded document: %+v", tpl)
	}

	cats := decode[[]map[string]string](t, do(t, handler, http.MethodGet, "/api/templates/categories", nil))
	if cats[0]["id"] != "all" || cats[1]["name"] != "Marketing" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestTestEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	do(t, handler, http.MethodPost, "/api/rules", map[string]string{"text": "Be concise"})

	if rr := do(t, handler, http.MethodPost, "/api/test", map[string]string{"model": "stub/model"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a key, got %d", rr.Code)
	}

	rr := do(t, handler, http.MethodPut, "/api/key", map[string]string{"key": "sk-test-abcdefgh"})
	if rr.Code != http.StatusOK {
		t.Fatalf("set key: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, handler, http.MethodPost, "/api/test", map[string]string{"model": "stub/model", "view": "plain"})
	if rr.Code != http.StatusOK {
		t.Fatalf("test: %d %s", rr.Code, rr.Body.String())
	}
	want := "stub/model saw RULES\n=====\n\n1. Be concise\n"
	if decode[map[string]string](t, rr)["result"] != want {
		t.Fatalf("unexpected result: %s", rr.Body.String())
	}

	if rr := do(t, handler, http.MethodPost, "/api/share/slack", map[string]string{"title": "x"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without slack config, got %d", rr.Code)
	}
}

func TestWebsocketPushesSnapshots(t *testing.T) {
	_, handler := newTestServer(t)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type string               `json:"type"`
		Data promptbuild.Snapshot `json:"data"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.Type != "snapshot" || first.Data.Revision != 0 {
		t.Fatalf("unexpected first event: %+v", first)
	}

	resp, err := http.Post(srv.URL+"/api/rules", "application/json", strings.NewReader(`{"text":"pushed"}`))
	if err != nil {
		t.Fatalf("post rule: %v", err)
	}
	resp.Body.Close()

	var next struct {
		Type string               `json:"type"`
		Data promptbuild.Snapshot `json:"data"`
	}
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read pushed snapshot: %v", err)
	}
	if next.Type != "snapshot" || len(next.Data.Document.Rules) != 1 || next.Data.Document.Rules[0] != "pushed" {
		t.Fatalf("unexpected pushed event: %+v", next)
	}
}
