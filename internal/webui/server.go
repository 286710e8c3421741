// Package webui serves the prompt builder as a local single-page app with a
// JSON API and a websocket that pushes view snapshots.
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/cron"
	"github.com/kayz/cue/internal/library"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/share"
	"github.com/kayz/cue/internal/templates"
)

const maxBodyBytes = 1 << 20

// Deps are the session objects the server drives.
type Deps struct {
	Editor  *promptbuild.Editor
	Library *library.Library
	Catalog *templates.Catalog
	Harness *ai.Harness
	// Slack is optional; without it the share endpoint reports a validation error.
	Slack *share.Slack
	// Jobs lists background jobs for /api/status. Optional.
	Jobs func() []*cron.Job
}

type Server struct {
	deps      Deps
	hub       *hub
	startedAt time.Time

	// mu serializes mutations the way a single UI thread would.
	mu          sync.Mutex
	unsubscribe func()
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:      deps,
		hub:       newHub(),
		startedAt: time.Now().UTC(),
	}
	s.unsubscribe = deps.Editor.Subscribe(func(snap promptbuild.Snapshot) {
		s.hub.broadcast(Event{Type: "snapshot", Data: snap})
	})
	return s
}

// Close disconnects websocket clients and stops observing the editor.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.closeAll()
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Get("/document", s.handleDocument)
		r.Delete("/document", s.handleClear)
		r.Put("/document/view", s.handleSetView)
		r.Post("/sections", s.handleAddSection)
		r.Delete("/sections/{index}", s.handleRemoveSection)
		r.Post("/rules", s.handleAddRule)
		r.Delete("/rules/{index}", s.handleRemoveRule)

		r.Get("/library", s.handleListLibrary)
		r.Post("/library", s.handleSaveLibrary)
		r.Post("/library/{index}/load", s.handleLoadLibrary)
		r.Delete("/library/{index}", s.handleDeleteLibrary)

		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/featured", s.handleFeatured)
		r.Get("/templates/categories", s.handleCategories)
		r.Post("/templates/import", s.handleImport)
		r.Post("/templates/submit", s.handleSubmit)
		r.Post("/templates/{source}/{id}/load", s.handleLoadTemplate)

		r.Put("/key", s.handleSetKey)
		r.Get("/models", s.handleModels)
		r.Post("/models/refresh", s.handleRefreshModels)
		r.Post("/test", s.handleTest)

		r.Post("/share/slack", s.handleShareSlack)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Trace("[WebUI] %s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.hub.serve(w, r, Event{Type: "snapshot", Data: s.deps.Editor.Snapshot()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []*cron.Job{}
	if s.deps.Jobs != nil {
		jobs = append(jobs, s.deps.Jobs()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"started_at":  s.startedAt.Format(time.RFC3339),
		"uptime_sec":  int(time.Since(s.startedAt).Seconds()),
		"has_api_key": s.deps.Harness.HasCredential(r.Context()),
		"busy":        s.deps.Harness.Busy(),
		"clients":     s.hub.count(),
		"jobs":        jobs,
	})
}

// ---------- document ----------

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Editor.Snapshot())
}

func (s *Server) dispatch(w http.ResponseWriter, a promptbuild.Action) {
	s.mu.Lock()
	err := s.deps.Editor.Dispatch(a)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Editor.Snapshot())
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.dispatch(w, promptbuild.Replace{})
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		View string `json:"view"`
	}](w, r)
	if !ok {
		return
	}
	kind, valid := promptbuild.ParseViewKind(req.View)
	if !valid {
		writeError(w, &apperr.ValidationError{Field: "view", Reason: "use json, markdown or plain"})
		return
	}
	s.deps.Editor.SetActive(kind)
	writeJSON(w, http.StatusOK, s.deps.Editor.Snapshot())
}

func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[promptbuild.Section](w, r)
	if !ok {
		return
	}
	s.dispatch(w, promptbuild.AddSection{Title: req.Title, Content: req.Content})
}

func (s *Server) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	s.dispatch(w, promptbuild.RemoveSection{Index: idx})
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Text string `json:"text"`
	}](w, r)
	if !ok {
		return
	}
	s.dispatch(w, promptbuild.AddRule{Text: req.Text})
}

func (s *Server) handleRemoveRule(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	s.dispatch(w, promptbuild.RemoveRule{Index: idx})
}

// ---------- library ----------

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Library.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []library.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSaveLibrary(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Name string `json:"name"`
	}](w, r)
	if !ok {
		return
	}
	entry, err := s.deps.Library.Save(r.Context(), req.Name, s.deps.Editor.Document())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleLoadLibrary(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.deps.Library.Load(r.Context(), idx)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Editor.Dispatch(promptbuild.Replace{Document: doc}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Editor.Snapshot())
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	idx, ok := indexParam(w, r)
	if !ok {
		return
	}
	removed, err := s.deps.Library.Delete(r.Context(), idx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

// ---------- templates ----------

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	src, err := templates.ParseSource(r.URL.Query().Get("source"))
	if err != nil {
		writeError(w, &apperr.ValidationError{Field: "source", Reason: err.Error()})
		return
	}
	var list []templates.Template
	if category, set := r.URL.Query()["category"]; set {
		list = s.deps.Catalog.Filter(category[0], src)
	} else {
		list = s.deps.Catalog.Visible(src)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":  s.deps.Catalog.Category(),
		"source":    src,
		"templates": list,
	})
}

func (s *Server) handleFeatured(w http.ResponseWriter, _ *http.Request) {
	t, ok := s.deps.Catalog.Featured()
	if !ok {
		writeError(w, apperr.NotFound("featured template", "-"))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	type category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := []category{{ID: templates.CategoryAll, Name: templates.DisplayName(templates.CategoryAll)}}
	for _, c := range s.deps.Catalog.Categories() {
		out = append(out, category{ID: c, Name: templates.DisplayName(c)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	src, err := templates.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, &apperr.ValidationError{Field: "source", Reason: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, tpl, err := s.deps.Catalog.Load(r.Context(), chi.URLParam(r, "id"), src)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Editor.Dispatch(promptbuild.Replace{Document: doc}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"template": tpl,
		"snapshot": s.deps.Editor.Snapshot(),
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		URL      string          `json:"url"`
		Template json.RawMessage `json:"template"`
	}](w, r)
	if !ok {
		return
	}

	var (
		tpl templates.Template
		err error
	)
	switch {
	case len(req.Template) > 0:
		tpl, err = s.deps.Catalog.ImportJSON(r.Context(), req.Template)
	default:
		tpl, err = s.deps.Catalog.ImportURL(r.Context(), req.URL)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[templates.SubmitFields](w, r)
	if !ok {
		return
	}
	tpl, err := s.deps.Catalog.Submit(r.Context(), req, s.deps.Editor.Document())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// ---------- api harness ----------

func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Key string `json:"key"`
	}](w, r)
	if !ok {
		return
	}
	if err := s.deps.Harness.SetCredential(r.Context(), req.Key); err != nil {
		writeError(w, err)
		return
	}
	models := s.deps.Harness.Models()
	s.hub.broadcast(Event{Type: "models", Data: models})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "models": models})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	models := s.deps.Harness.Models()
	if models == nil {
		models = []ai.Model{}
	}
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleRefreshModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.RefreshModels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// RefreshModels re-fetches the model list and pushes it to browsers.
func (s *Server) RefreshModels(ctx context.Context) ([]ai.Model, error) {
	models, err := s.deps.Harness.FetchModels(ctx)
	if err != nil {
		return nil, err
	}
	if models == nil {
		models = []ai.Model{}
	}
	s.hub.broadcast(Event{Type: "models", Data: models})
	return models, nil
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Model string `json:"model"`
		View  string `json:"view"`
	}](w, r)
	if !ok {
		return
	}

	snap := s.deps.Editor.Snapshot()
	kind := snap.Active
	if req.View != "" {
		k, valid := promptbuild.ParseViewKind(req.View)
		if !valid {
			writeError(w, &apperr.ValidationError{Field: "view", Reason: "use json, markdown or plain"})
			return
		}
		kind = k
	}
	text := snap.Views.Get(kind)

	s.hub.broadcast(Event{Type: "busy", Data: true})
	reply, err := s.deps.Harness.TestPrompt(r.Context(), ai.TestRequest{
		Model:  req.Model,
		Prompt: text,
		View:   string(kind),
		Digest: ai.Digest(snap.Views.JSON),
	})
	s.hub.broadcast(Event{Type: "busy", Data: false})
	s.hub.broadcast(Event{Type: "result", Data: s.deps.Harness.LastResult()})

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": reply})
}

func (s *Server) handleShareSlack(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Title string `json:"title"`
	}](w, r)
	if !ok {
		return
	}
	if s.deps.Slack == nil {
		writeError(w, &apperr.ValidationError{Field: "share.slack_webhook_url", Reason: "not configured"})
		return
	}
	snap := s.deps.Editor.Snapshot()
	if err := s.deps.Slack.Post(r.Context(), req.Title, string(snap.Active), snap.Views.Get(snap.Active)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------- helpers ----------

func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json body", Kind: "validation"})
		return v, false
	}
	return v, true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		writeError(w, &apperr.ValidationError{Field: "index", Reason: "must be an integer"})
		return 0, false
	}
	return idx, true
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case apperr.IsValidation(err):
		status, kind = http.StatusBadRequest, "validation"
	case apperr.IsNotFound(err):
		status, kind = http.StatusNotFound, "not_found"
	case apperr.IsMalformedImport(err):
		status, kind = http.StatusUnprocessableEntity, "malformed_import"
	case errors.Is(err, context.DeadlineExceeded):
		status, kind = http.StatusGatewayTimeout, "network"
	case apperr.IsNetwork(err):
		status, kind = http.StatusBadGateway, "network"
	}
	if status == http.StatusInternalServerError {
		logger.Error("[WebUI] %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
