package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/debug"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/persist"
)

// EnvAPIKey overrides the stored credential for the current process.
const EnvAPIKey = "OPENROUTER_API_KEY"

// TestRequest is one prompt test.
type TestRequest struct {
	Model  string
	Prompt string
	// View and Digest only feed the audit log.
	View   string
	Digest string
}

// Harness holds the credential and model list and runs prompt tests.
type Harness struct {
	kv      persist.KV
	factory ProviderFactory
	timeout time.Duration
	audit   *Auditor

	mu        sync.RWMutex
	key       string
	keyLoaded bool
	models    []Model
	last      string

	inflight atomic.Int32
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithTimeout bounds each outbound request. Zero disables the bound.
func WithTimeout(d time.Duration) HarnessOption {
	return func(h *Harness) { h.timeout = d }
}

// WithAuditor records every test run.
func WithAuditor(a *Auditor) HarnessOption {
	return func(h *Harness) { h.audit = a }
}

func NewHarness(kv persist.KV, factory ProviderFactory, opts ...HarnessOption) *Harness {
	h := &Harness{kv: kv, factory: factory}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Auditor returns the run auditor, or nil when auditing is off.
func (h *Harness) Auditor() *Auditor {
	return h.audit
}

// Credential returns the API key, loading it on first use.
func (h *Harness) Credential(ctx context.Context) (string, error) {
	h.mu.RLock()
	if h.keyLoaded {
		key := h.key
		h.mu.RUnlock()
		return key, nil
	}
	h.mu.RUnlock()

	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		data, ok, err := h.kv.Get(ctx, persist.KeyAPICredential)
		if err != nil {
			return "", fmt.Errorf("load api key: %w", err)
		}
		if ok {
			key = strings.TrimSpace(string(data))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.keyLoaded {
		h.key = key
		h.keyLoaded = true
	}
	return h.key, nil
}

// HasCredential reports whether an API key is available.
func (h *Harness) HasCredential(ctx context.Context) bool {
	key, err := h.Credential(ctx)
	return err == nil && key != ""
}

// SetCredential stores key and refreshes the model list. A failed refresh is
// only logged.
func (h *Harness) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Required("api key")
	}
	if err := h.kv.Set(ctx, persist.KeyAPICredential, []byte(key)); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}

	h.mu.Lock()
	h.key = key
	h.keyLoaded = true
	h.mu.Unlock()

	logger.Info("[AI] api key saved (%s)", logger.Redact(key))
	_, _ = h.FetchModels(ctx)
	return nil
}

// Models returns the last fetched model list.
func (h *Harness) Models() []Model {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Model(nil), h.models...)
}

// FetchModels replaces the model list. Without a credential it does nothing.
// On failure the previous list is kept and the error is logged and returned.
func (h *Harness) FetchModels(ctx context.Context) ([]Model, error) {
	key, err := h.Credential(ctx)
	if err != nil || key == "" {
		return h.Models(), err
	}

	p, err := h.factory(key)
	if err != nil {
		return h.Models(), err
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	models, err := p.ListModels(ctx)
	if err != nil {
		err = apperr.Network("fetch models", err)
		logger.Warn("[AI] failed to fetch models: %v", err)
		return h.Models(), err
	}

	h.mu.Lock()
	h.models = models
	h.mu.Unlock()

	logger.Debug("[AI] %s listed %d models", p.Name(), len(models))
	return append([]Model(nil), models...), nil
}

// Busy reports whether a test is in flight.
func (h *Harness) Busy() bool {
	return h.inflight.Load() > 0
}

// LastResult is the text of the most recent test: the model's reply or
// "Error: <message>". Concurrent tests are not serialized; the last to
// finish wins.
func (h *Harness) LastResult() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// TestPrompt sends req.Prompt as a single user message. Missing credential or
// model fails before any request is made.
func (h *Harness) TestPrompt(ctx context.Context, req TestRequest) (string, error) {
	key, err := h.Credential(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", &apperr.ValidationError{Field: "api key", Reason: "set your API key first"}
	}
	req.Model = strings.TrimSpace(req.Model)
	if req.Model == "" {
		return "", &apperr.ValidationError{Field: "model", Reason: "select a model"}
	}

	h.inflight.Add(1)
	defer h.inflight.Add(-1)

	p, err := h.factory(key)
	if err != nil {
		h.setLast("Error: " + err.Error())
		return "", err
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	debug.Log("[AI] POST chat completion model=%s key=%s prompt=%d chars", req.Model, logger.Redact(key), len(req.Prompt))
	start := time.Now()
	reply, err := p.Complete(ctx, req.Model, req.Prompt)
	took := time.Since(start)

	if aerr := h.audit.record(req, p.Name(), reply, err, took); aerr != nil {
		logger.Warn("[AI] audit write failed: %v", aerr)
	}

	if err != nil {
		err = apperr.Network("test prompt", err)
		h.setLast("Error: " + err.Error())
		logger.Warn("[AI] test failed after %s: %v", took.Round(time.Millisecond), err)
		return "", err
	}

	h.setLast(reply)
	logger.Info("[AI] test completed with %s in %s", req.Model, took.Round(time.Millisecond))
	return reply, nil
}

func (h *Harness) setLast(s string) {
	h.mu.Lock()
	h.last = s
	h.mu.Unlock()
}

func (h *Harness) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}
