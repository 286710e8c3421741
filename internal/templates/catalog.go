package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/persist"
	"github.com/kayz/cue/internal/promptbuild"
)

// DefaultFetchConcurrency bounds parallel prebuilt fetches.
const DefaultFetchConcurrency = 4

// Catalog owns both template lists and the current category filter.
type Catalog struct {
	kv         persist.KV
	httpClient *http.Client
	checkURL   func(string) error
	newID      func() string

	mu        sync.RWMutex
	prebuilt  []Template
	community []Template
	featured  int // index into prebuilt, -1 when none
	category  string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithHTTPClient sets the client used by ImportURL.
func WithHTTPClient(c *http.Client) Option {
	return func(cat *Catalog) { cat.httpClient = c }
}

// WithURLCheck installs a validator run on every import URL before fetching.
func WithURLCheck(fn func(string) error) Option {
	return func(cat *Catalog) { cat.checkURL = fn }
}

func New(kv persist.KV, opts ...Option) *Catalog {
	c := &Catalog{
		kv:         kv,
		httpClient: http.DefaultClient,
		newID:      newTimeOrderedID,
		featured:   -1,
		category:   CategoryAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// LoadPrebuilt fetches every named template concurrently. A template that
// fails to fetch or parse is logged and skipped. Results keep the order of
// names. It returns the number of templates loaded.
func (c *Catalog) LoadPrebuilt(ctx context.Context, f Fetcher, names []string) (int, error) {
	results := make([]*Template, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultFetchConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			data, err := f.Fetch(gctx, name)
			if err != nil {
				logger.Warn("[Templates] failed to load template %s: %v", name, err)
				return nil
			}
			var t Template
			if err := json.Unmarshal(data, &t); err != nil {
				logger.Warn("[Templates] failed to parse template %s: %v", name, err)
				return nil
			}
			t = t.clone()
			results[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	loaded := make([]Template, 0, len(names))
	featured := -1
	for _, t := range results {
		if t == nil {
			continue
		}
		if t.Featured && featured < 0 {
			featured = len(loaded)
		}
		loaded = append(loaded, *t)
	}

	c.mu.Lock()
	c.prebuilt = loaded
	c.featured = featured
	c.mu.Unlock()

	logger.Debug("[Templates] loaded %d/%d prebuilt templates", len(loaded), len(names))
	return len(loaded), nil
}

// LoadCommunity reads the community list from the store. An absent key
// leaves the list empty.
func (c *Catalog) LoadCommunity(ctx context.Context) error {
	var list []Template
	if _, err := persist.GetJSON(ctx, c.kv, persist.KeyCommunityTemplates, &list); err != nil {
		return fmt.Errorf("load community templates: %w", err)
	}
	for i := range list {
		list[i] = list[i].clone()
	}

	c.mu.Lock()
	c.community = list
	c.mu.Unlock()
	return nil
}

// Featured returns the first prebuilt template flagged featured.
func (c *Catalog) Featured() (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.featured < 0 || c.featured >= len(c.prebuilt) {
		return Template{}, false
	}
	return c.prebuilt[c.featured].clone(), true
}

// List returns a copy of every template in src.
func (c *Catalog) List(src Source) []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.listLocked(src))
}

func (c *Catalog) listLocked(src Source) []Template {
	if src == SourceCommunity {
		return c.community
	}
	return c.prebuilt
}

// SetCategory changes the current filter. Blank means CategoryAll.
func (c *Catalog) SetCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryAll
	}
	c.mu.Lock()
	c.category = category
	c.mu.Unlock()
}

func (c *Catalog) Category() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.category
}

// Filter sets the current category and returns the matching templates of src.
func (c *Catalog) Filter(category string, src Source) []Template {
	c.SetCategory(category)
	return c.Visible(src)
}

// Visible returns the templates of src that match the current category.
func (c *Catalog) Visible(src Source) []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := c.listLocked(src)
	if c.category == CategoryAll {
		return cloneAll(all)
	}
	out := make([]Template, 0, len(all))
	for _, t := range all {
		if t.Category == c.category {
			out = append(out, t.clone())
		}
	}
	return out
}

// Categories lists distinct categories, prebuilt first, in first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]Template{c.prebuilt, c.community} {
		for _, t := range list {
			if t.Category == "" || seen[t.Category] {
				continue
			}
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	return out
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a category for humans: "code-review" becomes "Code Review".
func DisplayName(category string) string {
	if category == CategoryAll {
		return "All"
	}
	return titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(category))
}

// Load finds id in src and returns its document. The download counter goes
// up in memory; community counters are persisted right away.
func (c *Catalog) Load(ctx context.Context, id string, src Source) (promptbuild.Document, Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := c.listLocked(src)
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return promptbuild.Document{}, Template{}, apperr.NotFound(string(src)+" template", id)
	}

	list[idx].Downloads++
	if src == SourceCommunity {
		if err := c.saveCommunityLocked(ctx); err != nil {
			list[idx].Downloads--
			return promptbuild.Document{}, Template{}, err
		}
	}

	t := list[idx].clone()
	logger.Info("[Templates] loaded %q from %s", t.Title, src)
	return t.Document(), t, nil
}

// ImportURL validates and fetches url, then imports the body.
func (c *Catalog) ImportURL(ctx context.Context, url string) (Template, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Template{}, apperr.Required("url")
	}
	if c.checkURL != nil {
		if err := c.checkURL(url); err != nil {
			return Template{}, &apperr.ValidationError{Field: "url", Reason: err.Error()}
		}
	}
	data, err := getBody(ctx, c.httpClient, url)
	if err != nil {
		return Template{}, err
	}
	return c.ImportJSON(ctx, data)
}

// ImportFile reads a template JSON file and imports it.
func (c *Catalog) ImportFile(ctx context.Context, path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template file: %w", err)
	}
	return c.ImportJSON(ctx, data)
}

// ImportJSON validates a raw template, fills in defaults and appends it to
// the community list. A malformed template is rejected whole.
func (c *Catalog) ImportJSON(ctx context.Context, data []byte) (Template, error) {
	t, err := parseImport(data)
	if err != nil {
		return Template{}, err
	}

	if strings.TrimSpace(t.ID) == "" {
		t.ID = "custom-" + c.newID()
	}
	if t.Author.Name == "" && t.Author.GitHubURL == "" {
		t.Author = Author{Name: "Community", GitHubURL: "#"}
	}
	t = t.clone()

	if err := c.appendCommunity(ctx, t); err != nil {
		return Template{}, err
	}
	logger.Info("[Templates] imported %q as %s", t.Title, t.ID)
	return t, nil
}

func parseImport(data []byte) (Template, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Template{}, &apperr.MalformedImportError{Err: err}
	}

	var missing []string
	for _, key := range []string{"title", "category"} {
		var s string
		if raw, ok := fields[key]; !ok || json.Unmarshal(raw, &s) != nil || strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	if raw, ok := fields["sections"]; !ok || string(raw) == "null" {
		missing = append(missing, "sections")
	}
	if len(missing) > 0 {
		return Template{}, &apperr.MalformedImportError{Missing: missing}
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, &apperr.MalformedImportError{Err: err}
	}
	if t.Rating < 0 || t.Rating > 5 {
		return Template{}, &apperr.MalformedImportError{Err: fmt.Errorf("rating %.1f out of range 0-5", t.Rating)}
	}
	if t.Downloads < 0 {
		t.Downloads = 0
	}
	doc, err := promptbuild.BuildDocument(t.Document())
	if err != nil {
		return Template{}, &apperr.MalformedImportError{Err: err}
	}
	t.Sections, t.Rules = doc.Sections, doc.Rules
	return t, nil
}

// Submit publishes doc as a new community template.
func (c *Catalog) Submit(ctx context.Context, f SubmitFields, doc promptbuild.Document) (Template, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Category = strings.TrimSpace(f.Category)
	f.Description = strings.TrimSpace(f.Description)
	f.AuthorName = strings.TrimSpace(f.AuthorName)
	f.AuthorURL = strings.TrimSpace(f.AuthorURL)

	switch {
	case f.Title == "":
		return Template{}, apperr.Required("title")
	case f.Category == "":
		return Template{}, apperr.Required("category")
	case f.Description == "":
		return Template{}, apperr.Required("description")
	case f.AuthorName == "":
		return Template{}, apperr.Required("author name")
	}
	if f.AuthorURL == "" {
		f.AuthorURL = "#"
	}

	doc = doc.Clone()
	t := Template{
		ID:          "community-" + c.newID(),
		Title:       f.Title,
		Category:    f.Category,
		Description: f.Description,
		Author:      Author{Name: f.AuthorName, GitHubURL: f.AuthorURL},
		Sections:    doc.Sections,
		Rules:       doc.Rules,
	}

	if err := c.appendCommunity(ctx, t); err != nil {
		return Template{}, err
	}
	logger.Info("[Templates] submitted %q as %s", t.Title, t.ID)
	return t.clone(), nil
}

func (c *Catalog) appendCommunity(ctx context.Context, t Template) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.community = append(c.community, t)
	if err := c.saveCommunityLocked(ctx); err != nil {
		c.community = c.community[:len(c.community)-1]
		return err
	}
	return nil
}

func (c *Catalog) saveCommunityLocked(ctx context.Context) error {
	list := c.community
	if list == nil {
		list = []Template{}
	}
	if err := persist.SetJSON(ctx, c.kv, persist.KeyCommunityTemplates, list); err != nil {
		return fmt.Errorf("save community templates: %w", err)
	}
	return nil
}

func cloneAll(list []Template) []Template {
	out := make([]Template, len(list))
	for i, t := range list {
		out[i] = t.clone()
	}
	return out
}
