package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/config"
	"github.com/kayz/cue/internal/library"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/persist"
	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/security"
	"github.com/kayz/cue/internal/share"
	"github.com/kayz/cue/internal/templates"
)

const templateFetchTimeout = 30 * time.Second

// app holds the values one invocation works with. The catalog is loaded on
// first use since only the template commands and the UIs need it.
type app struct {
	cfg     *config.Config
	store   *persist.Store
	editor  *promptbuild.Editor
	library *library.Library
	harness *ai.Harness
	guard   *security.URLGuard

	catalog *templates.Catalog
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logLevel == "" && cfg.Logging.Level != "" {
		if err := applyLogLevel(cfg.Logging.Level); err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
	}
	if cfg.Logging.File != "" {
		if err := logger.SetOutputFile(cfg.ResolvePath(cfg.Logging.File)); err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
	}

	dbPath := cfg.ResolvePath(cfg.Storage.Path)
	store, err := persist.NewStore(dbPath, persist.WithCache(cfg.Storage.CacheMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var draft promptbuild.Document
	if _, err := persist.GetJSON(ctx, store, persist.KeyDraft, &draft); err != nil {
		store.Close()
		return nil, fmt.Errorf("read draft: %w", err)
	}

	factory, err := ai.NewProviderFactory(cfg.AI, nil)
	if err != nil {
		store.Close()
		return nil, err
	}
	auditor := ai.NewAuditor(cfg.Audit, cfg.ResolvePath(cfg.Audit.Dir))

	a := &app{
		cfg:     cfg,
		store:   store,
		editor:  promptbuild.NewEditor(draft),
		library: library.New(store),
		harness: ai.NewHarness(store, factory, ai.WithTimeout(cfg.AI.Timeout), ai.WithAuditor(auditor)),
		guard:   security.NewURLGuard(cfg.Security.EnableSSRFProtection),
	}
	logger.Debug("[App] config=%s store=%s draft: %d sections, %d rules",
		cfg.Path(), dbPath, len(draft.Sections), len(draft.Rules))
	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// saveDraft persists the editor's document so the next invocation resumes it.
func (a *app) saveDraft(ctx context.Context) error {
	if err := persist.SetJSON(ctx, a.store, persist.KeyDraft, a.editor.Document()); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// dispatch applies act to the draft and saves it.
func (a *app) dispatch(ctx context.Context, act promptbuild.Action) error {
	if err := a.editor.Dispatch(act); err != nil {
		return err
	}
	return a.saveDraft(ctx)
}

// templates loads the prebuilt and community templates once.
func (a *app) templates(ctx context.Context) (*templates.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}

	client := a.guard.HTTPClient(templateFetchTimeout)
	c := templates.New(a.store,
		templates.WithHTTPClient(client),
		templates.WithURLCheck(a.guard.Check),
	)

	var fetcher templates.Fetcher = templates.Embedded()
	if base := a.cfg.Templates.PrebuiltURL; base != "" {
		if err := a.guard.Check(base); err != nil {
			return nil, fmt.Errorf("templates.prebuilt_url: %w", err)
		}
		fetcher = templates.HTTPFetcher{BaseURL: base, Client: client}
	}

	names := a.cfg.Templates.Prebuilt
	if len(names) == 0 {
		names = config.DefaultPrebuiltTemplates
	}
	if _, err := c.LoadPrebuilt(ctx, fetcher, names); err != nil {
		return nil, err
	}
	if err := c.LoadCommunity(ctx); err != nil {
		return nil, err
	}

	a.catalog = c
	return c, nil
}

func (a *app) slack() *share.Slack {
	return &share.Slack{WebhookURL: a.cfg.Share.SlackWebhookURL}
}
