package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/cron"
	"github.com/kayz/cue/internal/webui"
)

func TestStartWebJobsRefreshesBeforeStart(t *testing.T) {
	t.Setenv(ai.EnvAPIKey, "")
	prev := configPath
	configPath = filepath.Join(t.TempDir(), ".cue.yaml")
	t.Cleanup(func() { configPath = prev })
	if err := os.WriteFile(configPath, []byte("audit:\n  enabled: true\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	defer a.Close()

	server := webui.NewServer(webui.Deps{Editor: a.editor, Library: a.library, Harness: a.harness})
	defer server.Close()

	scheduler := cron.NewScheduler()
	if err := startWebJobs(ctx, a, server, scheduler); err != nil {
		t.Fatalf("start jobs: %v", err)
	}
	defer scheduler.Stop()

	// The first refresh has finished by the time startWebJobs returns, so
	// closing the app right after cannot race it.
	names := map[string]*cron.Job{}
	for _, job := range scheduler.ListJobs() {
		names[job.Name] = job
	}
	refresh := names["refresh-models"]
	if refresh == nil || refresh.Runs != 1 || refresh.LastRun == nil {
		t.Fatalf("refresh-models = %+v", refresh)
	}
	if names["audit-cleanup"] == nil {
		t.Fatalf("audit-cleanup not scheduled: %v", names)
	}
}
