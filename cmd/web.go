package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/cron"
	"github.com/kayz/cue/internal/logger"
	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/webui"
)

const auditCleanupSchedule = "0 3 * * *"

func newWebCommand() *cobra.Command {
	var (
		port int
		host string
	)
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Run the web UI with live preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			catalog, err := a.templates(ctx)
			if err != nil {
				return err
			}

			// The draft follows the browser session so the CLI sees the same document.
			unsubscribe := a.editor.Subscribe(func(promptbuild.Snapshot) {
				if err := a.saveDraft(context.Background()); err != nil {
					logger.Warn("[Web] %v", err)
				}
			})
			defer unsubscribe()

			scheduler := cron.NewScheduler()
			server := webui.NewServer(webui.Deps{
				Editor:  a.editor,
				Library: a.library,
				Catalog: catalog,
				Harness: a.harness,
				Slack:   a.slack(),
				Jobs:    scheduler.ListJobs,
			})
			defer server.Close()

			if err := startWebJobs(ctx, a, server, scheduler); err != nil {
				return err
			}
			defer scheduler.Stop()

			if !cmd.Flags().Changed("port") && a.cfg.Web.Port != 0 {
				port = a.cfg.Web.Port
			}
			httpServer := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", host, port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("[Web] listening on http://%s", httpServer.Addr)
				fmt.Fprintf(cmd.OutOrStdout(), "Web UI listening on http://%s\n", httpServer.Addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("web UI server: %w", err)
				}
			case <-ctx.Done():
			}

			logger.Info("[Web] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 18080, "Web UI listen port (default from web.port)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Web UI listen address")
	return cmd
}

// startWebJobs refreshes models once before starting scheduler, then on
// ai.refresh_schedule, and prunes the test audit daily. Refresh failures are
// only logged.
func startWebJobs(ctx context.Context, a *app, server *webui.Server, scheduler *cron.Scheduler) error {
	refresh := func(ctx context.Context) error {
		if !a.harness.HasCredential(ctx) {
			return nil
		}
		_, err := server.RefreshModels(ctx)
		return err
	}

	if spec := a.cfg.AI.RefreshSchedule; spec != "" {
		job, err := scheduler.AddFunc("refresh-models", spec, refresh)
		if err != nil {
			return fmt.Errorf("ai.refresh_schedule: %w", err)
		}
		if err := scheduler.RunNow(job.ID); err != nil {
			logger.Warn("[Web] initial model refresh failed: %v", err)
		}
	} else if err := refresh(ctx); err != nil {
		logger.Warn("[Web] initial model refresh failed: %v", err)
	}

	if auditor := a.harness.Auditor(); auditor != nil {
		if _, err := scheduler.AddFunc("audit-cleanup", auditCleanupSchedule, func(context.Context) error {
			return auditor.Cleanup()
		}); err != nil {
			return err
		}
	}

	scheduler.Start()
	return nil
}
