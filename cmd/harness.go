package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/ai"
	"github.com/kayz/cue/internal/logger"
)

func newKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the API key used for prompt tests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Fprint(cmd.OutOrStdout(), "API key: ")
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				key = line
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.harness.SetCredential(ctx, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved API key %s (%d models available)\n",
					logger.Redact(strings.TrimSpace(key)), len(a.harness.Models()))
				if os.Getenv(ai.EnvAPIKey) != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Note: %s is set and takes precedence in this shell\n", ai.EnvAPIKey)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				key, err := a.harness.Credential(ctx)
				if err != nil {
					return err
				}
				if key == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No API key set. Run: cue key set")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API key %s\n", logger.Redact(key))
				return nil
			})
		},
	})
	return cmd
}

func newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available for prompt tests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Fetch and print the model ids",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !a.harness.HasCredential(ctx) {
					fmt.Fprintln(cmd.OutOrStdout(), "No API key set. Run: cue key set")
					return nil
				}
				models, err := a.harness.FetchModels(ctx)
				if err != nil {
					return err
				}
				for _, m := range models {
					fmt.Fprintln(cmd.OutOrStdout(), m.ID)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch the model list and report how many models are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				models, err := a.harness.FetchModels(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d models available\n", len(models))
				return nil
			})
		},
	})
	return cmd
}

func newTestCommand() *cobra.Command {
	var (
		model string
		view  string
	)
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send the draft to a model and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				views := a.editor.Views()
				reply, err := a.harness.TestPrompt(ctx, ai.TestRequest{
					Model:  model,
					Prompt: views.Get(kind),
					View:   string(kind),
					Digest: ai.Digest(views.JSON),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id, as printed by cue models list")
	viewFlag(cmd, &view)
	return cmd
}
