package cmd

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/tui"
)

func newTUICommand() *cobra.Command {
	var (
		model string
		view  string
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Preview, copy and test the draft in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				a.editor.SetActive(kind)
				if model == "" && len(a.cfg.AI.Models) > 0 {
					model = a.cfg.AI.Models[0]
				}
				if model != "" && a.harness.HasCredential(ctx) {
					_, _ = a.harness.FetchModels(ctx)
				}

				m := tui.New(ctx, a.editor, a.harness, tui.WithModel(model))
				if err := tui.Run(m); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return err
				}
				return a.saveDraft(ctx)
			})
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to preselect")
	cmd.Flags().StringVar(&view, "view", string(promptbuild.ViewJSON), "View shown first")
	return cmd
}
