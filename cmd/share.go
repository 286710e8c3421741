package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/share"
)

func newCopyCommand() *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy one view of the draft to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := share.Clipboard(a.editor.Views().Get(kind)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %s view to clipboard\n", kind)
				return nil
			})
		},
	}
	viewFlag(cmd, &view)
	return cmd
}

func newShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Send the draft somewhere",
	}

	var (
		title string
		view  string
	)
	slackCmd := &cobra.Command{
		Use:   "slack",
		Short: "Post the draft to the Slack webhook in share.slack_webhook_url",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.slack().Post(ctx, title, string(kind), a.editor.Views().Get(kind)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Posted to Slack")
				return nil
			})
		},
	}
	slackCmd.Flags().StringVarP(&title, "title", "t", "", "Message title")
	viewFlag(slackCmd, &view)
	cmd.AddCommand(slackCmd)
	return cmd
}
