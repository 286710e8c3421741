package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/promptbuild"
)

func newLibraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Save, list, load and delete named prompts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the draft under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				entry, err := a.library.Save(ctx, args[0], a.editor.Document())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%d sections, %d rules)\n",
					entry.Name, len(entry.Sections), len(entry.Rules))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved prompts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				entries, err := a.library.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved prompts.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tNAME\tSECTIONS\tRULES\tSAVED")
				for i, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, e.Name, len(e.Sections), len(e.Rules),
						e.SavedAt.Local().Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "load <position>",
		Short: "Replace the draft with a saved prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				doc, err := a.library.Load(ctx, idx)
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, promptbuild.Replace{Document: doc}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded prompt %d into the draft\n", idx+1)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <position>",
		Aliases: []string{"delete"},
		Short:   "Delete a saved prompt",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !confirm(cmd, fmt.Sprintf("Delete saved prompt %d?", idx+1)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				entry, err := a.library.Delete(ctx, idx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", entry.Name)
				return nil
			})
		},
	})
	return cmd
}
