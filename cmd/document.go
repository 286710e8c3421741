package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/promptbuild"
)

// withApp opens the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func viewFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "view", "plain", "View to use: json, markdown (md) or plain (text)")
}

func resolveView(name string) (promptbuild.ViewKind, error) {
	kind, ok := promptbuild.ParseViewKind(name)
	if !ok {
		return "", &apperr.ValidationError{Field: "view", Reason: fmt.Sprintf("unknown view %q", name)}
	}
	return kind, nil
}

func printView(w io.Writer, views promptbuild.Views, kind promptbuild.ViewKind) {
	text := views.Get(kind)
	fmt.Fprint(w, text)
	if text != "" && text[len(text)-1] != '\n' {
		fmt.Fprintln(w)
	}
}

func newSectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Add or remove sections of the draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <title> <content>",
		Short: "Append a section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.dispatch(ctx, promptbuild.AddSection{Title: args[0], Content: args[1]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added section %d: %s\n", len(a.editor.Document().Sections), args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <position>",
		Aliases: []string{"remove"},
		Short:   "Remove the section at a 1-based position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.dispatch(ctx, promptbuild.RemoveSection{Index: idx}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed section %d\n", idx+1)
				return nil
			})
		},
	})
	return cmd
}

func newRuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Add or remove rules of the draft",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: "Append a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.dispatch(ctx, promptbuild.AddRule{Text: args[0]}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d\n", len(a.editor.Document().Rules))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <position>",
		Aliases: []string{"remove"},
		Short:   "Remove the rule at a 1-based position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.dispatch(ctx, promptbuild.RemoveRule{Index: idx}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %d\n", idx+1)
				return nil
			})
		},
	})
	return cmd
}

func newShowCommand() *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the draft in one view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				printView(cmd.OutOrStdout(), a.editor.Views(), kind)
				return nil
			})
		},
	}
	viewFlag(cmd, &view)
	return cmd
}

func newNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Clear the draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if !a.editor.Document().IsEmpty() && !confirm(cmd, "Discard the current draft?") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
				if err := a.dispatch(ctx, promptbuild.Replace{}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Started a new draft")
				return nil
			})
		},
	}
}

func newComposeCommand() *cobra.Command {
	var (
		from   string
		output string
		view   string
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Load a YAML or JSON document file into the draft, or write the draft to one",
		Long: `compose --from reads a document file with "sections" (title, content)
and "rules" lists and makes it the draft. compose --output writes the draft
as a document file (JSON for .json, YAML otherwise).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" && output == "" {
				return apperr.Required("--from or --output")
			}
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if from != "" {
					doc, err := promptbuild.LoadDocumentFile(from)
					if err != nil {
						return err
					}
					if err := a.dispatch(ctx, promptbuild.Replace{Document: doc}); err != nil {
						return err
					}
					if output == "" {
						printView(cmd.OutOrStdout(), a.editor.Views(), kind)
					}
				}
				if output != "" {
					if err := promptbuild.WriteDocumentFile(output, a.editor.Document()); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "Document file to load")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the draft to this document file")
	viewFlag(cmd, &view)
	return cmd
}
