package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/promptbuild"
	"github.com/kayz/cue/internal/templates"
)

func sourceFor(community bool) templates.Source {
	if community {
		return templates.SourceCommunity
	}
	return templates.SourcePrebuilt
}

func newTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Browse, use, import and submit prompt templates",
	}
	cmd.AddCommand(
		newTemplatesListCommand(),
		newTemplatesCategoriesCommand(),
		newTemplatesUseCommand(),
		newTemplatesImportCommand(),
		newTemplatesSubmitCommand(),
	)
	return cmd
}

func newTemplatesListCommand() *cobra.Command {
	var (
		category  string
		community bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates, optionally narrowed to one category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				catalog, err := a.templates(ctx)
				if err != nil {
					return err
				}
				src := sourceFor(community)
				list := catalog.Filter(category, src)

				out := cmd.OutOrStdout()
				if featured, ok := catalog.Featured(); ok && src == templates.SourcePrebuilt && catalog.Category() == templates.CategoryAll {
					fmt.Fprintf(out, "Featured: %s (%s)\n  %s\n\n", featured.Title, featured.ID, featured.Description)
				}
				if len(list) == 0 {
					fmt.Fprintf(out, "No %s templates in %s.\n", src, templates.DisplayName(catalog.Category()))
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tRATING\tDOWNLOADS\tAUTHOR")
				for _, t := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\n",
						t.ID, t.Title, templates.DisplayName(t.Category), t.Rating, t.Downloads, t.Author.Name)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", templates.CategoryAll, "Category to show")
	cmd.Flags().BoolVar(&community, "community", false, "List community templates instead of prebuilt ones")
	return cmd
}

func newTemplatesCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List template categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				catalog, err := a.templates(ctx)
				if err != nil {
					return err
				}
				for _, c := range catalog.Categories() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", c, templates.DisplayName(c))
				}
				return nil
			})
		},
	}
}

func newTemplatesUseCommand() *cobra.Command {
	var (
		community bool
		view      string
	)
	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Replace the draft with a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveView(view)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				catalog, err := a.templates(ctx)
				if err != nil {
					return err
				}
				doc, t, err := catalog.Load(ctx, args[0], sourceFor(community))
				if err != nil {
					return err
				}
				if err := a.dispatch(ctx, promptbuild.Replace{Document: doc}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded template %q\n\n", t.Title)
				printView(cmd.OutOrStdout(), a.editor.Views(), kind)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&community, "community", false, "Look the id up among community templates")
	viewFlag(cmd, &view)
	return cmd
}

func newTemplatesImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <url|file>",
		Short: "Import a template JSON from a URL or a local file into the community list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				catalog, err := a.templates(ctx)
				if err != nil {
					return err
				}

				var t templates.Template
				if isLocalFile(args[0]) {
					t, err = catalog.ImportFile(ctx, args[0])
				} else {
					t, err = catalog.ImportURL(ctx, args[0])
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as %s\n", t.Title, t.ID)
				return nil
			})
		},
	}
}

func isLocalFile(arg string) bool {
	if strings.Contains(arg, "://") {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

func newTemplatesSubmitCommand() *cobra.Command {
	var fields templates.SubmitFields
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Publish the draft as a community template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				catalog, err := a.templates(ctx)
				if err != nil {
					return err
				}
				t, err := catalog.Submit(ctx, fields, a.editor.Document())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted %q as %s\n", t.Title, t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&fields.Title, "title", "", "Template title")
	cmd.Flags().StringVar(&fields.Category, "category", "", "Template category")
	cmd.Flags().StringVar(&fields.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&fields.AuthorName, "author", "", "Author name")
	cmd.Flags().StringVar(&fields.AuthorURL, "github", "", "Author GitHub URL")
	return cmd
}
