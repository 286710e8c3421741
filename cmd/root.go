package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kayz/cue/internal/apperr"
	"github.com/kayz/cue/internal/logger"
)

var (
	logLevel    string
	autoApprove bool
	configPath  string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cue",
		Short: "Build structured prompts from sections and rules",
		Long: `cue assembles named sections and rules into a prompt and renders it
as JSON, Markdown or plain text.

The working draft persists between invocations:
  cue section add "Goal" "Write a haiku"
  cue rule add "Five-seven-five"
  cue show --view plain

Front ends:
  cue web     Local web UI with live preview
  cue tui     Terminal UI`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			return applyLogLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log", "",
		"Log level: trace, debug, info, warn, error, fatal, panic (default from config)")
	root.PersistentFlags().BoolVarP(&autoApprove, "yes", "y", false,
		"Automatically approve destructive operations without prompting")
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default .cue.yaml next to the executable, or $CUE_CONFIG)")

	root.AddCommand(
		newSectionCommand(),
		newRuleCommand(),
		newShowCommand(),
		newNewCommand(),
		newComposeCommand(),
		newLibraryCommand(),
		newTemplatesCommand(),
		newKeyCommand(),
		newModelsCommand(),
		newTestCommand(),
		newCopyCommand(),
		newShareCommand(),
		newWebCommand(),
		newTUICommand(),
		newVersionCommand(),
	)
	return root
}

func applyLogLevel(name string) error {
	level, err := logger.ParseLevel(name)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

// IsAutoApprove returns true if auto-approve mode is enabled globally
func IsAutoApprove() bool {
	return autoApprove
}

// confirm asks a yes/no question on the command's input unless --yes is set.
func confirm(cmd *cobra.Command, question string) bool {
	if IsAutoApprove() {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// parsePosition turns a 1-based position from the command line into an index.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, &apperr.ValidationError{Field: "position", Reason: fmt.Sprintf("%q is not a positive number", arg)}
	}
	return n - 1, nil
}

func Execute() {
	defer logger.Sync()
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
