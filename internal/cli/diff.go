package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/diff"
	"github.com/macropower/pasteflow/pkg/highlight"
)

func NewDiffCmd(_ *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "diff BEFORE AFTER",
		Short: "Print a unified diff of two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read before: %w", err)
			}

			after, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read after: %w", err)
			}

			stats := diff.Compute(string(before), string(after))
			slog.Debug("diff",
				slog.Int("added", stats.Added),
				slog.Int("removed", stats.Removed),
				slog.Int("hunks", stats.Hunks),
			)

			w := cmd.OutOrStdout()

			return outputHighlighter(w, highlight.DefaultTheme).
				Render(w, diff.Unified(string(before), string(after)), highlight.LangDiff)
		},
	}
}
