package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/internal/lines"
	"github.com/macropower/pasteflow/pkg/detect"
)

func NewDetectCmd(rootArgs *RootArgs) *cobra.Command {
	ia := &InputArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "detect [-]",
		Short: "Print the content types of the input",
		Args:  cobra.MatchAll(cobra.MaximumNArgs(1), stdinOnly),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := ia.Read(cmd, args)
			if err != nil {
				return err
			}

			types := detect.Strings(detect.Detect(input))

			mustN(fmt.Fprintln(cmd.OutOrStdout(), strings.Join(types, ", ")))
			mustN(fmt.Fprintln(cmd.OutOrStdout(), sizeSummary(input)))

			return nil
		},
	}
	ia.AddFlags(cmd)

	return cmd
}

// detectSummary describes text in one line, e.g. "text, json (7 B, 1 line)".
func detectSummary(text string) string {
	types := detect.Strings(detect.Detect(text))

	return fmt.Sprintf("%s (%s)", strings.Join(types, ", "), sizeSummary(text))
}

func sizeSummary(text string) string {
	n := len(lines.Split(text))

	unit := "lines"
	if n == 1 {
		unit = "line"
	}

	return fmt.Sprintf("%s, %d %s", humanize.Bytes(uint64(len(text))), n, unit)
}
