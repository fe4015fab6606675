package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/diff"
	"github.com/macropower/pasteflow/pkg/highlight"
	"github.com/macropower/pasteflow/pkg/transform"
)

type ApplyArgs struct {
	*InputArgs

	Copy bool
	Diff bool
}

func NewApplyCmd(rootArgs *RootArgs) *cobra.Command {
	aa := &ApplyArgs{InputArgs: &InputArgs{RootArgs: rootArgs}}

	kinds := make([]cobra.Completion, 0, len(transform.Kinds))
	for _, k := range transform.Kinds {
		kinds = append(kinds, cobra.CompletionWithDesc(k.String(), k.Description()))
	}

	cmd := &cobra.Command{
		Use:       "apply KIND [-]",
		Short:     "Apply one transform to the input",
		Args:      cobra.MatchAll(cobra.RangeArgs(1, 2), kindThenStdin),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := transform.ParseKind(args[0])
			if err != nil {
				return err
			}

			input, err := aa.Read(cmd, args[1:])
			if err != nil {
				return err
			}

			out, err := transform.Apply(kind, input)
			if err != nil {
				return fmt.Errorf("apply %s: %w", kind, err)
			}

			w := cmd.OutOrStdout()

			if aa.Diff {
				err = outputHighlighter(w, highlight.DefaultTheme).Render(w, diff.Unified(input, out), highlight.LangDiff)
			} else {
				err = outputHighlighter(w, highlight.DefaultTheme).Render(w, out, langOf(out))
				if err == nil && out != "" && out[len(out)-1] != '\n' {
					mustN(fmt.Fprintln(w))
				}
			}
			if err != nil {
				return err
			}

			if aa.Copy {
				err = aa.Clipboard.Write(out)
				if err != nil {
					return fmt.Errorf("write clipboard: %w", err)
				}
			}

			return nil
		},
	}

	aa.AddFlags(cmd)
	cmd.Flags().BoolVar(&aa.Copy, "copy", false, "Copy the result to the clipboard")
	cmd.Flags().BoolVar(&aa.Diff, "diff", false, "Print a diff instead of the result")

	return cmd
}

func kindThenStdin(cmd *cobra.Command, args []string) error {
	return stdinOnly(cmd, args[1:])
}
