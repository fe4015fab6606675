package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/rule"
)

type SuggestArgs struct {
	*InputArgs

	App    string
	Search string
	Limit  int
}

func NewSuggestCmd(rootArgs *RootArgs) *cobra.Command {
	sa := &SuggestArgs{InputArgs: &InputArgs{RootArgs: rootArgs}}

	cmd := &cobra.Command{
		Use:   "suggest [-]",
		Short: "Rank the configured rules for the input",
		Args:  cobra.MatchAll(cobra.MaximumNArgs(1), stdinOnly),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := sa.Read(cmd, args)
			if err != nil {
				return err
			}

			cfg, _, err := loadConfig(sa.ConfigPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			rules := rule.Search(cfg.Rules, sa.Search)

			limit := cfg.Limit()
			if sa.Limit >= 0 {
				limit = sa.Limit
			}

			suggestions := rule.Suggest(rules, rule.NewMatchContext(input, sa.App), limit)

			return writeSuggestions(cmd.OutOrStdout(), suggestions)
		},
	}

	sa.AddFlags(cmd)
	cmd.Flags().StringVar(&sa.App, "app", "", "Name of the application the text was copied from")
	cmd.Flags().StringVar(&sa.Search, "search", "", "Only rank rules that fuzzy-match this query")
	cmd.Flags().IntVar(&sa.Limit, "limit", -1, "Maximum number of suggestions, defaults to ui.suggestions")

	return cmd
}

func writeSuggestions(w io.Writer, suggestions []rule.Suggestion) error {
	if len(suggestions) == 0 {
		mustN(fmt.Fprintln(w, "No rules match."))

		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	mustN(fmt.Fprintln(tw, "SCORE\tID\tACTION\tNAME"))

	for _, s := range suggestions {
		mustN(fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Score, s.Rule.ID, actionLabel(s.Rule), s.Rule.Name))
	}

	return tw.Flush()
}

func actionLabel(r *rule.Rule) string {
	if _, ok := r.Action().(rule.Remote); ok {
		return "llm (disabled)"
	}

	return r.ActionName()
}
