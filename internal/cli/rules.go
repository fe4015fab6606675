package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/rule"
)

func NewRulesCmd(rootArgs *RootArgs) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(rootArgs.ConfigPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return writeRules(cmd.OutOrStdout(), rule.Search(cfg.Rules, search))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only list rules that fuzzy-match this query")
	cmd.AddCommand(NewAutoAcceptCmd(rootArgs))

	return cmd
}

func NewAutoAcceptCmd(rootArgs *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "auto-accept ID true|false",
		Short: "Set whether a rule is applied without confirmation",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return ruleCompletions(rootArgs, cmd), cobra.ShellCompDirectiveNoFileComp
			case 1:
				return []cobra.Completion{"true", "false"}, cobra.ShellCompDirectiveNoFileComp
			default:
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid argument %q: %w", args[1], err)
			}

			cfg, path, err := loadConfig(rootArgs.ConfigPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			next, err := config.NewStore(cfg).SetAutoAccept(id, enabled)
			if err != nil {
				return err
			}

			err = config.Save(path, next)
			if err != nil {
				return err
			}

			slog.Info("updated rule",
				slog.String("rule", id),
				slog.Bool("auto_accept", enabled),
				slog.String("path", path),
			)

			return nil
		},
	}
}

func ruleCompletions(rootArgs *RootArgs, cmd *cobra.Command) []cobra.Completion {
	cfg, _, err := loadConfig(rootArgs.ConfigPath, cmd.ErrOrStderr())
	if err != nil {
		return nil
	}

	completions := make([]cobra.Completion, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		completions = append(completions, cobra.CompletionWithDesc(r.ID, r.Name))
	}

	return completions
}

func writeRules(w io.Writer, rules []*rule.Rule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	mustN(fmt.Fprintln(tw, "ID\tACTION\tPINNED\tAUTO-ACCEPT\tNAME"))

	for _, r := range rules {
		mustN(fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\n", r.ID, actionLabel(r), r.Pinned, r.AutoAccept, r.Name))
	}

	return tw.Flush()
}
