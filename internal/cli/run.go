package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/highlight"
	"github.com/macropower/pasteflow/pkg/log"
	"github.com/macropower/pasteflow/pkg/panel"
)

const (
	cmdExamples = `  # Suggest a transform for the clipboard and preview it:
  pasteflow

  # Pick a rule interactively and copy the result:
  pasteflow -i --copy

  # Preview a specific rule as a diff:
  pasteflow --rule json_minify --diff

  # Read from stdin instead of the clipboard:
  cat data.json | pasteflow -

  # Rank rules as if the text was copied from a terminal:
  pasteflow suggest --app iTerm2

  # Keep previewing while editing the configuration:
  pasteflow --watch`
)

var ErrIncompatibleFlags = errors.New("incompatible flags")

type RunArgs struct {
	*InputArgs

	App         string
	Rule        string
	Limit       int
	Interactive bool
	Copy        bool
	Diff        bool
	Watch       bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		InputArgs: &InputArgs{RootArgs: rootArgs},
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	ra.InputArgs.AddFlags(cmd)
	cmd.Flags().StringVar(&ra.App, "app", "", "Name of the application the text was copied from")
	cmd.Flags().StringVar(&ra.Rule, "rule", "", "Select this suggested rule instead of the top suggestion")
	cmd.Flags().IntVar(&ra.Limit, "limit", -1, "Maximum number of suggestions, defaults to ui.suggestions")
	cmd.Flags().BoolVarP(&ra.Interactive, "interactive", "i", false, "Pick a rule from the suggestions")
	cmd.Flags().BoolVar(&ra.Copy, "copy", false, "Copy the result to the clipboard")
	cmd.Flags().BoolVar(&ra.Diff, "diff", false, "Print a diff instead of the result")
	cmd.Flags().BoolVarP(&ra.Watch, "watch", "w", false, "Print a new preview whenever the configuration changes")
}

func NewRunCmd(ra *RunArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run [-]",
		Short:   "Default command, can be used explicitly if the input is ambiguous",
		Example: cmdExamples,
		Args:    cobra.MatchAll(cobra.MaximumNArgs(1), stdinOnly),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, ra)
		},
	}
	ra.AddFlags(cmd)

	return cmd
}

func stdinOnly(_ *cobra.Command, args []string) error {
	if len(args) > 0 && args[0] != stdinArg {
		return fmt.Errorf("invalid argument %q, only %q (stdin) is accepted", args[0], stdinArg)
	}

	return nil
}

func run(cmd *cobra.Command, args []string, ra *RunArgs) error {
	if ra.Watch && (ra.Copy || ra.Interactive) {
		return fmt.Errorf("%w: --watch cannot be used with --copy or --interactive", ErrIncompatibleFlags)
	}
	if ra.Interactive && len(args) > 0 {
		return fmt.Errorf("%w: --interactive needs the terminal, it cannot read from stdin", ErrIncompatibleFlags)
	}

	ctx := cmd.Context()

	input, err := ra.Read(cmd, args)
	if err != nil {
		return err
	}

	cfg, path, err := loadConfig(ra.ConfigPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store := config.NewStore(cfg)

	c, err := ra.open(ctx, store, input)
	if err != nil {
		return err
	}

	if ra.Interactive && len(c.Suggestions) > 1 {
		err = pick(ctx, cmd, ra, c)
		if err != nil {
			return err
		}
	}

	err = ra.print(cmd.OutOrStdout(), store.Load(), c)
	if err != nil {
		return err
	}

	if ra.Watch {
		return ra.watch(ctx, cmd, path, store, input)
	}

	return ra.accept(ctx, c)
}

func (ra *RunArgs) open(ctx context.Context, store *config.Store, input string) (*panel.Cycle, error) {
	var opts []panel.Opt
	if ra.Limit >= 0 {
		opts = append(opts, panel.WithLimit(ra.Limit))
	}

	c := panel.New(store, opts...).Open(ctx, input, ra.App)

	if ra.Rule != "" {
		err := c.Select(ctx, ra.Rule)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (ra *RunArgs) print(w io.Writer, cfg *configs.Configuration, c *panel.Cycle) error {
	h := outputHighlighter(w, cfg.UI.Theme)

	if ra.Diff {
		if c.Diff == "" {
			return nil
		}

		return h.Render(w, c.Diff, highlight.LangDiff)
	}

	preview := c.PreviewText()
	if c.SelectedID() == "" {
		slog.Info("no rules match", slog.Any("types", detect.Strings(c.Types)))
	}

	err := h.Render(w, preview, langOf(preview))
	if err != nil {
		return err
	}

	if preview != "" && preview[len(preview)-1] != '\n' {
		mustN(fmt.Fprintln(w))
	}

	return nil
}

// accept copies the output when asked to, or when the selected rule is
// marked auto-accept.
func (ra *RunArgs) accept(ctx context.Context, c *panel.Cycle) error {
	if c.SelectedID() == "" {
		return nil
	}

	if !ra.Copy && !c.AutoAccept() {
		return nil
	}

	err := c.Accept(ctx, ra.Clipboard)
	if err != nil {
		return fmt.Errorf("accept %q: %w", c.SelectedID(), err)
	}

	slog.InfoContext(ctx, "copied to clipboard",
		slog.String("rule", c.SelectedID()),
		slog.String("changes", c.Stats.String()),
		slog.Bool("auto_accept", !ra.Copy),
	)

	return nil
}

func (ra *RunArgs) watch(ctx context.Context, cmd *cobra.Command, path string, store *config.Store, input string) error {
	w, err := config.NewWatcher(path, store,
		config.OnReload(func(cfg *configs.Configuration) {
			c, err := ra.open(ctx, store, input)
			if err != nil {
				slog.ErrorContext(ctx, "preview", slog.Any("err", err))
				return
			}

			err = ra.print(cmd.OutOrStdout(), cfg, c)
			if err != nil {
				slog.ErrorContext(ctx, "print preview", slog.Any("err", err))
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	defer func() {
		err := w.Close()
		if err != nil {
			slog.Error("close watcher", slog.Any("err", err))
		}
	}()

	slog.InfoContext(ctx, "watching config", slog.String("path", path))

	w.Run(ctx)

	return nil
}

// pick asks which suggestion to use. Logs are buffered while the prompt
// owns the terminal.
func pick(ctx context.Context, cmd *cobra.Command, ra *RunArgs, c *panel.Cycle) error {
	logBuf := log.NewCircularBuffer(log.DefaultBufferCapacity)

	logHandler, err := log.CreateHandlerWithStrings(logBuf, ra.LogLevel, ra.LogFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}

	prev := slog.Default()
	slog.SetDefault(slog.New(logHandler))

	defer func() {
		slog.SetDefault(prev)

		err := logBuf.Flush(cmd.ErrOrStderr())
		if err != nil {
			panic(err)
		}
	}()

	options := make([]huh.Option[string], 0, len(c.Suggestions))
	for _, s := range c.Suggestions {
		label := fmt.Sprintf("%s (%s)", s.Rule.Name, s.Rule.ActionName())
		options = append(options, huh.NewOption(label, s.Rule.ID))
	}

	id := c.SelectedID()

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Transform").
			Description(detectSummary(c.Input)).
			Options(options...).
			Value(&id),
	)).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.ErrOrStderr())

	err = form.RunWithContext(ctx)
	if err != nil {
		return fmt.Errorf("pick rule: %w", err)
	}

	return c.Select(ctx, id)
}

// langOf returns the highlighting language for text.
func langOf(text string) string {
	types := detect.Detect(text)
	if len(types) > 1 {
		return highlight.LangFor(string(types[1]))
	}

	return highlight.LangText
}
