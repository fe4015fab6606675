package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/clipboard"
	"github.com/macropower/pasteflow/pkg/log"
	"github.com/macropower/pasteflow/pkg/version"
)

const (
	cmdName = "pasteflow"
	cmdDesc = `Classify clipboard text and apply the transforms your rules suggest.`
)

type RootArgs struct {
	Clipboard  clipboard.Clipboard
	LogLevel   string
	LogFormat  string
	ConfigPath string
}

// Opt configures the root command.
type Opt func(*RootArgs)

// WithClipboard replaces the system clipboard.
func WithClipboard(cb clipboard.Clipboard) Opt {
	return func(ra *RootArgs) {
		ra.Clipboard = cb
	}
}

func NewRootArgs(opts ...Opt) *RootArgs {
	ra := &RootArgs{
		Clipboard: clipboard.NewSystem(),
	}
	for _, opt := range opts {
		opt(ra)
	}

	return ra
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the pasteflow configuration file")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

func NewRootCmd(opts ...Opt) *cobra.Command {
	args := NewRootArgs(opts...)
	runArgs := NewRunArgs(args)

	runCmd := NewRunCmd(runArgs)
	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
		Args:              runCmd.Args,
		RunE:              runCmd.RunE,
	}

	args.AddFlags(cmd)
	runArgs.AddFlags(cmd)
	cmd.AddCommand(
		runCmd,
		NewDetectCmd(args),
		NewSuggestCmd(args),
		NewApplyCmd(args),
		NewDiffCmd(args),
		NewRulesCmd(args),
		NewConfigCmd(args),
		NewServeCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		slog.Debug("starting",
			slog.String("command", cmd.Name()),
			slog.String("version", version.Get().String()),
		)

		return nil
	}
}
