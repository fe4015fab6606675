package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/highlight"
)

const stdinArg = "-"

var ErrNoInput = errors.New("no input")

// InputArgs selects where the text to classify comes from.
type InputArgs struct {
	*RootArgs

	Text string
}

func (ia *InputArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ia.Text, "text", "", "Use this text instead of the clipboard")
}

// Read returns the input text: the --text flag, stdin when the first
// argument is "-", or the clipboard.
func (ia *InputArgs) Read(cmd *cobra.Command, args []string) (string, error) {
	if cmd.Flags().Changed("text") {
		return ia.Text, nil
	}

	if len(args) > 0 && args[0] == stdinArg {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}

		return string(b), nil
	}

	text, err := ia.Clipboard.Read()
	if err != nil {
		return "", fmt.Errorf("%w: read clipboard: %w", ErrNoInput, err)
	}

	return text, nil
}

// loadConfig reads the configuration at path, or the default path. A
// missing file is created with the defaults first. Errors are annotated
// with the offending source lines, highlighted when w is a terminal.
func loadConfig(path string, w io.Writer) (*configs.Configuration, string, error) {
	if path == "" {
		path = configs.GetPath()
	}

	err := configs.WriteDefault(path, false)
	if err != nil {
		slog.Error("write default config", slog.Any("err", err))
	}

	formatter := "noop"
	if isTerminal(w) {
		formatter = "terminal256"
	}

	cfg, err := config.Load(path, config.WithThemeFromData(), config.WithFormatter(formatter))
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read config, using defaults", slog.Any("err", err))

		return configs.Default(), path, nil
	}
	if err != nil {
		return nil, path, fmt.Errorf("invalid config %q: %w", path, err)
	}

	for _, w := range cfg.Warnings() {
		slog.Warn("config warning", slog.String("path", path), slog.Any("warning", w))
	}

	return cfg, path, nil
}

// outputHighlighter returns a highlighter for w: themed when w is a
// terminal, plain otherwise.
func outputHighlighter(w io.Writer, theme string) *highlight.Highlighter {
	if !isTerminal(w) {
		return highlight.Plain()
	}

	return highlight.New(theme)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
