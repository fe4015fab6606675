package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/highlight"
)

type ConfigArgs struct {
	*RootArgs

	Write  bool
	Force  bool
	Show   bool
	Schema bool
}

func NewConfigCmd(rootArgs *RootArgs) *cobra.Command {
	ca := &ConfigArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print, write, or describe the configuration file",
		Example: `  # Print the configuration path:
  pasteflow config

  # Replace the configuration with the defaults, keeping a backup:
  pasteflow config --write --force

  # Print the JSON schema for editor integration:
  pasteflow config --schema > pasteflow.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd, ca)
		},
	}

	cmd.Flags().BoolVar(&ca.Write, "write", false, "Write the default configuration file")
	cmd.Flags().BoolVar(&ca.Force, "force", false, "With --write, back up and replace an existing file")
	cmd.Flags().BoolVar(&ca.Show, "show", false, "Print the active configuration")
	cmd.Flags().BoolVar(&ca.Schema, "schema", false, "Print the configuration JSON schema")
	cmd.MarkFlagsMutuallyExclusive("write", "show", "schema")

	return cmd
}

func runConfig(cmd *cobra.Command, ca *ConfigArgs) error {
	path := ca.ConfigPath
	if path == "" {
		path = configs.GetPath()
	}

	w := cmd.OutOrStdout()

	switch {
	case ca.Force && !ca.Write:
		return fmt.Errorf("%w: --force requires --write", ErrIncompatibleFlags)

	case ca.Write:
		return configs.WriteDefault(path, ca.Force)

	case ca.Schema:
		return outputHighlighter(w, highlight.DefaultTheme).Render(w, string(configs.SchemaJSON)+"\n", highlight.LangJSON)

	case ca.Show:
		cfg, _, err := loadConfig(path, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		b, err := cfg.MarshalYAML()
		if err != nil {
			return err
		}

		return outputHighlighter(w, cfg.UI.Theme).Render(w, string(b), highlight.LangYAML)
	}

	mustN(fmt.Fprintln(w, path))

	return nil
}
