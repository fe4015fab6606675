package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/mcp"
)

func NewServeCmd(rootArgs *RootArgs) *cobra.Command {
	var address, otlpEndpoint string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP server, reloading the configuration when it changes",
		Example: `  # Serve over stdio:
  pasteflow serve

  # Serve over streamable HTTP:
  pasteflow serve --address localhost:8080

  # Export tool call spans to an OpenTelemetry collector:
  pasteflow serve --otlp-endpoint localhost:4317`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, path, err := loadConfig(rootArgs.ConfigPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			shutdown, err := setupTracing(ctx, otlpEndpoint)
			if err != nil {
				return err
			}

			defer func() {
				err := shutdown(context.WithoutCancel(ctx))
				if err != nil {
					slog.Error("shutdown tracing", slog.Any("err", err))
				}
			}()

			store := config.NewStore(cfg)

			w, err := config.NewWatcher(path, store)
			if err != nil {
				slog.WarnContext(ctx, "config will not be reloaded", slog.Any("err", err))
			} else {
				defer func() {
					err := w.Close()
					if err != nil {
						slog.Error("close watcher", slog.Any("err", err))
					}
				}()

				go w.Run(ctx)
			}

			err = mcp.NewServer(address, store).Serve(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Serve streamable HTTP at this address instead of stdio")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "Export traces to this OTLP/gRPC collector")

	return cmd
}
