package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/pasteflow/pkg/panel"
	"github.com/macropower/pasteflow/pkg/transform"
	"github.com/macropower/pasteflow/pkg/version"
)

// ErrRuleNotFound is returned when a tool names a rule that is not configured.
var ErrRuleNotFound = errors.New("rule not found")

// Server implements the MCP server for pasteflow.
type Server struct {
	source  panel.RuleSource
	server  *mcp.Server
	panel   *panel.Panel
	catalog *transform.Catalog
	tracer  trace.Tracer
	address string
}

// Opt configures a [Server].
type Opt func(*Server)

// WithCatalog sets the transform catalog used by all tools.
func WithCatalog(c *transform.Catalog) Opt {
	return func(s *Server) {
		s.catalog = c
	}
}

// NewServer creates a new MCP server that reads its rules from source on
// every call, so a reloaded configuration takes effect immediately.
// An empty address serves over stdio.
func NewServer(address string, source panel.RuleSource, opts ...Opt) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		source:  source,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		catalog: transform.NewCatalog(),
		tracer:  otel.Tracer("mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.panel = panel.New(source, panel.WithCatalog(s.catalog))

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect",
		Description: "Detect the content types of a text. Text is always reported; JSON and YAML are exclusive.",
	}, WithTracing(s.tracer, s.handleDetect))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Rank the configured rules for a text, highest score first. Optionally filter the rules with a fuzzy search first.",
	}, WithTracing(s.tracer, s.handleSuggest))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "transform",
		Description: "Apply one catalog transform to a text and return the output with a diff.",
	}, WithTracing(s.tracer, s.handleTransform))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "apply_rule",
		Description: "Apply a configured rule to a text by id, whether or not it would be suggested, and return the output with a diff.",
	}, WithTracing(s.tracer, s.handleApplyRule))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "diff",
		Description: "Compute a unified line diff between two texts.",
	}, WithTracing(s.tracer, s.handleDiff))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "preview",
		Description: "Open a suggestion panel for a text and preview the selected rule. The top suggestion is selected unless a suggested rule id is given.",
	}, WithTracing(s.tracer, s.handlePreview))
}

// Server returns the underlying SDK server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve starts the MCP server and blocks until ctx is canceled or the
// transport fails.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "shutdown MCP server", slog.Any("error", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    os.Stderr,
	}

	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
