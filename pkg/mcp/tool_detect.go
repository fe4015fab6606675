package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/internal/lines"
	"github.com/macropower/pasteflow/pkg/detect"
)

// DetectParams defines parameters for the detect tool.
type DetectParams struct {
	Text string `json:"text" jsonschema:"the text to classify"`
}

// DetectResult contains the detected content types of a text.
type DetectResult struct {
	Types []string `json:"types" jsonschema:"detected content types in detection order"`
	Bytes int      `json:"bytes"`
	Lines int      `json:"lines"`
}

func (s *Server) handleDetect(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in DetectParams,
) (*mcp.CallToolResult, DetectResult, error) {
	result := DetectResult{
		Types: detect.Strings(detect.Detect(in.Text)),
		Bytes: len(in.Text),
		Lines: len(lines.Split(in.Text)),
	}

	msg := fmt.Sprintf("%s (%d bytes, %d lines)", strings.Join(result.Types, ", "), result.Bytes, result.Lines)

	return textResult(msg), result, nil
}
