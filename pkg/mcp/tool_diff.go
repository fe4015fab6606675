package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/pkg/diff"
)

// DiffParams defines parameters for the diff tool.
type DiffParams struct {
	Before string `json:"before" jsonschema:"the original text"`
	After  string `json:"after" jsonschema:"the changed text"`
}

// DiffResult is a unified diff and its line counts.
type DiffResult struct {
	Diff  string     `json:"diff" jsonschema:"unified diff, empty when the texts are identical"`
	Stats diff.Stats `json:"stats"`
}

func (s *Server) handleDiff(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in DiffParams,
) (*mcp.CallToolResult, DiffResult, error) {
	result := DiffResult{
		Diff:  diff.Unified(in.Before, in.After),
		Stats: diff.Compute(in.Before, in.After),
	}

	msg := result.Diff
	if !result.Stats.Changed() {
		msg = "No changes."
	}

	return textResult(msg), result, nil
}
