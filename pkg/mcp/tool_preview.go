package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/diff"
)

// PreviewParams defines parameters for the preview tool.
type PreviewParams struct {
	Text   string `json:"text" jsonschema:"the clipboard text"`
	App    string `json:"app,omitempty" jsonschema:"name of the active application"`
	RuleID string `json:"ruleId,omitempty" jsonschema:"id of a suggested rule to select instead of the top suggestion"`
}

// PreviewResult is the state of a suggestion panel for a text.
type PreviewResult struct {
	Types       []string     `json:"types"`
	Suggestions []Suggestion `json:"suggestions"`
	Selected    string       `json:"selected,omitempty" jsonschema:"id of the selected rule, empty when no rule matches"`
	Preview     string       `json:"preview" jsonschema:"the selected rule's output, or a message describing why there is none"`
	Error       string       `json:"error,omitempty" jsonschema:"error from applying the selected rule"`
	Diff        string       `json:"diff"`
	Stats       diff.Stats   `json:"stats"`
	AutoAccept  bool         `json:"autoAccept" jsonschema:"whether the selected rule would be applied without confirmation"`
}

func (s *Server) handlePreview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	in PreviewParams,
) (*mcp.CallToolResult, PreviewResult, error) {
	c := s.panel.Open(ctx, in.Text, in.App)

	if in.RuleID != "" {
		err := c.Select(ctx, in.RuleID)
		if err != nil {
			return nil, PreviewResult{}, err
		}
	}

	result := PreviewResult{
		Types:       detect.Strings(c.Types),
		Suggestions: newSuggestions(c.Suggestions),
		Selected:    c.SelectedID(),
		Preview:     c.PreviewText(),
		Diff:        c.Diff,
		Stats:       c.Stats,
		AutoAccept:  c.AutoAccept(),
	}
	if c.Err != nil {
		result.Error = c.Err.Error()
	}

	return textResult(result.Preview), result, nil
}
