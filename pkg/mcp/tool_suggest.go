package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/rule"
)

// SuggestParams defines parameters for the suggest tool.
type SuggestParams struct {
	Limit  *int   `json:"limit,omitempty" jsonschema:"maximum number of suggestions, defaults to the configured limit"`
	Text   string `json:"text" jsonschema:"the text to rank rules for"`
	App    string `json:"app,omitempty" jsonschema:"name of the active application"`
	Search string `json:"search,omitempty" jsonschema:"fuzzy filter applied to rule names, ids, and descriptions before ranking"`
}

// SuggestResult contains the ranked rules for a text.
type SuggestResult struct {
	Types       []string     `json:"types" jsonschema:"detected content types of the text"`
	Suggestions []Suggestion `json:"suggestions" jsonschema:"matching rules, highest score first"`
}

// Suggestion is a ranked rule.
type Suggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Action      string `json:"action" jsonschema:"transform kind, llm, or identity"`
	Score       int    `json:"score"`
	Pinned      bool   `json:"pinned"`
	AutoAccept  bool   `json:"autoAccept"`
}

func newSuggestions(in []rule.Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		out = append(out, Suggestion{
			ID:          s.Rule.ID,
			Name:        s.Rule.Name,
			Description: s.Rule.Description,
			Action:      s.Rule.ActionName(),
			Score:       s.Score,
			Pinned:      s.Rule.Pinned,
			AutoAccept:  s.Rule.AutoAccept,
		})
	}

	return out
}

func formatSuggestions(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return "No rules match."
	}

	var b strings.Builder
	for i, s := range suggestions {
		fmt.Fprintf(&b, "%d. %s (%s) score=%d action=%s\n", i+1, s.ID, s.Name, s.Score, s.Action)
	}

	return b.String()
}

func (s *Server) handleSuggest(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in SuggestParams,
) (*mcp.CallToolResult, SuggestResult, error) {
	rules := s.source.Rules()
	if in.Search != "" {
		rules = rule.Search(rules, in.Search)
	}

	limit := s.panel.Limit()
	if in.Limit != nil {
		limit = *in.Limit
	}

	mc := rule.NewMatchContext(in.Text, in.App)

	result := SuggestResult{
		Types:       detect.Strings(mc.Types),
		Suggestions: newSuggestions(rule.Suggest(rules, mc, limit)),
	}

	return textResult(formatSuggestions(result.Suggestions)), result, nil
}
