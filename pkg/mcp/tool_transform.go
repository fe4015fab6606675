package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/pkg/diff"
	"github.com/macropower/pasteflow/pkg/rule"
	"github.com/macropower/pasteflow/pkg/transform"
)

// TransformParams defines parameters for the transform tool.
type TransformParams struct {
	Text string `json:"text" jsonschema:"the text to transform"`
	Kind string `json:"kind" jsonschema:"one of json_prettify, json_minify, json_to_yaml, yaml_to_json, strip_formatting, bullet_normalize, timestamp_normalize"`
}

// TransformResult contains a transform's output and its diff from the input.
type TransformResult struct {
	Kind   string     `json:"kind"`
	Output string     `json:"output"`
	Diff   string     `json:"diff"`
	Stats  diff.Stats `json:"stats"`
}

func (s *Server) handleTransform(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in TransformParams,
) (*mcp.CallToolResult, TransformResult, error) {
	kind, err := transform.ParseKind(in.Kind)
	if err != nil {
		return nil, TransformResult{}, err
	}

	out, err := s.catalog.Apply(kind, in.Text)
	if err != nil {
		return nil, TransformResult{}, fmt.Errorf("apply %s: %w", kind, err)
	}

	result := TransformResult{
		Kind:   kind.String(),
		Output: out,
		Diff:   diff.Unified(in.Text, out),
		Stats:  diff.Compute(in.Text, out),
	}

	return textResult(out), result, nil
}

// ApplyRuleParams defines parameters for the apply_rule tool.
type ApplyRuleParams struct {
	Text   string `json:"text" jsonschema:"the text to transform"`
	RuleID string `json:"ruleId" jsonschema:"id of a configured rule"`
}

// ApplyRuleResult contains a rule's output and its diff from the input.
type ApplyRuleResult struct {
	RuleID string     `json:"ruleId"`
	Action string     `json:"action"`
	Output string     `json:"output"`
	Diff   string     `json:"diff"`
	Stats  diff.Stats `json:"stats"`
}

func (s *Server) handleApplyRule(
	_ context.Context,
	_ *mcp.CallToolRequest,
	in ApplyRuleParams,
) (*mcp.CallToolResult, ApplyRuleResult, error) {
	r, ok := rule.Find(s.source.Rules(), in.RuleID)
	if !ok {
		return nil, ApplyRuleResult{}, fmt.Errorf("%w: %q", ErrRuleNotFound, in.RuleID)
	}

	out, err := r.ApplyWith(s.catalog, in.Text)
	if err != nil {
		return nil, ApplyRuleResult{}, fmt.Errorf("apply rule %q: %w", r.ID, err)
	}

	result := ApplyRuleResult{
		RuleID: r.ID,
		Action: r.ActionName(),
		Output: out,
		Diff:   diff.Unified(in.Text, out),
		Stats:  diff.Compute(in.Text, out),
	}

	return textResult(out), result, nil
}
