// Package mcp serves pasteflow's detection, suggestion, and transform
// operations as Model Context Protocol tools.
package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

const (
	name         = "pasteflow"
	instructions = `MCP Server 'pasteflow' classifies clipboard-style text and applies the transforms configured as rules.

When to use these tools:
- Deciding whether a piece of text is JSON, YAML, a list, a timestamp, or plain text
- Reformatting text (prettify or minify JSON, convert between JSON and YAML, normalize bullets or timestamps)
- Reviewing exactly what a transform changes before using its output

Workflow:
1. Use 'suggest' with the text (and the active application, if known) to get the ranked rules
2. Use 'preview' or 'apply_rule' with a rule id from the 'suggest' output to get the result and its diff
3. Use 'transform' to run a single catalog transform directly, without going through the rules

Rules with an LLM descriptor are recognized but never executed; applying one is reported as an error.
`
)

// maxTextLen bounds the text content returned next to structured output.
const maxTextLen = 4000

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: truncateString(text, maxTextLen)},
		},
	}
}

// truncateString truncates a string to maxLen bytes with a marker if needed.
func truncateString(str string, maxLen int) string {
	if len(str) > maxLen {
		return str[:maxLen] + "\n[OUTPUT TRUNCATED]"
	}

	return str
}
