package mcp_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/mcp"
	"github.com/macropower/pasteflow/pkg/rule"
	"github.com/macropower/pasteflow/pkg/transform"
)

func connect(t *testing.T, store *config.Store) *sdk.ClientSession {
	t.Helper()

	srv := mcp.NewServer("", store)

	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	ss, err := srv.Server().Connect(t.Context(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdk.NewClient(&sdk.Implementation{Name: "test", Version: "v0.0.0"}, nil)

	cs, err := client.Connect(t.Context(), clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

func call(t *testing.T, cs *sdk.ClientSession, name string, args map[string]any) *sdk.CallToolResult {
	t.Helper()

	res, err := cs.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)

	return res
}

func decode[T any](t *testing.T, res *sdk.CallToolResult) T {
	t.Helper()

	require.False(t, res.IsError, "tool error: %s", text(res))

	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(data, &out))

	return out
}

func text(res *sdk.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*sdk.TextContent); ok {
			return tc.Text
		}
	}

	return ""
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	res, err := cs.ListTools(t.Context(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
		assert.NotNil(t, tool.OutputSchema, tool.Name)
	}

	slices.Sort(names)
	assert.Equal(t, []string{"apply_rule", "detect", "diff", "preview", "suggest", "transform"}, names)
}

func TestServer_Detect(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	tcs := map[string]struct {
		input string
		want  mcp.DetectResult
	}{
		"json": {
			input: `{"a":1}`,
			want:  mcp.DetectResult{Types: []string{"text", "json"}, Bytes: 7, Lines: 1},
		},
		"list": {
			input: "- a\n- b\n",
			want:  mcp.DetectResult{Types: []string{"text", "yaml", "list"}, Bytes: 8, Lines: 2},
		},
		"empty": {
			input: "",
			want:  mcp.DetectResult{Types: []string{"text"}},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := decode[mcp.DetectResult](t, call(t, cs, "detect", map[string]any{"text": tc.input}))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServer_Suggest(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	tcs := map[string]struct {
		args map[string]any
		want []string
	}{
		"configured limit": {
			args: map[string]any{"text": `{"a":1}`},
			want: []string{"json_prettify", "json_minify", "json_to_yaml"},
		},
		"explicit limit": {
			args: map[string]any{"text": `{"a":1}`, "limit": 1},
			want: []string{"json_prettify"},
		},
		"zero limit": {
			args: map[string]any{"text": `{"a":1}`, "limit": 0},
			want: []string{},
		},
		"search": {
			args: map[string]any{"text": `{"a":1}`, "search": "minify"},
			want: []string{"json_minify"},
		},
		"plain text": {
			args: map[string]any{"text": "hello world"},
			want: []string{"strip_formatting"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := decode[mcp.SuggestResult](t, call(t, cs, "suggest", tc.args))

			ids := make([]string, 0, len(got.Suggestions))
			for _, s := range got.Suggestions {
				ids = append(ids, s.ID)
			}

			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestServer_SuggestScore(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	res := call(t, cs, "suggest", map[string]any{"text": `{"a":1}`, "limit": 1})
	got := decode[mcp.SuggestResult](t, res)

	assert.Equal(t, []string{"text", "json"}, got.Types)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, mcp.Suggestion{
		ID:          "json_prettify",
		Name:        "Prettify JSON",
		Description: "Indent JSON with two spaces.",
		Action:      "json_prettify",
		Score:       1070,
		Pinned:      true,
	}, got.Suggestions[0])
	assert.Contains(t, text(res), "1. json_prettify (Prettify JSON) score=1070")
}

func TestServer_Transform(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	res := call(t, cs, "transform", map[string]any{
		"text": `{"b":[2,3],"a":1}`,
		"kind": string(transform.JSONPrettify),
	})
	got := decode[mcp.TransformResult](t, res)

	want := "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}"
	assert.Equal(t, want, got.Output)
	assert.Equal(t, want, text(res))
	assert.Equal(t, "json_prettify", got.Kind)
	assert.True(t, got.Stats.Changed())
	assert.Contains(t, got.Diff, "+  \"a\": 1,")

	tcs := map[string]struct {
		args map[string]any
		want string
	}{
		"unknown kind": {
			args: map[string]any{"text": "x", "kind": "rot13"},
			want: "rot13",
		},
		"invalid input": {
			args: map[string]any{"text": `{"a":`, "kind": "json_minify"},
			want: "apply json_minify",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := call(t, cs, "transform", tc.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(res), tc.want)
		})
	}
}

func TestServer_ApplyRule(t *testing.T) {
	t.Parallel()

	cfg := configs.Default()
	cfg.Rules = append(cfg.Rules, &rule.Rule{
		ID:   "summarize",
		Name: "Summarize",
		LLM:  &rule.LLM{Provider: "openai", Model: "gpt", Prompt: "Summarize."},
	})

	cs := connect(t, config.NewStore(cfg))

	// Rules apply by id even when their matchers reject the text.
	got := decode[mcp.ApplyRuleResult](t, call(t, cs, "apply_rule", map[string]any{
		"text":   "a: 1\n",
		"ruleId": "yaml_to_json",
	}))
	assert.Equal(t, "yaml_to_json", got.RuleID)
	assert.Equal(t, "yaml_to_json", got.Action)
	assert.JSONEq(t, `{"a":1}`, got.Output)

	tcs := map[string]struct {
		id   string
		want string
	}{
		"unknown rule": {
			id:   "nope",
			want: "rule not found",
		},
		"remote rule": {
			id:   "summarize",
			want: rule.ErrRemoteNotEnabled.Error(),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := call(t, cs, "apply_rule", map[string]any{"text": "x", "ruleId": tc.id})
			assert.True(t, res.IsError)
			assert.Contains(t, text(res), tc.want)
		})
	}
}

func TestServer_Diff(t *testing.T) {
	t.Parallel()

	cs := connect(t, config.NewStore(configs.Default()))

	got := decode[mcp.DiffResult](t, call(t, cs, "diff", map[string]any{
		"before": "a\nb\n",
		"after":  "a\nc\n",
	}))
	assert.Equal(t, 1, got.Stats.Added)
	assert.Equal(t, 1, got.Stats.Removed)
	assert.Equal(t, 1, got.Stats.Hunks)
	assert.Contains(t, got.Diff, "-b\n+c\n")

	res := call(t, cs, "diff", map[string]any{"before": "same", "after": "same"})
	same := decode[mcp.DiffResult](t, res)
	assert.Empty(t, same.Diff)
	assert.Equal(t, "No changes.", text(res))
}

func TestServer_Preview(t *testing.T) {
	t.Parallel()

	store := config.NewStore(configs.Default())
	cs := connect(t, store)

	got := decode[mcp.PreviewResult](t, call(t, cs, "preview", map[string]any{"text": `{ "a": 1 }`}))
	assert.Equal(t, "json_prettify", got.Selected)
	assert.Equal(t, "{\n  \"a\": 1\n}", got.Preview)
	assert.Empty(t, got.Error)
	assert.False(t, got.AutoAccept)
	assert.Len(t, got.Suggestions, 3)

	got = decode[mcp.PreviewResult](t, call(t, cs, "preview", map[string]any{
		"text":   `{ "a": 1 }`,
		"ruleId": "json_minify",
	}))
	assert.Equal(t, "json_minify", got.Selected)
	assert.Equal(t, `{"a":1}`, got.Preview)
	assert.Equal(t, 1, got.Stats.Added)
	assert.Equal(t, 1, got.Stats.Removed)

	res := call(t, cs, "preview", map[string]any{"text": `{"a":1}`, "ruleId": "yaml_to_json"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "rule is not suggested")

	// Updates to the store are visible to the next call.
	_, err := store.SetAutoAccept("json_prettify", true)
	require.NoError(t, err)

	got = decode[mcp.PreviewResult](t, call(t, cs, "preview", map[string]any{"text": `{"a":1}`}))
	assert.True(t, got.AutoAccept)
}
