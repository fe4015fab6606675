package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/rule"
	"github.com/macropower/pasteflow/pkg/transform"
)

func ptr[T any](v T) *T {
	return &v
}

func TestScore(t *testing.T) {
	t.Parallel()

	jsonCtx := rule.NewMatchContext(`{"a":1}`, "Visual Studio Code")

	tcs := map[string]struct {
		rule   *rule.Rule
		mc     rule.MatchContext
		want   int
		wantOK bool
	}{
		"unconditional": {
			rule:   &rule.Rule{ID: "any"},
			mc:     jsonCtx,
			want:   1,
			wantOK: true,
		},
		"pinned unconditional": {
			rule:   &rule.Rule{ID: "pin", Pinned: true},
			mc:     rule.MatchContext{},
			want:   1001,
			wantOK: true,
		},
		"single content type": {
			rule: &rule.Rule{Match: rule.Matchers{
				ContentTypes: []detect.ContentType{detect.JSON},
			}},
			mc:     rule.MatchContext{Types: []detect.ContentType{detect.Text, detect.JSON}},
			want:   70,
			wantOK: true,
		},
		"two overlapping content types": {
			rule: &rule.Rule{Match: rule.Matchers{
				ContentTypes: []detect.ContentType{detect.JSON, detect.Text},
			}},
			mc:     jsonCtx,
			want:   60 + 10 + 5,
			wantOK: true,
		},
		"content type miss": {
			rule: &rule.Rule{Match: rule.Matchers{
				ContentTypes: []detect.ContentType{detect.YAML},
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"present but empty content types never match": {
			rule: &rule.Rule{Match: rule.Matchers{
				ContentTypes: []detect.ContentType{},
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"app substring": {
			rule: &rule.Rule{Match: rule.Matchers{
				Apps: []string{"code"},
			}},
			mc:     jsonCtx,
			want:   50 + 5,
			wantOK: true,
		},
		"app exact ignoring case": {
			rule: &rule.Rule{Match: rule.Matchers{
				Apps: []string{"visual studio code"},
			}},
			mc:     jsonCtx,
			want:   50 + 10 + 5,
			wantOK: true,
		},
		"app miss": {
			rule: &rule.Rule{Match: rule.Matchers{
				Apps: []string{"Slack"},
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"app clause with no active app": {
			rule: &rule.Rule{Match: rule.Matchers{
				Apps: []string{"Slack"},
			}},
			mc:     rule.MatchContext{Text: "x"},
			wantOK: false,
		},
		"regex": {
			rule: &rule.Rule{Match: rule.Matchers{
				Regex: ptr(`"a"`),
			}},
			mc:     jsonCtx,
			want:   40 + 5,
			wantOK: true,
		},
		"regex miss": {
			rule: &rule.Rule{Match: rule.Matchers{
				Regex: ptr(`^\d+$`),
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"invalid regex": {
			rule: &rule.Rule{Match: rule.Matchers{
				Regex: ptr(`([`),
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"expr": {
			rule: &rule.Rule{Match: rule.Matchers{
				Expr: ptr(`"json" in types && yamlPath(text, "$.a") == 1`),
			}},
			mc:     jsonCtx,
			want:   30 + 5,
			wantOK: true,
		},
		"expr false": {
			rule: &rule.Rule{Match: rule.Matchers{
				Expr: ptr(`app == "Terminal"`),
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"invalid expr": {
			rule: &rule.Rule{Match: rule.Matchers{
				Expr: ptr(`text ==`),
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
		"all clauses pinned": {
			rule: &rule.Rule{
				Pinned: true,
				Match: rule.Matchers{
					ContentTypes: []detect.ContentType{detect.JSON},
					Apps:         []string{"Code"},
					Regex:        ptr(`\{`),
				},
			},
			mc:     jsonCtx,
			want:   65 + 50 + 40 + 15 + 1000,
			wantOK: true,
		},
		"one failing clause fails the rule": {
			rule: &rule.Rule{Match: rule.Matchers{
				ContentTypes: []detect.ContentType{detect.JSON},
				Apps:         []string{"Slack"},
			}},
			mc:     jsonCtx,
			wantOK: false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := tc.rule.Score(tc.mc)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestScoreRegexCacheInvalidation(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{Match: rule.Matchers{Regex: ptr(`^a`)}}
	mc := rule.MatchContext{Text: "abc"}

	assert.True(t, r.Matches(mc))
	assert.True(t, r.Matches(mc))

	r.Match.Regex = ptr(`^b`)
	assert.False(t, r.Matches(mc))

	r.Match.Regex = ptr(`(`)
	assert.False(t, r.Matches(mc))
	require.Error(t, r.CheckRegex())

	r.Match.Regex = ptr(`c$`)
	assert.True(t, r.Matches(mc))
	require.NoError(t, r.CheckRegex())
}

func TestScoreExprCacheInvalidation(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{Match: rule.Matchers{Expr: ptr(`text.startsWith("a")`)}}
	mc := rule.MatchContext{Text: "abc"}

	score, ok := r.Score(mc)
	require.True(t, ok)
	assert.Equal(t, 35, score)
	assert.True(t, r.Matches(mc))

	r.Match.Expr = ptr(`text.startsWith("b")`)
	assert.False(t, r.Matches(mc))

	r.Match.Expr = ptr(`nope(`)
	assert.False(t, r.Matches(mc))
	require.Error(t, r.CheckExpr())

	r.Match.Expr = ptr(`lines(text).size() == 1`)
	assert.True(t, r.Matches(mc))
	require.NoError(t, r.CheckExpr())
}

func TestCheckExpr(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{}
	require.NoError(t, r.CheckExpr())

	r.Match.Expr = ptr(`text.size() > 0`)
	require.NoError(t, r.CheckExpr())

	r.Match.Expr = ptr(`nope(`)
	require.Error(t, r.CheckExpr())
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	rules := []*rule.Rule{
		{ID: "fallback"},
		{ID: "json", Match: rule.Matchers{ContentTypes: []detect.ContentType{detect.JSON}}},
		{ID: "yaml", Match: rule.Matchers{ContentTypes: []detect.ContentType{detect.YAML}}},
		{ID: "json-2", Match: rule.Matchers{ContentTypes: []detect.ContentType{detect.JSON}}},
		{ID: "pinned", Pinned: true},
		{ID: "broken", Match: rule.Matchers{Regex: ptr(`[`)}},
	}
	mc := rule.NewMatchContext(`[1,2]`, "")

	tcs := map[string]struct {
		limit int
		want  []string
	}{
		"zero limit": {
			limit: 0,
			want:  []string{},
		},
		"negative limit": {
			limit: -1,
			want:  []string{},
		},
		"truncated": {
			limit: 2,
			want:  []string{"pinned", "json"},
		},
		"all matches in stable order": {
			limit: 10,
			want:  []string{"pinned", "json", "json-2", "fallback"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := rule.Suggest(rules, mc, tc.limit)

			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.Rule.ID)
			}

			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestSuggestScores(t *testing.T) {
	t.Parallel()

	rules := []*rule.Rule{
		{ID: "pinned", Pinned: true},
		{ID: "json", Match: rule.Matchers{ContentTypes: []detect.ContentType{detect.JSON}}},
	}

	got := rule.Suggest(rules, rule.NewMatchContext(`{"a":1}`, ""), 5)
	require.Len(t, got, 2)
	assert.Equal(t, 1001, got[0].Score)
	assert.Equal(t, 70, got[1].Score)
}

func TestAction(t *testing.T) {
	t.Parallel()

	kind := transform.JSONMinify
	llm := &rule.LLM{Provider: "openai", Model: "gpt", Prompt: "summarize"}

	tcs := map[string]struct {
		rule *rule.Rule
		want rule.Action
	}{
		"identity": {
			rule: &rule.Rule{},
			want: rule.Identity{},
		},
		"transform": {
			rule: &rule.Rule{Transform: &kind},
			want: rule.LocalTransform{Kind: transform.JSONMinify},
		},
		"remote": {
			rule: &rule.Rule{LLM: llm},
			want: rule.Remote{LLM: *llm},
		},
		"transform wins over remote": {
			rule: &rule.Rule{Transform: &kind, LLM: llm},
			want: rule.LocalTransform{Kind: transform.JSONMinify},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.rule.Action())
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("identity", func(t *testing.T) {
		t.Parallel()

		got, err := (&rule.Rule{}).Apply(" as is ")
		require.NoError(t, err)
		assert.Equal(t, " as is ", got)
	})

	t.Run("transform", func(t *testing.T) {
		t.Parallel()

		got, err := (&rule.Rule{Transform: ptr(transform.JSONMinify)}).Apply("{ \"a\" : 1 }")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, got)
	})

	t.Run("transform error", func(t *testing.T) {
		t.Parallel()

		_, err := (&rule.Rule{Transform: ptr(transform.JSONMinify)}).Apply("nope")
		require.ErrorIs(t, err, transform.ErrInvalidJSON)
	})

	t.Run("remote", func(t *testing.T) {
		t.Parallel()

		r := &rule.Rule{LLM: &rule.LLM{Provider: "p", Model: "m"}}
		_, err := r.Apply("text")
		require.ErrorIs(t, err, rule.ErrRemoteNotEnabled)
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	first := &rule.Rule{ID: "dup", Name: "first"}
	rules := []*rule.Rule{{ID: "a"}, first, {ID: "dup", Name: "second"}}

	got, ok := rule.Find(rules, "dup")
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = rule.Find(rules, "missing")
	assert.False(t, ok)

	s, ok := rule.FindSuggestion([]rule.Suggestion{{Rule: first, Score: 3}}, "dup")
	require.True(t, ok)
	assert.Equal(t, 3, s.Score)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	rules := []*rule.Rule{
		{ID: "json-pretty", Name: "Prettify JSON"},
		{ID: "bullets", Name: "Normalize bullets", Description: "Résumé lists"},
		{ID: "ts", Name: "Timestamp"},
	}

	assert.Len(t, rule.Search(rules, ""), 3)

	got := rule.Search(rules, "prettify")
	require.NotEmpty(t, got)
	assert.Equal(t, "json-pretty", got[0].ID)

	got = rule.Search(rules, "resume")
	require.Len(t, got, 1)
	assert.Equal(t, "bullets", got[0].ID)

	assert.Empty(t, rule.Search(rules, "zzzz"))
}

func TestClone(t *testing.T) {
	t.Parallel()

	r := &rule.Rule{
		ID:        "a",
		Transform: ptr(transform.JSONMinify),
		Match:     rule.Matchers{Apps: []string{"x"}, Regex: ptr("y")},
	}

	c := r.Clone()
	assert.Equal(t, r.ID, c.ID)

	c.Match.Apps[0] = "changed"
	*c.Match.Regex = "changed"
	assert.Equal(t, "x", r.Match.Apps[0])
	assert.Equal(t, "y", *r.Match.Regex)
}
