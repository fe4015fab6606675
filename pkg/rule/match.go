package rule

import (
	"regexp"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"golang.org/x/text/cases"

	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/expr"
)

// Score contributions.
const (
	ContentTypeScore   = 60
	ContentTypeOverlap = 5
	AppScore           = 50
	AppExactScore      = 10
	RegexScore         = 40
	ExprScore          = 30
	SpecificityScore   = 5
	UnconditionalScore = 1
	PinnedScore        = 1000
)

// Expression environment for the expr clause.
//
// CEL expressions have access to variables:
//   - `text` (string): The raw clipboard text
//   - `types` (list<string>): Detected content types, e.g. ["text", "json"]
//   - `app` (string): The active application name, or ""
//
// Example expressions:
//   - lines(text).size() > 10
//   - "yaml" in types && yamlPath(text, "$.kind") == "Deployment"
//   - text.startsWith("#!")
var env = expr.MustNewEnvironment(
	cel.Variable("text", cel.StringType),
	cel.Variable("types", cel.ListType(cel.StringType)),
	cel.Variable("app", cel.StringType),
)

// MatchContext is the input to scoring.
type MatchContext struct {
	// App is the active application name. Empty when unknown.
	App string
	// Text is the raw clipboard text.
	Text string
	// Types are the detected content types of Text.
	Types []detect.ContentType
}

// NewMatchContext detects the content types of text and returns a
// [MatchContext] for it.
func NewMatchContext(text, app string) MatchContext {
	return MatchContext{
		Text:  text,
		Types: detect.Detect(text),
		App:   app,
	}
}

// Score scores r against mc. It returns false when any present clause is
// not satisfied.
func (r *Rule) Score(mc MatchContext) (int, bool) {
	var score, specificity int

	m := r.Match

	if m.ContentTypes != nil {
		matched := 0
		for _, ct := range m.ContentTypes {
			if detect.Has(mc.Types, ct) {
				matched++
			}
		}
		if matched == 0 {
			return 0, false
		}

		score += ContentTypeScore + ContentTypeOverlap*matched
		specificity++
	}

	if m.Apps != nil {
		fold := cases.Fold()
		active := fold.String(mc.App)

		matched, exact := false, false
		for _, app := range m.Apps {
			needle := fold.String(app)
			if strings.Contains(active, needle) {
				matched = true
				if active == needle {
					exact = true
				}
			}
		}
		if !matched {
			return 0, false
		}

		score += AppScore
		if exact {
			score += AppExactScore
		}

		specificity++
	}

	if m.Regex != nil {
		re, err := r.cache.regexp(*m.Regex)
		if err != nil || !re.MatchString(mc.Text) {
			return 0, false
		}

		score += RegexScore
		specificity++
	}

	if m.Expr != nil {
		program, err := r.cache.program(*m.Expr)
		if err != nil {
			return 0, false
		}

		ok := expr.EvalBool(program, map[string]any{
			"text":  mc.Text,
			"types": detect.Strings(mc.Types),
			"app":   mc.App,
		})
		if !ok {
			return 0, false
		}

		score += ExprScore
		specificity++
	}

	if specificity == 0 {
		score = UnconditionalScore
	} else {
		score += SpecificityScore * specificity
	}

	if r.Pinned {
		score += PinnedScore
	}

	return score, true
}

// Matches reports whether r matches mc.
func (r *Rule) Matches(mc MatchContext) bool {
	_, ok := r.Score(mc)

	return ok
}

// CheckRegex compiles the rule's regex clause, if any.
func (r *Rule) CheckRegex() error {
	if r.Match.Regex == nil {
		return nil
	}

	_, err := r.cache.regexp(*r.Match.Regex)

	return err
}

// CheckExpr compiles the rule's expression clause, if any.
func (r *Rule) CheckExpr() error {
	if r.Match.Expr == nil {
		return nil
	}

	_, err := r.cache.program(*r.Match.Expr)

	return err
}

// matchCache holds a rule's compiled regex and CEL program. Each entry
// is compiled on first use and recompiled when its source text changes.
type matchCache struct {
	regex    *regexp.Regexp
	prog     cel.Program
	regexErr error
	exprErr  error
	regexSrc string
	exprSrc  string
	mu       sync.Mutex
	hasRegex bool
	hasExpr  bool
}

func (c *matchCache) regexp(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasRegex || c.regexSrc != pattern {
		c.regex, c.regexErr = regexp.Compile(pattern)
		c.regexSrc = pattern
		c.hasRegex = true
	}

	return c.regex, c.regexErr
}

//nolint:ireturn // Following CEL's function signature.
func (c *matchCache) program(expression string) (cel.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasExpr || c.exprSrc != expression {
		c.prog, c.exprErr = env.Compile(expression)
		c.exprSrc = expression
		c.hasExpr = true
	}

	return c.prog, c.exprErr
}
