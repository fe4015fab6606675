package rule

import (
	"errors"
	"fmt"

	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/transform"
)

// ErrRemoteNotEnabled is returned when a rule with an LLM descriptor is applied.
// Remote execution is not supported and must not be retried.
var ErrRemoteNotEnabled = errors.New("LLM rule is configured but not enabled")

// Rule associates a match predicate with an action.
//
// Rules are shared by pointer and must not be copied after first use,
// since each one owns a cache of its compiled matchers.
type Rule struct {
	cache matchCache

	// Transform is the catalog transform applied by this rule.
	Transform *transform.Kind `json:"transform,omitempty" jsonschema:"title=Transform"`
	// LLM describes a remote transform. It is recognized but never executed.
	LLM *LLM `json:"llm,omitempty" jsonschema:"title=LLM"`
	// ID identifies the rule within a configuration.
	ID string `json:"id" jsonschema:"title=ID"`
	// Name is the display name.
	Name string `json:"name" jsonschema:"title=Name"`
	// Description is an optional human-readable description.
	Description string `json:"description,omitempty" jsonschema:"title=Description"`
	// Match is the rule's match predicate.
	Match Matchers `json:"match,omitempty" jsonschema:"title=Match"`
	// Pinned rules always outrank unpinned rules.
	Pinned bool `json:"pinned,omitempty" jsonschema:"title=Pinned"`
	// AutoAccept applies the rule without confirmation when it is selected.
	AutoAccept bool `json:"autoAccept,omitempty" jsonschema:"title=Auto Accept"`
}

// Matchers is a rule's match predicate. A nil field is an absent clause
// and imposes no constraint.
type Matchers struct {
	// Regex is tested against the raw text.
	Regex *string `json:"regex,omitempty" jsonschema:"title=Regular Expression"`
	// Expr is a CEL expression that must evaluate to true.
	Expr *string `json:"expr,omitempty" jsonschema:"title=CEL Expression"`
	// ContentTypes accepts text with at least one of these content types.
	ContentTypes []detect.ContentType `json:"contentTypes,omitempty" jsonschema:"title=Content Types"`
	// Apps accepts active applications whose name contains one of these
	// substrings, ignoring case.
	Apps []string `json:"apps,omitempty" jsonschema:"title=Applications"`
}

// LLM describes a remote, model-backed transform.
type LLM struct {
	Provider string `json:"provider" jsonschema:"title=Provider"`
	Model    string `json:"model" jsonschema:"title=Model"`
	Prompt   string `json:"prompt" jsonschema:"title=Prompt"`
}

// Action is what a rule does to its input: [Identity], [LocalTransform],
// or [Remote].
type Action interface {
	isAction()
}

// Identity passes input through unchanged.
type Identity struct{}

// LocalTransform applies a catalog transform.
type LocalTransform struct {
	Kind transform.Kind
}

// Remote is a model-backed transform, which is never executed.
type Remote struct {
	LLM LLM
}

func (Identity) isAction()       {}
func (LocalTransform) isAction() {}
func (Remote) isAction()         {}

// Action returns the rule's [Action]. A transform takes precedence over
// an LLM descriptor.
//
//nolint:ireturn // Tagged union.
func (r *Rule) Action() Action {
	switch {
	case r.Transform != nil:
		return LocalTransform{Kind: *r.Transform}
	case r.LLM != nil:
		return Remote{LLM: *r.LLM}
	default:
		return Identity{}
	}
}

// Apply runs the rule's action on input using the default catalog.
func (r *Rule) Apply(input string) (string, error) {
	return r.ApplyWith(nil, input)
}

// ApplyWith runs the rule's action on input using catalog c.
// A nil catalog uses the default catalog.
func (r *Rule) ApplyWith(c *transform.Catalog, input string) (string, error) {
	switch a := r.Action().(type) {
	case Identity:
		return input, nil

	case LocalTransform:
		var (
			out string
			err error
		)
		if c == nil {
			out, err = transform.Apply(a.Kind, input)
		} else {
			out, err = c.Apply(a.Kind, input)
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", a.Kind, err)
		}

		return out, nil

	case Remote:
		return "", fmt.Errorf("%w: %s/%s", ErrRemoteNotEnabled, a.LLM.Provider, a.LLM.Model)
	}

	panic(fmt.Sprintf("unhandled rule action %T", r.Action()))
}

// ActionName returns a short description of the rule's action.
func (r *Rule) ActionName() string {
	switch a := r.Action().(type) {
	case LocalTransform:
		return string(a.Kind)
	case Remote:
		return "llm"
	default:
		return "identity"
	}
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s: %s", r.ID, r.ActionName())
}

// Clone returns a copy of r with an empty matcher cache.
func (r *Rule) Clone() *Rule {
	c := &Rule{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Pinned:      r.Pinned,
		AutoAccept:  r.AutoAccept,
		Match: Matchers{
			ContentTypes: cloneSlice(r.Match.ContentTypes),
			Apps:         cloneSlice(r.Match.Apps),
			Regex:        clonePtr(r.Match.Regex),
			Expr:         clonePtr(r.Match.Expr),
		},
		Transform: clonePtr(r.Transform),
	}
	if r.LLM != nil {
		llm := *r.LLM
		c.LLM = &llm
	}

	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}

	return append(make([]T, 0, len(s)), s...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
