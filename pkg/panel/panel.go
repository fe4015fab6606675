// Package panel runs the suggestion cycle for a clipboard: detect its
// content, rank the configured rules, preview the selected rule, and
// write the accepted result back.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/pasteflow/pkg/clipboard"
	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/diff"
	"github.com/macropower/pasteflow/pkg/log"
	"github.com/macropower/pasteflow/pkg/rule"
	"github.com/macropower/pasteflow/pkg/transform"
)

// DefaultLimit is the number of suggestions when no limit is configured.
const DefaultLimit = 3

// RemoteMessage is the preview text for rules with an LLM descriptor.
const RemoteMessage = "LLM rule is configured but not enabled."

var (
	ErrRuleNotSuggested = errors.New("rule is not suggested")
	ErrNoSelection      = errors.New("no rule selected")
	ErrPreviewFailed    = errors.New("preview failed")
)

// RuleSource supplies the configured rules for each cycle.
type RuleSource interface {
	Rules() []*rule.Rule
}

// LimitSource is implemented by rule sources that also configure the
// number of suggestions.
type LimitSource interface {
	Limit() int
}

// Panel opens suggestion cycles against a [RuleSource].
type Panel struct {
	source  RuleSource
	catalog *transform.Catalog
	tracer  trace.Tracer
	limit   int
}

// Opt configures a [Panel].
type Opt func(*Panel)

// WithLimit sets the maximum number of suggestions per cycle.
func WithLimit(n int) Opt {
	return func(p *Panel) {
		p.limit = n
	}
}

// WithCatalog sets the transform catalog used for previews.
func WithCatalog(c *transform.Catalog) Opt {
	return func(p *Panel) {
		p.catalog = c
	}
}

// New creates a [Panel]. Without [WithLimit], the limit comes from the
// source if it implements [LimitSource], and [DefaultLimit] otherwise.
func New(source RuleSource, opts ...Opt) *Panel {
	p := &Panel{
		source:  source,
		catalog: transform.NewCatalog(),
		tracer:  otel.Tracer("panel"),
		limit:   -1,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Limit returns the maximum number of suggestions per cycle.
func (p *Panel) Limit() int {
	if p.limit >= 0 {
		return p.limit
	}
	if ls, ok := p.source.(LimitSource); ok {
		return ls.Limit()
	}

	return DefaultLimit
}

// Open starts a cycle for text copied while app was active. The top
// suggestion, if any, is selected and previewed.
func (p *Panel) Open(ctx context.Context, text, app string) *Cycle {
	ctx, span := p.tracer.Start(ctx, "open", trace.WithAttributes(
		attribute.String("app", app),
		attribute.Int("bytes", len(text)),
	))
	defer span.End()

	mc := rule.NewMatchContext(text, app)

	c := &Cycle{
		Input:       text,
		App:         app,
		Types:       mc.Types,
		Suggestions: rule.Suggest(p.source.Rules(), mc, p.Limit()),
		catalog:     p.catalog,
		tracer:      p.tracer,
		selected:    -1,
	}

	if len(c.Suggestions) > 0 {
		c.selected = 0
	}

	c.refresh()

	span.SetAttributes(
		attribute.StringSlice("types", detect.Strings(c.Types)),
		attribute.Int("suggestions", len(c.Suggestions)),
	)

	log.WithContext(ctx).DebugContext(ctx, "opened panel",
		slog.String("app", app),
		slog.Any("types", detect.Strings(c.Types)),
		slog.Int("suggestions", len(c.Suggestions)),
		slog.String("selected", c.SelectedID()),
	)

	return c
}

// Cycle is the state of one panel opening.
type Cycle struct {
	catalog *transform.Catalog
	tracer  trace.Tracer

	// Err is the error from applying the selected rule, if any.
	Err error

	// Input is the clipboard text.
	Input string
	// App is the active application name.
	App string
	// Output is the selected rule's result. It is empty when Err is set.
	Output string
	// Diff is the unified diff from Input to the preview text.
	Diff string

	// Types are the detected content types of Input.
	Types []detect.ContentType
	// Suggestions are the ranked rules for Input.
	Suggestions []rule.Suggestion

	Stats diff.Stats

	selected int
}

// Selected returns the selected suggestion.
func (c *Cycle) Selected() (rule.Suggestion, bool) {
	if c.selected < 0 {
		return rule.Suggestion{}, false
	}

	return c.Suggestions[c.selected], true
}

// Rule returns the selected rule, or [ErrNoSelection].
func (c *Cycle) Rule() (*rule.Rule, error) {
	s, ok := c.Selected()
	if !ok {
		return nil, ErrNoSelection
	}

	return s.Rule, nil
}

// SelectedID returns the id of the selected rule, or "".
func (c *Cycle) SelectedID() string {
	s, ok := c.Selected()
	if !ok {
		return ""
	}

	return s.Rule.ID
}

// Select selects the first suggestion with the given rule id and
// refreshes the preview.
func (c *Cycle) Select(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "select", trace.WithAttributes(
		attribute.String("rule", id),
	))
	defer span.End()

	for i, s := range c.Suggestions {
		if s.Rule.ID == id {
			c.selected = i
			c.refresh()

			log.WithContext(ctx).DebugContext(ctx, "selected rule",
				slog.String("rule", id),
				slog.Int("score", s.Score),
				slog.String("stats", c.Stats.String()),
			)

			return nil
		}
	}

	err := fmt.Errorf("%w: %q", ErrRuleNotSuggested, id)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

// PreviewText returns the text shown in the preview: the output, or a
// message describing why there is none.
func (c *Cycle) PreviewText() string {
	switch {
	case c.Err == nil:
		return c.Output
	case errors.Is(c.Err, rule.ErrRemoteNotEnabled):
		return RemoteMessage
	default:
		return "Transform error: " + c.Err.Error()
	}
}

// AutoAccept reports whether the selected rule should be applied without
// confirmation.
func (c *Cycle) AutoAccept() bool {
	s, ok := c.Selected()

	return ok && s.Rule.AutoAccept && c.Err == nil
}

// Accept writes the output to cb. It fails if the preview has an error.
// With no selection, the input is written unchanged.
func (c *Cycle) Accept(ctx context.Context, cb clipboard.Clipboard) error {
	ctx, span := c.tracer.Start(ctx, "accept", trace.WithAttributes(
		attribute.String("rule", c.SelectedID()),
	))
	defer span.End()

	if c.Err != nil {
		span.RecordError(c.Err)
		span.SetStatus(codes.Error, c.Err.Error())

		return fmt.Errorf("%w: %w", ErrPreviewFailed, c.Err)
	}

	err := cb.Write(c.Output)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return fmt.Errorf("write clipboard: %w", err)
	}

	log.WithContext(ctx).InfoContext(ctx, "accepted",
		slog.String("rule", c.SelectedID()),
		slog.String("stats", c.Stats.String()),
	)

	return nil
}

func (c *Cycle) refresh() {
	c.Output, c.Err = c.Input, nil

	if s, ok := c.Selected(); ok {
		out, err := s.Rule.ApplyWith(c.catalog, c.Input)
		c.Output, c.Err = out, err
	}

	preview := c.PreviewText()
	c.Diff = diff.Unified(c.Input, preview)
	c.Stats = diff.Compute(c.Input, preview)
}
