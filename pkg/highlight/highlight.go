// Package highlight renders syntax-highlighted text for terminals.
package highlight

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "monokai"

// Languages understood by [Highlighter.Render].
const (
	LangDiff = "diff"
	LangJSON = "json"
	LangYAML = "yaml"
	LangText = "plaintext"
)

// Themes returns the names of all available themes.
func Themes() []string {
	return styles.Names()
}

// ValidTheme reports whether name is an available theme.
func ValidTheme(name string) bool {
	return slices.Contains(styles.Names(), name)
}

// Highlighter renders source with a chroma style.
type Highlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

// Opt configures a [Highlighter].
type Opt func(*Highlighter)

// WithFormatter sets the chroma formatter by name, e.g. "noop" or "terminal256".
func WithFormatter(name string) Opt {
	return func(h *Highlighter) {
		h.formatter = formatters.Get(name)
	}
}

// New creates a [Highlighter] for the named theme. The formatter is
// chosen from the terminal's color profile unless set with [WithFormatter].
func New(theme string, opts ...Opt) *Highlighter {
	if !ValidTheme(theme) {
		theme = DefaultTheme
	}

	h := &Highlighter{
		style:     styles.Get(theme),
		formatter: formatters.Get(profileFormatter(termenv.ColorProfile())),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Plain returns a [Highlighter] that writes source unchanged.
func Plain() *Highlighter {
	return New(DefaultTheme, WithFormatter("noop"))
}

// Theme returns the name of the highlighter's chroma style.
func (h *Highlighter) Theme() string {
	return h.style.Name
}

// Style returns the highlighter's chroma style.
func (h *Highlighter) Style() *chroma.Style {
	return h.style
}

// Render writes source to w, highlighted as lang.
func (h *Highlighter) Render(w io.Writer, source, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("lexer tokenize: %w", err)
	}

	err = h.formatter.Format(w, h.style, iterator)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// String returns source highlighted as lang. On failure, source is
// returned unchanged.
func (h *Highlighter) String(source, lang string) string {
	buf := &bytes.Buffer{}

	err := h.Render(buf, source, lang)
	if err != nil {
		return source
	}

	return buf.String()
}

// LangFor returns the language name for highlighting text with the
// given content type name ("json", "yaml", ...).
func LangFor(contentType string) string {
	switch contentType {
	case "json":
		return LangJSON
	case "yaml":
		return LangYAML
	default:
		return LangText
	}
}

func profileFormatter(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal8"
	default:
		return "noop"
	}
}
