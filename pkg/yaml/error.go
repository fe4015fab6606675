package yaml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"

	"github.com/macropower/pasteflow/pkg/highlight"
)

// Path is a YAML path, e.g. "$.rules[0].id".
type Path = yaml.Path

// NewPathBuilder returns a builder for [yaml.Path]s.
func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// ErrorWrapper applies a fixed set of [ErrorOpt]s to [Error]s.
type ErrorWrapper struct {
	Opts []ErrorOpt
}

func NewErrorWrapper(opts ...ErrorOpt) *ErrorWrapper {
	return &ErrorWrapper{
		Opts: opts,
	}
}

// Wrap applies the wrapper's options, then opts, to err if it is an [Error].
// Other errors are returned unmodified.
func (ew *ErrorWrapper) Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range ew.Opts {
			opt(yamlErr)
		}

		for _, opt := range opts {
			opt(yamlErr)
		}

		return yamlErr
	}

	return err
}

// Error is an error located in a YAML document, either by [yaml.Path]
// or by [*token.Token]. When the document source is attached, the error
// message includes an excerpt of the source around the location.
type Error struct {
	Err         error
	Path        *yaml.Path
	Token       *token.Token
	Highlighter *highlight.Highlighter
	Source      []byte
	SourceLines int // Number of lines to show on each side of the error.
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{
		Err:         err,
		SourceLines: 2,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithSourceLines(lines int) ErrorOpt {
	return func(e *Error) {
		e.SourceLines = lines
	}
}

func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

// WithHighlighter highlights the source excerpt.
func WithHighlighter(h *highlight.Highlighter) ErrorOpt {
	return func(e *Error) {
		e.Highlighter = h
	}
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	if e.Path == nil && e.Token == nil {
		return e.Err.Error()
	}
	if len(e.Source) == 0 {
		return e.location()
	}

	tk := e.Token
	if tk == nil {
		var err error

		tk, err = getTokenFromPath(e.Source, e.Path)
		if err != nil {
			slog.Debug("could not locate error in source",
				slog.String("path", e.Path.String()),
				slog.Any("error", err),
			)

			return e.location()
		}
	}

	line, col := tk.Position.Line, tk.Position.Column

	return fmt.Sprintf("[%d:%d] %v:\n%s", line, col, e.Err, e.excerpt(line, col))
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) location() string {
	if e.Path != nil {
		return fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	}

	return fmt.Sprintf("[%d:%d] %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
}

// excerpt renders the source lines around line, marking col on line.
// Line and column are 1-based.
func (e Error) excerpt(line, col int) string {
	src := strings.TrimRight(string(e.Source), "\n")
	if e.Highlighter != nil {
		src = e.Highlighter.String(src, highlight.LangYAML)
	}

	lines := strings.Split(src, "\n")

	first := max(1, line-e.SourceLines)
	last := min(len(lines), line+e.SourceLines)

	var b strings.Builder

	for n := first; n <= last; n++ {
		marker := " "
		if n == line {
			marker = ">"
		}

		fmt.Fprintf(&b, "%s %4d | %s\n", marker, n, lines[n-1])

		if n == line && col > 0 {
			fmt.Fprintf(&b, "  %4s | %s^\n", "", strings.Repeat(" ", col-1))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func getTokenFromPath(source []byte, path *yaml.Path) (*token.Token, error) {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes into ast.File: %w", err)
	}

	node, err := path.FilterFile(file)
	if err != nil {
		return nil, fmt.Errorf("filter from ast.File by YAMLPath: %w", err)
	}

	// FilterFile returns the value node, but errors read better pointing
	// at the key.
	if keyToken := findKeyToken(file, path); keyToken != nil {
		return keyToken, nil
	}

	return node.GetToken(), nil
}

// findKeyToken returns the key token for path from its parent mapping.
func findKeyToken(file *ast.File, path *yaml.Path) *token.Token {
	pathStr := path.String()

	lastDot := strings.LastIndex(pathStr, ".")
	lastBracket := strings.LastIndex(pathStr, "[")

	if lastDot == -1 || lastDot <= lastBracket {
		// Root path or array index: there is no key.
		return nil
	}

	parentPath, err := yaml.PathString(pathStr[:lastDot])
	if err != nil {
		return nil
	}

	parentNode, err := parentPath.FilterFile(file)
	if err != nil {
		return nil
	}

	mapping, ok := parentNode.(*ast.MappingNode)
	if !ok {
		return nil
	}

	key := pathStr[lastDot+1:]
	for _, val := range mapping.Values {
		if val.Key.String() == key {
			return val.Key.GetToken()
		}
	}

	return nil
}
