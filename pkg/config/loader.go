package config

import (
	"bytes"
	"log/slog"
	"regexp"
	"strings"

	"github.com/macropower/pasteflow/api"
	"github.com/macropower/pasteflow/api/v1beta1"
	"github.com/macropower/pasteflow/pkg/highlight"
	"github.com/macropower/pasteflow/pkg/yaml"
)

// Validator validates configuration data against a schema.
type Validator interface {
	Validate(data any) error
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	validator    Validator
	formatter    string
	extractTheme bool
}

// WithValidator sets a custom validator.
func WithValidator(v Validator) LoaderOpt {
	return func(o *loaderOptions) {
		o.validator = v
	}
}

// WithThemeFromData highlights errors using the theme set in the config
// data, even when the data is not valid.
func WithThemeFromData() LoaderOpt {
	return func(o *loaderOptions) {
		o.extractTheme = true
	}
}

// WithFormatter sets the chroma formatter used to highlight errors.
func WithFormatter(name string) LoaderOpt {
	return func(o *loaderOptions) {
		o.formatter = name
	}
}

// Loader is a generic configuration loader that handles validation,
// YAML parsing, and error formatting for any config type T.
type Loader[T v1beta1.Object] struct {
	validator   Validator
	newFunc     func() T
	highlighter *highlight.Highlighter
	yamlError   *yaml.ErrorWrapper
	data        []byte
}

// NewLoaderFromBytes creates a [Loader] from byte data.
// The newFunc parameter is the constructor for type T (e.g., configs.New).
func NewLoaderFromBytes[T v1beta1.Object](
	data []byte,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) *Loader[T] {
	options := &loaderOptions{
		validator: defaultValidator,
		formatter: "noop",
	}
	for _, opt := range opts {
		opt(options)
	}

	themeName := highlight.DefaultTheme
	if options.extractTheme {
		themeName = getTheme(data)
	}

	h := highlight.New(themeName, highlight.WithFormatter(options.formatter))

	return &Loader[T]{
		data:        data,
		newFunc:     newFunc,
		validator:   options.validator,
		highlighter: h,
		yamlError: yaml.NewErrorWrapper(
			yaml.WithHighlighter(h),
			yaml.WithSource(data),
			yaml.WithSourceLines(4),
		),
	}
}

// NewLoaderFromFile creates a [Loader] from a file path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	defaultValidator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := api.ReadFile(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // Return the original error.
	}

	return NewLoaderFromBytes(data, newFunc, defaultValidator, opts...), nil
}

// Validate validates the configuration data against the schema.
func (l *Loader[T]) Validate() error {
	var anyConfig any

	err := yaml.Unmarshal(l.data, &anyConfig)
	if err != nil {
		return l.yamlError.Wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(anyConfig)
		if err != nil {
			return l.yamlError.Wrap(err)
		}
	}

	return nil
}

// Load parses and returns the configuration. If T has a Validate method,
// it is run after defaults are applied.
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	cfg := l.newFunc()

	err := yaml.Unmarshal(l.data, cfg)
	if err != nil {
		return zero, l.yamlError.Wrap(err)
	}

	cfg.EnsureDefaults()

	if v, ok := any(cfg).(interface{ Validate() error }); ok {
		err = v.Validate()
		if err != nil {
			return zero, l.yamlError.Wrap(err)
		}
	}

	return cfg, nil
}

// ValidateAndLoad runs [Loader.Validate] then [Loader.Load].
//
//nolint:ireturn // Generic type parameter return is intentional.
func (l *Loader[T]) ValidateAndLoad() (T, error) {
	err := l.Validate()
	if err != nil {
		var zero T
		return zero, err
	}

	return l.Load()
}

// Highlighter returns the highlighter used for error formatting.
func (l *Loader[T]) Highlighter() *highlight.Highlighter {
	return l.highlighter
}

func getTheme(data []byte) string {
	var themeName string

	path := yaml.NewPathBuilder().Root().Child("ui").Child("theme").Build()

	err := path.Read(bytes.NewReader(data), &themeName)
	if err == nil && highlight.ValidTheme(themeName) {
		return themeName
	}

	slog.Debug("could not read theme, config might be invalid")

	// The config may not be valid YAML, so fall back to a regex.
	themeName = extractThemeWithRegex(data)
	if highlight.ValidTheme(themeName) {
		slog.Debug("extracted theme using regex fallback", slog.String("theme", themeName))
		return themeName
	}

	return highlight.DefaultTheme
}

var (
	// Matches an unindented "ui:" key and its indented block.
	uiSectionRe = regexp.MustCompile(`(?m)^ui:\s*$((?:\n[ \t]+.*)*)`)
	// Matches an indented theme key with a quoted or unquoted value.
	themeKeyRe = regexp.MustCompile(`\n[ \t]+theme:\s*(?:"([^"#\n]+)"|'([^'#\n]+)'|([^\s#\n]+))`)
)

// extractThemeWithRegex extracts ui.theme from data that may not parse:
//
//	ui:
//	  suggestions: 3
//	  theme: <value>
func extractThemeWithRegex(data []byte) string {
	ui := uiSectionRe.FindStringSubmatch(string(data))
	if len(ui) < 2 {
		return ""
	}

	m := themeKeyRe.FindStringSubmatch(ui[1])
	for i := 1; i < len(m); i++ {
		if m[i] != "" {
			return strings.TrimSpace(m[i])
		}
	}

	return ""
}
