// Package transform provides the catalog of text transforms.
package transform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/macropower/pasteflow/pkg/timestamp"
)

// Kind names a transform in the catalog.
type Kind string

const (
	JSONPrettify       Kind = "json_prettify"
	JSONMinify         Kind = "json_minify"
	JSONToYAML         Kind = "json_to_yaml"
	YAMLToJSON         Kind = "yaml_to_json"
	StripFormatting    Kind = "strip_formatting"
	BulletNormalize    Kind = "bullet_normalize"
	TimestampNormalize Kind = "timestamp_normalize"
)

// Kinds lists every [Kind] in the catalog.
var Kinds = []Kind{
	JSONPrettify,
	JSONMinify,
	JSONToYAML,
	YAMLToJSON,
	StripFormatting,
	BulletNormalize,
	TimestampNormalize,
}

var (
	ErrInvalidJSON           = errors.New("invalid json")
	ErrInvalidYAML           = errors.New("invalid yaml")
	ErrNotRepresentable      = errors.New("yaml value is not representable as json")
	ErrUnrecognizedTimestamp = timestamp.ErrUnrecognized
	ErrUnknownKind           = errors.New("unknown transform")
)

var defaultCatalog = NewCatalog()

// ParseKind returns the [Kind] named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// Valid reports whether k is in the catalog.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

func (k Kind) String() string {
	return string(k)
}

// Description returns a short human-readable description of k.
func (k Kind) Description() string {
	switch k {
	case JSONPrettify:
		return "Re-indent JSON"
	case JSONMinify:
		return "Remove insignificant whitespace from JSON"
	case JSONToYAML:
		return "Convert JSON to YAML"
	case YAMLToJSON:
		return "Convert YAML to indented JSON"
	case StripFormatting:
		return "Normalize line endings and blank lines"
	case BulletNormalize:
		return "Rewrite bullet markers as dashes"
	case TimestampNormalize:
		return "Convert between epoch and RFC 3339 timestamps"
	default:
		return ""
	}
}

// Catalog applies transforms.
type Catalog struct {
	timestamps *timestamp.Normalizer
}

// CatalogOpt configures a [Catalog].
type CatalogOpt func(*Catalog)

// WithNormalizer sets the [timestamp.Normalizer] used by [TimestampNormalize].
func WithNormalizer(n *timestamp.Normalizer) CatalogOpt {
	return func(c *Catalog) {
		c.timestamps = n
	}
}

// NewCatalog creates a new [Catalog].
func NewCatalog(opts ...CatalogOpt) *Catalog {
	c := &Catalog{
		timestamps: timestamp.NewNormalizer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Apply runs the transform k on input.
func (c *Catalog) Apply(k Kind, input string) (string, error) {
	switch k {
	case JSONPrettify:
		return prettifyJSON(input)
	case JSONMinify:
		return minifyJSON(input)
	case JSONToYAML:
		return jsonToYAML(input)
	case YAMLToJSON:
		return yamlToJSON(input)
	case StripFormatting:
		return stripFormatting(input), nil
	case BulletNormalize:
		return normalizeBullets(input), nil
	case TimestampNormalize:
		out, err := c.timestamps.Normalize(input)
		if errors.Is(err, timestamp.ErrOutOfRange) {
			return "", fmt.Errorf("%w: %w", ErrUnrecognizedTimestamp, err)
		}

		return out, err //nolint:wrapcheck // Already a sentinel from this package.
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Apply runs the transform k on input using the default [Catalog].
func Apply(k Kind, input string) (string, error) {
	return defaultCatalog.Apply(k, input)
}
