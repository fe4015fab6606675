// Package detect classifies clipboard text into content types.
package detect

import (
	"encoding/json"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-yaml"

	"github.com/macropower/pasteflow/internal/lines"
	"github.com/macropower/pasteflow/pkg/timestamp"
)

// ContentType is a structural classification of text.
type ContentType string

const (
	Text      ContentType = "text"
	JSON      ContentType = "json"
	YAML      ContentType = "yaml"
	List      ContentType = "list"
	Timestamp ContentType = "timestamp"
)

// AllContentTypes lists every [ContentType] in detection order.
var AllContentTypes = []ContentType{Text, JSON, YAML, List, Timestamp}

// yamlMarkers must appear in the input before a YAML parse is attempted.
var yamlMarkers = []string{":", "\n-", "[", "{"}

// Valid reports whether ct is a known [ContentType].
func (ct ContentType) Valid() bool {
	return slices.Contains(AllContentTypes, ct)
}

func (ct ContentType) String() string {
	return string(ct)
}

// Detect returns the content types of text, in the order
// Text, JSON or YAML, List, Timestamp. [Text] is always present.
// Detection operates on the input with surrounding whitespace removed.
func Detect(text string) []ContentType {
	trimmed := strings.TrimSpace(text)

	types := []ContentType{Text}

	switch {
	case IsJSON(trimmed):
		types = append(types, JSON)
	case IsYAML(trimmed):
		types = append(types, YAML)
	}

	if IsList(trimmed) {
		types = append(types, List)
	}

	if timestamp.Recognize(trimmed) != timestamp.FormatNone {
		types = append(types, Timestamp)
	}

	return types
}

// Has reports whether types contains ct.
func Has(types []ContentType, ct ContentType) bool {
	return slices.Contains(types, ct)
}

// Strings converts types to a string slice.
func Strings(types []ContentType) []string {
	out := make([]string, len(types))
	for i, ct := range types {
		out[i] = string(ct)
	}

	return out
}

// IsJSON reports whether s is a complete JSON document.
func IsJSON(s string) bool {
	if s == "" {
		return false
	}

	return json.Valid([]byte(s))
}

// IsYAML reports whether s is a YAML collection or null document.
// Plain scalars are rejected so that prose is not classified as YAML.
func IsYAML(s string) bool {
	if !hasYAMLMarker(s) {
		return false
	}

	var v any

	err := yaml.Unmarshal([]byte(s), &v)
	if err != nil {
		return false
	}

	switch v.(type) {
	case string, bool,
		int, int64, uint64, float64:
		return false
	}

	return true
}

func hasYAMLMarker(s string) bool {
	if strings.HasPrefix(s, "-") {
		return true
	}

	for _, m := range yamlMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}

	return false
}

// IsList reports whether s has at least two lines and at least two of
// them are bullet items.
func IsList(s string) bool {
	ls := lines.Split(s)
	if len(ls) < 2 {
		return false
	}

	count := 0

	for _, l := range ls {
		if IsBulletLine(l) {
			count++
		}
	}

	return count >= 2
}

// IsBulletLine reports whether line starts, after optional indentation,
// with a bullet marker followed by whitespace and then content.
func IsBulletLine(line string) bool {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)

	r, size := utf8.DecodeRuneInString(rest)
	if !IsBulletMarker(r) {
		return false
	}

	rest = rest[size:]
	body := strings.TrimLeftFunc(rest, unicode.IsSpace)

	return len(body) < len(rest) && body != ""
}

// IsBulletMarker reports whether r is a bullet marker.
func IsBulletMarker(r rune) bool {
	return r == '-' || r == '*' || r == '•'
}
