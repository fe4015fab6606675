package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

var yamlEncodeOptions = []yaml.EncodeOption{
	yaml.Indent(2),
	yaml.IndentSequence(true),
}

// decodeJSON decodes exactly one JSON document. Numbers are kept as
// [json.Number] so that re-encoding preserves their literal form.
func decodeJSON(input string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()

	var v any

	err := dec.Decode(&v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	_, err = dec.Token()
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}

	return v, nil
}

func encodeJSON(v any, indent bool) (string, error) {
	buf := &bytes.Buffer{}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}

	err := enc.Encode(v)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func prettifyJSON(input string) (string, error) {
	v, err := decodeJSON(input)
	if err != nil {
		return "", err
	}

	return encodeJSON(v, true)
}

func minifyJSON(input string) (string, error) {
	v, err := decodeJSON(input)
	if err != nil {
		return "", err
	}

	return encodeJSON(v, false)
}

func jsonToYAML(input string) (string, error) {
	v, err := decodeJSON(input)
	if err != nil {
		return "", err
	}

	yv, err := fromJSONValue(v)
	if err != nil {
		return "", err
	}

	b, err := yaml.MarshalWithOptions(yv, yamlEncodeOptions...)
	if err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}

	return strings.TrimPrefix(string(b), "---\n"), nil
}

func yamlToJSON(input string) (string, error) {
	var v any

	err := yaml.Unmarshal([]byte(input), &v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}

	jv, err := toJSONValue(v)
	if err != nil {
		return "", err
	}

	return encodeJSON(jv, true)
}

// fromJSONValue replaces [json.Number] values with native numbers so
// that they are encoded as YAML numbers rather than strings. Strings that
// a YAML 1.2 parser would read as numbers are kept quoted.
func fromJSONValue(v any) (any, error) {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			ev, err := fromJSONValue(e)
			if err != nil {
				return nil, err
			}

			v[k] = ev
		}

		return v, nil

	case []any:
		for i, e := range v {
			ev, err := fromJSONValue(e)
			if err != nil {
				return nil, err
			}

			v[i] = ev
		}

		return v, nil

	case string:
		if yamlNumberRe.MatchString(v) {
			return quotedString(v), nil
		}

		return v, nil

	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return u, nil
		}

		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s is out of range", ErrInvalidJSON, v)
		}

		return f, nil
	}

	return v, nil
}

// yamlNumberRe matches the YAML 1.2 core schema int and float forms.
var yamlNumberRe = regexp.MustCompile(
	`^(?:[-+]?(?:\.[0-9]+|[0-9]+(?:\.[0-9]*)?)(?:[eE][-+]?[0-9]+)?|0o[0-7]+|0x[0-9a-fA-F]+|[-+]?\.(?:inf|Inf|INF)|\.(?:nan|NaN|NAN))$`,
)

// quotedString is a string that is always encoded double-quoted.
type quotedString string

func (s quotedString) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(s))), nil
}

// toJSONValue checks that a decoded YAML value can be encoded as JSON.
func toJSONValue(v any) (any, error) {
	switch v := v.(type) {
	case nil, string, bool,
		int, int64, uint64:
		return v, nil

	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %v", ErrNotRepresentable, v)
		}

		return v, nil

	case time.Time:
		return v.Format(time.RFC3339Nano), nil

	case map[string]any:
		out := make(map[string]any, len(v))

		for k, e := range v {
			jv, err := toJSONValue(e)
			if err != nil {
				return nil, err
			}

			out[k] = jv
		}

		return out, nil

	case []any:
		out := make([]any, len(v))

		for i, e := range v {
			jv, err := toJSONValue(e)
			if err != nil {
				return nil, err
			}

			out[i] = jv
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrNotRepresentable, v)
}
