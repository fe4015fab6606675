package transform_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pasteflow/pkg/timestamp"
	"github.com/macropower/pasteflow/pkg/transform"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err   error
		kind  transform.Kind
		input string
		want  string
	}{
		"prettify": {
			kind:  transform.JSONPrettify,
			input: `{"b":[2,3],"a":1}`,
			want:  "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}",
		},
		"prettify keeps number literals": {
			kind:  transform.JSONPrettify,
			input: `[1.50, 1e3, 12345678901234567890]`,
			want:  "[\n  1.50,\n  1e3,\n  12345678901234567890\n]",
		},
		"prettify does not escape html": {
			kind:  transform.JSONPrettify,
			input: `{"a":"<b>&"}`,
			want:  "{\n  \"a\": \"<b>&\"\n}",
		},
		"prettify invalid": {
			kind:  transform.JSONPrettify,
			input: `{"a":`,
			err:   transform.ErrInvalidJSON,
		},
		"prettify trailing data": {
			kind:  transform.JSONPrettify,
			input: `{"a":1} {"b":2}`,
			err:   transform.ErrInvalidJSON,
		},
		"minify": {
			kind:  transform.JSONMinify,
			input: "{\n  \"a\": 1\n}",
			want:  `{"a":1}`,
		},
		"minify empty input": {
			kind:  transform.JSONMinify,
			input: "",
			err:   transform.ErrInvalidJSON,
		},
		"json to yaml": {
			kind:  transform.JSONToYAML,
			input: `{"name":"pasteflow","tags":["a","b"],"count":3}`,
			want:  "count: 3\nname: pasteflow\ntags:\n  - a\n  - b\n",
		},
		"json to yaml quotes numeric strings": {
			kind:  transform.JSONToYAML,
			input: `{"h":"1e3","s":"text","v":"0x1F","w":".5"}`,
			want:  "h: \"1e3\"\ns: text\nv: \"0x1F\"\nw: \".5\"\n",
		},
		"json to yaml number out of range": {
			kind:  transform.JSONToYAML,
			input: `{"l":1e400}`,
			err:   transform.ErrInvalidJSON,
		},
		"json to yaml invalid": {
			kind:  transform.JSONToYAML,
			input: `nope`,
			err:   transform.ErrInvalidJSON,
		},
		"yaml to json": {
			kind:  transform.YAMLToJSON,
			input: "name: pasteflow\ncount: 2\nok: true\nnothing: null\n",
			want:  "{\n  \"count\": 2,\n  \"name\": \"pasteflow\",\n  \"nothing\": null,\n  \"ok\": true\n}",
		},
		"yaml to json sequence": {
			kind:  transform.YAMLToJSON,
			input: "- a\n- 1.5\n",
			want:  "[\n  \"a\",\n  1.5\n]",
		},
		"yaml to json invalid": {
			kind:  transform.YAMLToJSON,
			input: "key: [unclosed",
			err:   transform.ErrInvalidYAML,
		},
		"yaml to json infinity": {
			kind:  transform.YAMLToJSON,
			input: "a: .inf",
			err:   transform.ErrNotRepresentable,
		},
		"strip formatting": {
			kind:  transform.StripFormatting,
			input: "\n\n  a  \n\n\nb\n\n",
			want:  "a\n\nb",
		},
		"strip formatting line endings": {
			kind:  transform.StripFormatting,
			input: "a \r\nb\t\rc",
			want:  "a\nb\nc",
		},
		"strip formatting keeps inner indentation": {
			kind:  transform.StripFormatting,
			input: "a\n    b  \n\n\n\n\nc",
			want:  "a\n    b\n\nc",
		},
		"strip formatting trims first line indentation": {
			kind:  transform.StripFormatting,
			input: "\n  code\n  more  \n",
			want:  "code\n  more",
		},
		"strip formatting blank": {
			kind:  transform.StripFormatting,
			input: " \n\t\n",
			want:  "",
		},
		"bullets": {
			kind:  transform.BulletNormalize,
			input: "* One\n  • Two",
			want:  "- One\n  - Two",
		},
		"bullets passthrough": {
			kind:  transform.BulletNormalize,
			input: "Title\r\n*   spaced out   \r\n-nospace\r\n",
			want:  "Title\n- spaced out\n-nospace",
		},
		"bullets empty content": {
			kind:  transform.BulletNormalize,
			input: "*  ",
			want:  "- ",
		},
		"timestamp epoch": {
			kind:  transform.TimestampNormalize,
			input: "0",
			want:  "1970-01-01T00:00:00Z",
		},
		"timestamp rfc3339": {
			kind:  transform.TimestampNormalize,
			input: "1970-01-01T00:01:00Z\n",
			want:  "60",
		},
		"timestamp invalid": {
			kind:  transform.TimestampNormalize,
			input: "soon",
			err:   transform.ErrUnrecognizedTimestamp,
		},
		"timestamp out of range": {
			kind:  transform.TimestampNormalize,
			input: "99999999999999999999",
			err:   transform.ErrUnrecognizedTimestamp,
		},
		"unknown kind": {
			kind:  transform.Kind("rot13"),
			input: "abc",
			err:   transform.ErrUnknownKind,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := transform.Apply(tc.kind, tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONFixedPoint(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"a":1,"b":[2,3,{"c":null}]}`,
		"  [\n true, false, \"x\\ny\" ]  ",
		`"just a string"`,
		`{}`,
		`[]`,
		`{"z":{"y":{"x":[1.25,-3,4e10]}}}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			for _, pair := range [][2]transform.Kind{
				{transform.JSONMinify, transform.JSONPrettify},
				{transform.JSONPrettify, transform.JSONMinify},
			} {
				first, err := transform.Apply(pair[0], input)
				require.NoError(t, err)

				second, err := transform.Apply(pair[1], first)
				require.NoError(t, err)

				third, err := transform.Apply(pair[1], second)
				require.NoError(t, err)
				assert.Equal(t, second, third)
			}
		})
	}
}

func TestJSONYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"name":"pasteflow","nested":{"list":[1,2,3],"flag":true,"none":null}}`,
		`[{"a":"1"},{"b":"true"},{"c":"multi\nline"}]`,
		`{"float":1.5,"neg":-7,"empty":{},"arr":[]}`,
		`{"exp":"1e3","hex":"0x1F","frac":".5","signed":"+12","inf":"-.inf"}`,
		`"scalar"`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			y, err := transform.Apply(transform.JSONToYAML, input)
			require.NoError(t, err)
			assert.NotContains(t, y, "---")

			j, err := transform.Apply(transform.YAMLToJSON, y)
			require.NoError(t, err)

			var want, got any
			require.NoError(t, json.Unmarshal([]byte(input), &want))
			require.NoError(t, json.Unmarshal([]byte(j), &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestCatalogClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := transform.NewCatalog(transform.WithNormalizer(
		timestamp.NewNormalizer(timestamp.WithClock(func() time.Time { return fixed })),
	))

	got, err := c.Apply(transform.TimestampNormalize, "now-1h")
	require.NoError(t, err)
	assert.Equal(t, "2029-12-31T23:00:00Z", got)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range transform.Kinds {
		got, err := transform.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Description())
	}

	_, err := transform.ParseKind("JsonPrettify")
	require.ErrorIs(t, err, transform.ErrUnknownKind)
}
