package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/highlight"
	"github.com/macropower/pasteflow/pkg/yaml"
)

const validConfig = `apiVersion: pasteflow.jacobcolvin.com/v1beta1
kind: Configuration
ui:
  suggestions: 2
rules:
  - id: prettify
    name: Prettify JSON
    transform: json_prettify
    match:
      contentTypes: [json]
    pinned: true
  - id: shout
    name: Shout
    match:
      regex: '^[A-Z ]+$'
`

func TestNewLoaderFromFile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupFile func(t *testing.T) string
		wantErr   bool
	}{
		"valid file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return createTempFile(t, validConfig)
			},
		},
		"non-existent file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return "/non/existent/file.yaml"
			},
			wantErr: true,
		},
		"directory instead of file": {
			setupFile: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.NewLoaderFromFile(tc.setupFile(t), configs.New, configs.DefaultValidator)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestLoader_ValidateAndLoad(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		errMsg   string
		wantPath string
	}{
		"valid config": {
			input: validConfig,
		},
		"minimal config": {
			input: "apiVersion: pasteflow.jacobcolvin.com/v1beta1\nkind: Configuration\n",
		},
		"invalid yaml": {
			input:  "apiVersion: pasteflow.jacobcolvin.com/v1beta1\nrules: [unclosed\n",
			errMsg: "']' not found",
		},
		"missing required fields": {
			input:  "rules: []\n",
			errMsg: "missing properties 'apiVersion', 'kind'",
		},
		"unknown field": {
			input: `apiVersion: pasteflow.jacobcolvin.com/v1beta1
kind: Configuration
ui:
  colour: red
`,
			wantPath: "$.ui",
		},
		"duplicate rule id": {
			input: `apiVersion: pasteflow.jacobcolvin.com/v1beta1
kind: Configuration
rules:
  - id: a
    name: A
  - id: a
    name: Again
`,
			errMsg:   "duplicate rule id",
			wantPath: "$.rules[1].id",
		},
		"invalid hotkey": {
			input: `apiVersion: pasteflow.jacobcolvin.com/v1beta1
kind: Configuration
hotkey:
  combo: Shift
`,
			wantPath: "$.hotkey.combo",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes([]byte(tc.input), configs.New, configs.DefaultValidator)

			cfg, err := cl.ValidateAndLoad()
			if tc.errMsg == "" && tc.wantPath == "" {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				return
			}

			require.Error(t, err)
			assert.Nil(t, cfg)

			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}

			if tc.wantPath != "" {
				var yamlErr *yaml.Error
				require.ErrorAs(t, err, &yamlErr)
				require.NotNil(t, yamlErr.Path)
				assert.Equal(t, tc.wantPath, yamlErr.Path.String())
			}
		})
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	cl := config.NewLoaderFromBytes([]byte(validConfig), configs.New, configs.DefaultValidator)

	cfg, err := cl.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Limit())
	assert.Equal(t, "Cmd+Shift+V", cfg.Hotkey.Combo, "defaults should be applied")
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "prettify", cfg.Rules[0].ID)
	assert.True(t, cfg.Rules[0].Pinned)
	require.NotNil(t, cfg.Rules[1].Match.Regex)
	assert.Equal(t, "^[A-Z ]+$", *cfg.Rules[1].Match.Regex)
}

func TestLoader_ErrorSource(t *testing.T) {
	t.Parallel()

	input := `apiVersion: pasteflow.jacobcolvin.com/v1beta1
kind: Configuration
rules:
  - id: a
    name: A
    transform: json_uglify
`

	cl := config.NewLoaderFromBytes([]byte(input), configs.New, nil)

	_, err := cl.Load()
	require.Error(t, err)

	// The error is rendered with an excerpt of the source.
	assert.Contains(t, err.Error(), "[6:5]")
	assert.Contains(t, err.Error(), ">    6 |     transform: json_uglify")
}

func TestLoader_WithThemeFromData(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"quoted theme": {
			input: "kind: Configuration\nui:\n  theme: \"github\"\n",
			want:  "github",
		},
		"single quoted theme": {
			input: "kind: Configuration\nui:\n  theme: 'dracula'\n",
			want:  "dracula",
		},
		"no theme": {
			input: "kind: Configuration\nui:\n  suggestions: 3\n",
			want:  highlight.DefaultTheme,
		},
		"unknown theme": {
			input: "kind: Configuration\nui:\n  theme: nope\n",
			want:  highlight.DefaultTheme,
		},
		"malformed yaml with regex fallback": {
			input: "kind: Configuration\nui:\n  # comment\n  theme: \"github\" # inline\n  invalid: [unclosed",
			want:  "github",
		},
		"theme in wrong section": {
			input: "kind: Configuration\nhotkey:\n  theme: github\n",
			want:  highlight.DefaultTheme,
		},
		"empty config": {
			input: "",
			want:  highlight.DefaultTheme,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cl := config.NewLoaderFromBytes(
				[]byte(tc.input), configs.New, configs.DefaultValidator, config.WithThemeFromData(),
			)

			assert.Equal(t, tc.want, cl.Highlighter().Theme())
		})
	}
}

func TestLoader_WithValidator(t *testing.T) {
	t.Parallel()

	// Without a schema validator, only decoding is checked.
	cl := config.NewLoaderFromBytes([]byte("rules: []\n"), configs.New, configs.DefaultValidator, config.WithValidator(nil))
	require.NoError(t, cl.Validate())
}

func TestLoader_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, configs.WriteDefault(path, false))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	b, err := cfg.MarshalYAML()
	require.NoError(t, err)

	cfg2, err := config.NewLoaderFromBytes(b, configs.New, configs.DefaultValidator).ValidateAndLoad()
	require.NoError(t, err)
	assert.Len(t, cfg2.Rules, len(cfg.Rules))
	assert.Equal(t, cfg.Limit(), cfg2.Limit())
	assert.Equal(t, cfg.UI.Theme, cfg2.UI.Theme)
}

// createTempFile creates a temporary file with the given content.
func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
