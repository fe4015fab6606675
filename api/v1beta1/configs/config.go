// Package configs provides the Configuration kind for pasteflow.
package configs

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/pasteflow/api"
	"github.com/macropower/pasteflow/api/v1beta1"
	"github.com/macropower/pasteflow/pkg/detect"
	"github.com/macropower/pasteflow/pkg/highlight"
	"github.com/macropower/pasteflow/pkg/hotkey"
	"github.com/macropower/pasteflow/pkg/rule"
	"github.com/macropower/pasteflow/pkg/transform"
	"github.com/macropower/pasteflow/pkg/yaml"
)

const (
	// Kind is the kind of a [Configuration].
	Kind = "Configuration"

	// DefaultSuggestions is the default number of suggestions per clipboard.
	DefaultSuggestions = 3

	schemaURL = "/configs.v1beta1.json"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	// ValidKinds contains the valid kind values for configurations.
	ValidKinds = []string{Kind}

	// SchemaJSON is the JSON schema for [Configuration].
	SchemaJSON = mustGenerateSchema()

	// DefaultValidator validates configuration against [SchemaJSON].
	DefaultValidator = yaml.MustNewValidator(schemaURL, SchemaJSON)

	ErrDuplicateRuleID = errors.New("duplicate rule id")
	ErrEmptyRuleID     = errors.New("rule id is empty")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrNegativeLimit   = errors.New("suggestions must not be negative")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Configuration)(nil)
)

// Configuration is the pasteflow configuration file.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Configuration struct {
	// Hotkey configures the global hotkey.
	Hotkey *Hotkey `json:"hotkey,omitempty" jsonschema:"title=Hotkey"`
	// UI configures the suggestion panel.
	UI *UI `json:"ui,omitempty" jsonschema:"title=UI"`

	v1beta1.TypeMeta `json:",inline"`

	// Rules are the configured rules, in priority order for ties.
	Rules []*rule.Rule `json:"rules,omitempty" jsonschema:"title=Rules"`
}

// Hotkey configures the global hotkey.
type Hotkey struct {
	// Apps maps application names to combos used while they are active.
	Apps map[string]string `json:"apps,omitempty" jsonschema:"title=Application Overrides"`
	// Combo is the default combo, e.g. "Cmd+Shift+V".
	Combo string `json:"combo,omitempty" jsonschema:"title=Combo"`
}

// UI configures the suggestion panel.
type UI struct {
	// Suggestions is the maximum number of suggestions shown.
	Suggestions *int `json:"suggestions,omitempty" jsonschema:"title=Suggestions,minimum=0"`
	// Theme is the chroma style for previews.
	Theme string `json:"theme,omitempty" jsonschema:"title=Theme"`
}

// New creates a new [Configuration] with default values and no rules.
func New() *Configuration {
	c := &Configuration{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

// Default returns the embedded default configuration.
func Default() *Configuration {
	c := New()

	err := yaml.Unmarshal(defaultConfigYAML, c)
	if err != nil {
		panic(fmt.Errorf("decode default config: %w", err))
	}

	c.EnsureDefaults()

	return c
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Configuration) EnsureDefaults() {
	if c.Hotkey == nil {
		c.Hotkey = &Hotkey{}
	}
	if c.Hotkey.Combo == "" {
		c.Hotkey.Combo = hotkey.Default
	}

	if c.UI == nil {
		c.UI = &UI{}
	}
	if c.UI.Suggestions == nil {
		n := DefaultSuggestions
		c.UI.Suggestions = &n
	}
	if c.UI.Theme == "" {
		c.UI.Theme = highlight.DefaultTheme
	}
}

// Limit returns the configured number of suggestions.
func (c *Configuration) Limit() int {
	if c.UI == nil || c.UI.Suggestions == nil {
		return DefaultSuggestions
	}

	return *c.UI.Suggestions
}

// ComboFor returns the hotkey combo used while app is active.
func (c *Configuration) ComboFor(app string) string {
	if combo, ok := c.Hotkey.Apps[app]; ok && combo != "" {
		return combo
	}

	return c.Hotkey.Combo
}

// Validate checks requirements the schema cannot express. Errors are
// [*yaml.Error]s located at the offending field.
func (c *Configuration) Validate() error {
	err := v1beta1.CheckTypeMeta(c, ValidKinds)
	switch {
	case errors.Is(err, v1beta1.ErrUnknownAPIVersion):
		return yaml.NewError(err, yaml.WithPath(pathOf("apiVersion")))
	case err != nil:
		return yaml.NewError(err, yaml.WithPath(pathOf("kind")))
	}

	_, err = hotkey.Parse(c.Hotkey.Combo)
	if err != nil {
		return yaml.NewError(err, yaml.WithPath(pathOf("hotkey", "combo")))
	}

	for _, app := range slices.Sorted(maps.Keys(c.Hotkey.Apps)) {
		_, err = hotkey.Parse(c.Hotkey.Apps[app])
		if err != nil {
			return yaml.NewError(err, yaml.WithPath(pathOf("hotkey", "apps", app)))
		}
	}

	if c.Limit() < 0 {
		return yaml.NewError(ErrNegativeLimit, yaml.WithPath(pathOf("ui", "suggestions")))
	}

	if !highlight.ValidTheme(c.UI.Theme) {
		return yaml.NewError(
			fmt.Errorf("%w %q", ErrUnknownTheme, c.UI.Theme),
			yaml.WithPath(pathOf("ui", "theme")),
		)
	}

	seen := make(map[string]int, len(c.Rules))
	for i, r := range c.Rules {
		err = validateRule(r, i, seen)
		if err != nil {
			return err
		}
	}

	return nil
}

func validateRule(r *rule.Rule, i int, seen map[string]int) error {
	if r.ID == "" {
		return yaml.NewError(ErrEmptyRuleID, yaml.WithPath(rulePath(i, "id")))
	}
	if first, ok := seen[r.ID]; ok {
		return yaml.NewError(
			fmt.Errorf("%w %q, first defined at rules[%d]", ErrDuplicateRuleID, r.ID, first),
			yaml.WithPath(rulePath(i, "id")),
		)
	}

	seen[r.ID] = i

	if r.Transform != nil && !r.Transform.Valid() {
		return yaml.NewError(
			fmt.Errorf("%w: %q", transform.ErrUnknownKind, *r.Transform),
			yaml.WithPath(rulePath(i, "transform")),
		)
	}

	for _, ct := range r.Match.ContentTypes {
		if !ct.Valid() {
			return yaml.NewError(
				fmt.Errorf("unknown content type %q", ct),
				yaml.WithPath(rulePath(i, "match", "contentTypes")),
			)
		}
	}

	return nil
}

// Warnings returns problems that do not prevent loading. A rule with an
// invalid regex or expression never matches.
func (c *Configuration) Warnings() []error {
	var warnings []error

	for _, r := range c.Rules {
		err := r.CheckRegex()
		if err != nil {
			warnings = append(warnings, fmt.Errorf("rule %q: invalid regex: %w", r.ID, err))
		}

		err = r.CheckExpr()
		if err != nil {
			warnings = append(warnings, fmt.Errorf("rule %q: invalid expression: %w", r.ID, err))
		}
	}

	return warnings
}

// Rule returns the first rule with the given id.
func (c *Configuration) Rule(id string) (*rule.Rule, bool) {
	return rule.Find(c.Rules, id)
}

// SetAutoAccept sets the auto-accept flag of the rule with the given id.
// It returns false if there is no such rule.
func (c *Configuration) SetAutoAccept(id string, enabled bool) bool {
	r, ok := c.Rule(id)
	if !ok {
		return false
	}

	r.AutoAccept = enabled

	return true
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	out := &Configuration{
		TypeMeta: c.TypeMeta,
	}

	if c.Hotkey != nil {
		out.Hotkey = &Hotkey{
			Combo: c.Hotkey.Combo,
			Apps:  maps.Clone(c.Hotkey.Apps),
		}
	}

	if c.UI != nil {
		ui := *c.UI
		if c.UI.Suggestions != nil {
			n := *c.UI.Suggestions
			ui.Suggestions = &n
		}

		out.UI = &ui
	}

	if c.Rules != nil {
		out.Rules = make([]*rule.Rule, len(c.Rules))
		for i, r := range c.Rules {
			out.Rules[i] = r.Clone()
		}
	}

	return out
}

func (c Configuration) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// MarshalYAML serializes the configuration to YAML.
func (c Configuration) MarshalYAML() ([]byte, error) {
	type alias Configuration

	b, err := api.MarshalYAML(alias(c))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Write writes the configuration to path if it doesn't already exist.
func (c Configuration) Write(path string) error {
	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteIfNotExists(path, b)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// DefaultYAML returns the embedded default config.yaml.
func DefaultYAML() []byte {
	return slices.Clone(defaultConfigYAML)
}

// GetPath returns the path to the configuration file.
func GetPath() string {
	return api.GetConfigPath("config.yaml")
}

func pathOf(keys ...string) *yaml.Path {
	b := yaml.NewPathBuilder().Root()
	for _, k := range keys {
		b = b.Child(k)
	}

	return b.Build()
}

func rulePath(i int, keys ...string) *yaml.Path {
	b := yaml.NewPathBuilder().Root().Child("rules").Index(uint(i))
	for _, k := range keys {
		b = b.Child(k)
	}

	return b.Build()
}

func mustGenerateSchema() []byte {
	gen := yaml.NewSchemaGenerator(&Configuration{},
		yaml.WithTypeSchema(
			reflect.TypeFor[detect.ContentType](),
			yaml.EnumSchema("Content Type", detect.AllContentTypes),
		),
		yaml.WithTypeSchema(
			reflect.TypeFor[transform.Kind](),
			yaml.EnumSchema("Transform", transform.Kinds),
		),
	)

	b, err := gen.Generate()
	if err != nil {
		panic(fmt.Errorf("generate config schema: %w", err))
	}

	return b
}
