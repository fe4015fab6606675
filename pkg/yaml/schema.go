package yaml

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator generates JSON schemas from Go types.
// Uses [github.com/invopop/jsonschema].
type SchemaGenerator struct {
	typeSchemas map[reflect.Type]*jsonschema.Schema
	value       any
}

// SchemaOpt configures a [SchemaGenerator].
type SchemaOpt func(*SchemaGenerator)

// WithTypeSchema uses s as the schema for every field of type t.
func WithTypeSchema(t reflect.Type, s *jsonschema.Schema) SchemaOpt {
	return func(g *SchemaGenerator) {
		g.typeSchemas[t] = s
	}
}

// NewSchemaGenerator creates a [SchemaGenerator] for the type of v.
func NewSchemaGenerator(v any, opts ...SchemaOpt) *SchemaGenerator {
	g := &SchemaGenerator{
		value:       v,
		typeSchemas: map[reflect.Type]*jsonschema.Schema{},
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			return g.typeSchemas[t]
		},
	}

	b, err := json.MarshalIndent(r.Reflect(g.value), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return b, nil
}

// EnumSchema returns a string schema allowing only values.
func EnumSchema[T ~string](title string, values []T) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}

	return &jsonschema.Schema{
		Type:  "string",
		Title: title,
		Enum:  enum,
	}
}
