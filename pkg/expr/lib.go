package expr

import (
	"log/slog"
	"math"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/macropower/pasteflow/internal/lines"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Math(),
		ext.Strings(),
		ext.Lists(),

		// `lines` splits text into lines.
		// Example: lines(text).size() > 3.
		cel.Function("lines",
			cel.Overload("lines_string", []*cel.Type{cel.StringType}, cel.ListType(cel.StringType),
				cel.UnaryBinding(func(text ref.Val) ref.Val {
					textValue, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("lines: invalid string value")
					}

					ls := lines.Split(textValue)
					if ls == nil {
						ls = []string{}
					}

					return types.NewStringList(types.DefaultTypeAdapter, ls)
				}),
			),
		),

		// `yamlPath` parses text as YAML (or JSON) and extracts a value using a YAML path.
		// Returns the value at the specified path, or null if the text can't be parsed or the path doesn't exist.
		// Example: yamlPath(text, "$.kind") == "Deployment".
		cel.Function("yamlPath",
			cel.Overload("yaml_path", []*cel.Type{cel.StringType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(text, yamlPathExpr ref.Val) ref.Val {
					textStr, ok := text.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid text")
					}

					yamlPathStr, ok := yamlPathExpr.(types.String).Value().(string)
					if !ok {
						return types.NewErr("yamlPath: invalid yaml path")
					}

					path, err := yaml.PathString(yamlPathStr)
					if err != nil {
						slog.Debug("invalid YAML path, returning null",
							slog.String("yamlPath", yamlPathStr),
							slog.Any("error", err),
						)

						return types.NullValue
					}

					var value any

					err = path.Read(strings.NewReader(textStr), &value)
					if err != nil {
						return types.NullValue
					}

					return ConvertToCELValue(value)
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// ConvertToCELValue converts a Go value to a CEL value.
// Handles common YAML types and returns null for unsupported types.
//
//nolint:ireturn // Following CEL's function signature.
func ConvertToCELValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return types.NullValue

	case bool:
		return types.Bool(v)

	case int:
		return types.Int(v)

	case int64:
		return types.Int(v)

	case uint64:
		// Check for overflow when converting to int64.
		if v > math.MaxInt64 {
			return types.Double(float64(v))
		}

		return types.Int(int64(v))

	case float64:
		return types.Double(v)

	case string:
		return types.String(v)

	case []any:
		celValues := make([]ref.Val, len(v))
		for i, item := range v {
			celValues[i] = ConvertToCELValue(item)
		}

		return types.NewDynamicList(types.DefaultTypeAdapter, celValues)

	case map[string]any:
		celMap := make(map[ref.Val]ref.Val)
		for key, val := range v {
			celMap[types.String(key)] = ConvertToCELValue(val)
		}

		return types.NewDynamicMap(types.DefaultTypeAdapter, celMap)

	default:
		// For unsupported types, return null instead of erroring.
		return types.NullValue
	}
}
