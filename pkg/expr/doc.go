// Package expr provides CEL (Common Expression Language) functionality
// for evaluating rule expressions against clipboard text.
//
// It creates CEL environments with custom functions for:
//   - Line operations (lines)
//   - Structured content extraction (yamlPath)
//
// Callers declare the variables their expressions can reference.
package expr
