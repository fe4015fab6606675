// Package config loads, validates, stores and saves pasteflow
// configuration files.
//
// A [Loader] decodes YAML, validates it against a JSON schema and then
// against the semantic checks of the configured type. A [Store] holds the
// active configuration as an immutable snapshot, and a [Watcher] swaps in
// a new snapshot whenever the file changes on disk.
package config
