// Package lines splits text into lines.
package lines

import "strings"

// Split splits s on "\n", dropping a trailing "\r" from each line.
// A final line terminator does not produce an empty trailing line,
// and empty input yields no lines.
func Split(s string) []string {
	if s == "" {
		return nil
	}

	out := strings.Split(s, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	for i, l := range out {
		out[i] = strings.TrimSuffix(l, "\r")
	}

	return out
}
