// Package diff renders line-based unified diffs between a transform's
// input and output.
package diff

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
)

// Header labels.
const (
	BeforeLabel = "before"
	AfterLabel  = "after"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = udiff.DefaultContextLines

// Unified returns a unified diff of before and after with [ContextLines]
// lines of context. Identical inputs produce an empty string.
func Unified(before, after string) string {
	edits := udiff.Strings(before, after)

	out, err := udiff.ToUnified(BeforeLabel, AfterLabel, before, edits, ContextLines)
	if err != nil {
		// Edits computed from before are always consistent with it.
		panic(fmt.Sprintf("unified diff: %v", err))
	}

	return out
}

// Stats summarizes the changed lines between two texts.
type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Hunks   int `json:"hunks"`
}

// Changed reports whether any lines differ.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Compute returns the [Stats] for before and after.
func Compute(before, after string) Stats {
	edits := udiff.Strings(before, after)

	u, err := udiff.ToUnifiedDiff(BeforeLabel, AfterLabel, before, edits, ContextLines)
	if err != nil {
		panic(fmt.Sprintf("unified diff: %v", err))
	}

	s := Stats{Hunks: len(u.Hunks)}

	for _, h := range u.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case udiff.Insert:
				s.Added++
			case udiff.Delete:
				s.Removed++
			case udiff.Equal:
			}
		}
	}

	return s
}
