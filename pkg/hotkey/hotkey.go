// Package hotkey parses global hotkey combinations such as "Cmd+Shift+V".
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Default is the default hotkey combination.
const Default = "Cmd+Shift+V"

// ErrInvalid is returned for combinations that cannot be parsed.
var ErrInvalid = errors.New("invalid hotkey")

// Modifier is a modifier key.
type Modifier int

const (
	Cmd Modifier = iota
	Ctrl
	Alt
	Shift
)

var modifierNames = map[string]Modifier{
	"cmd":     Cmd,
	"command": Cmd,
	"super":   Cmd,
	"meta":    Cmd,
	"ctrl":    Ctrl,
	"control": Ctrl,
	"alt":     Alt,
	"option":  Alt,
	"shift":   Shift,
}

func (m Modifier) String() string {
	switch m {
	case Cmd:
		return "Cmd"
	case Ctrl:
		return "Ctrl"
	case Alt:
		return "Alt"
	case Shift:
		return "Shift"
	default:
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
}

// Hotkey is a parsed key combination.
type Hotkey struct {
	Modifiers []Modifier
	Key       rune
}

// Parse parses a "+"-separated combination of modifiers followed by a
// single letter or digit key. Names are case-insensitive.
func Parse(combo string) (Hotkey, error) {
	parts := strings.Split(combo, "+")
	if len(parts) < 2 {
		return Hotkey{}, fmt.Errorf("%w %q: want modifiers and a key", ErrInvalid, combo)
	}

	var hk Hotkey

	seen := map[Modifier]bool{}

	for _, p := range parts[:len(parts)-1] {
		name := strings.ToLower(strings.TrimSpace(p))

		m, ok := modifierNames[name]
		if !ok {
			return Hotkey{}, fmt.Errorf("%w %q: unknown modifier %q", ErrInvalid, combo, p)
		}
		if seen[m] {
			return Hotkey{}, fmt.Errorf("%w %q: duplicate modifier %q", ErrInvalid, combo, p)
		}

		seen[m] = true
		hk.Modifiers = append(hk.Modifiers, m)
	}

	key := strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
	if len(key) != 1 || !isKey(key[0]) {
		return Hotkey{}, fmt.Errorf("%w %q: key must be a single letter or digit", ErrInvalid, combo)
	}

	hk.Key = rune(key[0])

	return hk, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(combo string) Hotkey {
	hk, err := Parse(combo)
	if err != nil {
		panic(err)
	}

	return hk
}

// Has reports whether m is one of the hotkey's modifiers.
func (h Hotkey) Has(m Modifier) bool {
	for _, hm := range h.Modifiers {
		if hm == m {
			return true
		}
	}

	return false
}

// String returns the canonical form, e.g. "Cmd+Shift+V".
func (h Hotkey) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, m.String())
	}

	return strings.Join(append(parts, string(h.Key)), "+")
}

func isKey(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
