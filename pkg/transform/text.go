package transform

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/macropower/pasteflow/internal/lines"
	"github.com/macropower/pasteflow/pkg/detect"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// stripFormatting normalizes line endings to "\n", trims the document,
// trims trailing whitespace from each line, and collapses runs of blank
// lines into a single blank line. Trimming the document also removes the
// first line's indentation.
func stripFormatting(input string) string {
	text := strings.TrimSpace(lineEndings.Replace(input))

	ls := lines.Split(text)
	for i, l := range ls {
		ls[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}

	return blankRunRe.ReplaceAllString(strings.Join(ls, "\n"), "\n\n")
}

// normalizeBullets rewrites "-", "*" and "•" bullet lines as
// indent + "- " + content. Other lines are unchanged.
func normalizeBullets(input string) string {
	ls := lines.Split(strings.ReplaceAll(input, "\r\n", "\n"))

	for i, l := range ls {
		if indent, content, ok := cutBullet(l); ok {
			ls[i] = indent + "- " + content
		}
	}

	return strings.Join(ls, "\n")
}

// cutBullet splits a bullet line into its indentation and trimmed content.
// A marker must be followed by at least one whitespace character; the
// content may be empty.
func cutBullet(line string) (string, string, bool) {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	indent := line[:len(line)-len(rest)]

	r, size := utf8.DecodeRuneInString(rest)
	if !detect.IsBulletMarker(r) {
		return "", "", false
	}

	rest = rest[size:]

	r, _ = utf8.DecodeRuneInString(rest)
	if rest == "" || !unicode.IsSpace(r) {
		return "", "", false
	}

	return indent, strings.TrimSpace(rest), true
}
