// Package timestamp recognizes and normalizes timestamp-like text.
//
// Recognized forms:
//
//   - now
//   - now+N{s|m|h|d} and now-N{s|m|h|d}
//   - Unix epoch seconds (10 digits) or milliseconds (13 digits)
//   - RFC 3339
//   - YYYY-MM-DD
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	// ErrUnrecognized is returned when input is not a recognized timestamp format.
	ErrUnrecognized = errors.New("unrecognized timestamp format")

	// ErrOutOfRange is returned when a timestamp cannot be represented.
	ErrOutOfRange = errors.New("timestamp out of range")

	relativeRe = regexp.MustCompile(`^now([+-])(\d+)([smhd])$`)

	unitSeconds = map[string]int64{
		"s": 1,
		"m": 60,
		"h": 3600,
		"d": 86400,
	}
)

// Format identifies which timestamp form some text is written in.
type Format int

const (
	FormatNone Format = iota
	FormatNow
	FormatRelative
	FormatEpochSeconds
	FormatEpochMillis
	FormatRFC3339
	FormatDate
)

func (f Format) String() string {
	switch f {
	case FormatNow:
		return "now"
	case FormatRelative:
		return "relative"
	case FormatEpochSeconds:
		return "epoch-seconds"
	case FormatEpochMillis:
		return "epoch-millis"
	case FormatRFC3339:
		return "rfc3339"
	case FormatDate:
		return "date"
	default:
		return "none"
	}
}

// Recognize returns the [Format] of s, or [FormatNone].
// Surrounding whitespace is ignored.
func Recognize(s string) Format {
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return FormatNone
	case s == "now":
		return FormatNow
	case relativeRe.MatchString(s):
		return FormatRelative
	case isDigits(s) && len(s) == 10:
		return FormatEpochSeconds
	case isDigits(s) && len(s) == 13:
		return FormatEpochMillis
	}

	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return FormatRFC3339
	}

	if _, err := time.Parse(dateLayout, s); err == nil {
		return FormatDate
	}

	return FormatNone
}

// Normalizer converts timestamps between epoch and RFC 3339 forms.
type Normalizer struct {
	now func() time.Time
}

// NormalizerOpt configures a [Normalizer].
type NormalizerOpt func(*Normalizer)

// WithClock sets the function used to resolve "now".
func WithClock(now func() time.Time) NormalizerOpt {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a new [Normalizer].
func NewNormalizer(opts ...NormalizerOpt) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize converts s to its counterpart representation:
//
//   - now and relative expressions resolve to RFC 3339.
//   - All-digit input is epoch seconds (or milliseconds when 13 digits long)
//     and resolves to RFC 3339 in UTC.
//   - RFC 3339 resolves to epoch seconds.
//   - A bare date resolves to epoch seconds at midnight UTC.
//
// Any other input returns [ErrUnrecognized].
func (n *Normalizer) Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrUnrecognized
	}

	if s == "now" {
		return format(n.now().UTC())
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		t, err := n.resolveRelative(m[1], m[2], m[3])
		if err != nil {
			return "", err
		}

		return format(t)
	}

	if isDigits(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrOutOfRange, err)
		}
		if len(s) == 13 {
			return format(time.UnixMilli(v).UTC())
		}

		return format(time.Unix(v, 0).UTC())
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return strconv.FormatInt(t.Unix(), 10), nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		return strconv.FormatInt(t.Unix(), 10), nil
	}

	return "", ErrUnrecognized
}

func (n *Normalizer) resolveRelative(sign, amount, unit string) (time.Time, error) {
	v, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	mult := unitSeconds[unit]
	if v > math.MaxInt64/mult {
		return time.Time{}, ErrOutOfRange
	}

	secs := v * mult
	if sign == "-" {
		secs = -secs
	}

	now := n.now().UTC()

	base := now.Unix()
	if (secs > 0 && base > math.MaxInt64-secs) || (secs < 0 && base < math.MinInt64-secs) {
		return time.Time{}, ErrOutOfRange
	}

	return time.Unix(base+secs, int64(now.Nanosecond())).UTC(), nil
}

// format renders t as RFC 3339, rejecting years that RFC 3339 cannot express.
func format(t time.Time) (string, error) {
	if t.Year() < 0 || t.Year() > 9999 {
		return "", ErrOutOfRange
	}

	return t.Format(time.RFC3339Nano), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
