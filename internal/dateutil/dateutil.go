// Package dateutil resolves footer date values such as "auto" and
// "auto:DD/MM/YYYY" into formatted dates.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds user-supplied format strings.
const MaxDateFormatLength = 50

// DefaultDateFormat is used for a bare "auto".
const DefaultDateFormat = "YYYY-MM-DD"

const autoKeyword = "auto"

// Layout tokens, longest first so "MMMM" wins over "MM".
var layoutTokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets are named shortcuts accepted after "auto:".
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD, D)
// into a Go time layout. Text inside brackets is kept literally, so
// "[Week of] D MMM" keeps "Week of". Other characters pass through.
func ParseDateFormat(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	case len(format) > MaxDateFormatLength:
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				pos := len(format) - len(rest)
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, pos)
			}
			b.WriteString(literal)
			rest = after
			continue
		}
		if layout, n := matchToken(rest); n > 0 {
			b.WriteString(layout)
			rest = rest[n:]
			continue
		}
		b.WriteByte(rest[0])
		rest = rest[1:]
	}
	return b.String(), nil
}

func matchToken(s string) (layout string, n int) {
	for _, t := range layoutTokens {
		if strings.HasPrefix(s, t.token) {
			return t.layout, len(t.token)
		}
	}
	return "", 0
}

// ResolveDate expands "auto", "auto:FORMAT" and "auto:PRESET" using now.
// Any value not starting with "auto" is returned unchanged.
func ResolveDate(value string, now time.Time) (string, error) {
	if len(value) < len(autoKeyword) || !strings.EqualFold(value[:len(autoKeyword)], autoKeyword) {
		return value, nil
	}

	format := DefaultDateFormat
	if suffix := value[len(autoKeyword):]; suffix != "" {
		name, ok := strings.CutPrefix(suffix, ":")
		if !ok {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		if name == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		format = name
		if preset, ok := DatePresets[strings.ToLower(name)]; ok {
			format = preset
		}
	}

	layout, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}
