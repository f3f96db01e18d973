// Package normalize canonicalizes extraction keys and values so that
// differently-formatted outputs compare cleanly.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harborline/shipdocs/internal/model"
)

var (
	keyStripRe    = regexp.MustCompile(`[^a-z0-9_ ]+`)
	keySpaceRe    = regexp.MustCompile(`[ ]+`)
	strCharsetRe  = regexp.MustCompile(`[^a-zA-Z0-9 \-/]+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	leadingNumRe  = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)
	currencyChars = "$€£₹"
)

// Key canonicalizes a field key: lowercase, strip punctuation, spaces to
// underscores, then alias resolution. Unknown keys pass through normalized.
func Key(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = keyStripRe.ReplaceAllString(k, "")
	k = keySpaceRe.ReplaceAllString(k, "_")
	k = strings.Trim(k, "_")
	if canonical, ok := model.FieldAliases[k]; ok {
		return canonical
	}
	return k
}

// Value normalizes a raw value according to the field's class. Empty and
// whitespace-only input normalizes to nil. Numeric fields return float64,
// everything else returns string.
func Value(field string, raw any) any {
	s, ok := asString(raw)
	if !ok {
		// Already numeric. Keep it as float64 for numeric fields.
		if f, isNum := asFloat(raw); isNum {
			if model.ClassOf(field) == model.ClassNumeric {
				return f
			}
			return formatFloat(f)
		}
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	switch model.ClassOf(field) {
	case model.ClassNumeric:
		if f, ok := ParseFloat(s); ok {
			return f
		}
		return nil
	case model.ClassDate:
		return Date(s)
	case model.ClassIdentifier:
		return Identifier(s)
	default:
		return Text(s)
	}
}

// ParseFloat extracts a leading numeric token after stripping thousands
// separators and currency symbols. Returns false when no numeric prefix
// exists.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, c := range currencyChars {
		s = strings.ReplaceAll(s, string(c), "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	m := leadingNumRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2006-01-02T15:04:05Z07:00",
	"20060102",
}

// Date normalizes a date string to YYYY-MM-DD. When no layout matches, the
// lowercased trimmed input is returned so text comparison still has a chance.
func Date(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return strings.ToLower(s)
}

// Identifier normalizes document identifiers: restricted charset, collapsed
// whitespace, uppercased. Case is not meaningful in BOL or container numbers.
func Identifier(s string) string {
	s = strCharsetRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToUpper(strings.TrimSpace(s))
}

// Text normalizes free text: restricted charset, collapsed whitespace,
// lowercased.
func Text(s string) string {
	s = strCharsetRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", true
		}
		return *s, true
	case nil:
		return "", true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case *int:
		if n == nil {
			return 0, false
		}
		return float64(*n), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	// Integral floats print without a trailing .0 so "3" and 3.0 compare equal.
	return strconv.FormatFloat(f, 'f', -1, 64)
}
