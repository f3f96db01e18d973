// Package similarity scores extracted field values against ground truth with
// type-aware comparison rules.
package similarity

import (
	"math"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
)

const (
	// DefaultDatePartialCredit is the score for two values that both contain
	// a date but disagree on which one.
	DefaultDatePartialCredit = 0.7
	// DefaultTextFloor is the threshold below which free-text similarity
	// clamps to zero.
	DefaultTextFloor = 0.3

	floatEpsilon = 1e-6
)

var dateTokenRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`),
	regexp.MustCompile(`\d{2}[-/]\d{2}[-/]\d{2}`),
}

// Scorer computes per-field similarity in [0,1].
type Scorer struct {
	datePartialCredit float64
	textFloor         float64
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithDatePartialCredit overrides the partial-credit score for mismatched dates.
func WithDatePartialCredit(v float64) Option {
	return func(s *Scorer) { s.datePartialCredit = v }
}

// WithTextFloor overrides the free-text clamp threshold.
func WithTextFloor(v float64) Option {
	return func(s *Scorer) { s.textFloor = v }
}

// NewScorer creates a Scorer with the default thresholds.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		datePartialCredit: DefaultDatePartialCredit,
		textFloor:         DefaultTextFloor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score compares expected and actual for the given field. Both values are
// normalized first. Two missing values agree perfectly; a missing value
// against a present one scores zero.
func (s *Scorer) Score(field string, expected, actual any) float64 {
	e := normalize.Value(field, expected)
	a := normalize.Value(field, actual)

	if e == nil && a == nil {
		return 1.0
	}
	if e == nil || a == nil {
		return 0.0
	}

	switch model.ClassOf(field) {
	case model.ClassNumeric:
		return s.numeric(e, a)
	case model.ClassIdentifier:
		return s.identifier(e, a)
	case model.ClassDate:
		return s.date(e, a)
	default:
		return s.text(toString(e), toString(a))
	}
}

func (s *Scorer) numeric(e, a any) float64 {
	ef, eok := e.(float64)
	af, aok := a.(float64)
	if !eok || !aok {
		return 0.0
	}
	if math.Abs(ef-af) < floatEpsilon {
		return 1.0
	}
	return 0.0
}

// identifier compares with separators removed, so "BOL-123-456" matches
// "BOL123456" exactly. Non-equal identifiers score by edit similarity.
func (s *Scorer) identifier(e, a any) float64 {
	es := stripSeparators(toString(e))
	as := stripSeparators(toString(a))
	if es == as {
		return 1.0
	}
	return levenshtein.Similarity(es, as, nil)
}

// date looks for the first date-like token on each side. Both present and
// equal scores full credit, both present but different scores partial
// credit, anything else falls through to text comparison.
func (s *Scorer) date(e, a any) float64 {
	es, as := toString(e), toString(a)
	et, eok := firstDateToken(es)
	at, aok := firstDateToken(as)
	if eok && aok {
		if normalize.Date(et) == normalize.Date(at) {
			return 1.0
		}
		return s.datePartialCredit
	}
	return s.text(es, as)
}

func (s *Scorer) text(e, a string) float64 {
	if e == a {
		return 1.0
	}
	score := levenshtein.Similarity(e, a, nil)
	if score <= s.textFloor {
		return 0.0
	}
	return score
}

func firstDateToken(s string) (string, bool) {
	for _, re := range dateTokenRes {
		if m := re.FindString(s); m != "" {
			return m, true
		}
	}
	return "", false
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '/':
			return -1
		}
		return r
	}, s)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
