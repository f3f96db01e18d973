package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
)

var (
	bolRe            = regexp.MustCompile(`(?i)\b(?:bill of lading|b/l|bol)\b(?:\s+(?:no|number))?\.?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`)
	containerLabelRe = regexp.MustCompile(`(?i)container(?:\s+(?:no|number))?\.?\s*[:#]?\s*([A-Za-z]{4}\s?-?\d{7})`)
	containerBareRe  = regexp.MustCompile(`\b[A-Z]{4}\d{7}\b`)
	consigneeRe      = regexp.MustCompile(`(?im)^\s*consignee(?:\s+name)?\s*[:#]\s*(.*)$`)
	dateLabelRe      = regexp.MustCompile(`(?im)\bdate\s*[:#]\s*(.+)$`)
	labelLineRe      = regexp.MustCompile(`^\s*[A-Za-z][A-Za-z0-9 ./]{0,40}:`)
)

// Date token patterns, tried in order. ISO wins over US slash and dash forms,
// which win over spelled-out month names and two-digit years.
var dateTokenRes = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
	regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`),
	regexp.MustCompile(`\d{2}[-/]\d{2}[-/]\d{2}`),
}

// RuleStrategy pulls fields out of raw document text with label-anchored
// regex patterns. It is the last resort before giving up on a field.
type RuleStrategy struct{}

func (RuleStrategy) Source() model.Source { return model.SourceRule }

func (RuleStrategy) Resolve(_ context.Context, field string, in *Input) (any, bool) {
	if in.RawText == "" {
		return nil, false
	}

	switch field {
	case model.FieldBillOfLadingNumber:
		if m := bolRe.FindStringSubmatch(in.RawText); m != nil {
			return normalize.Identifier(m[1]), true
		}
	case model.FieldContainerNumber:
		if m := containerLabelRe.FindStringSubmatch(in.RawText); m != nil {
			return normalize.Identifier(m[1]), true
		}
		if m := containerBareRe.FindString(in.RawText); m != "" {
			return m, true
		}
	case model.FieldConsigneeName:
		if name, _ := consigneeBlock(in.RawText); name != "" {
			return name, true
		}
	case model.FieldConsigneeAddress:
		if _, addr := consigneeBlock(in.RawText); addr != "" {
			return addr, true
		}
	case model.FieldDate:
		return findDate(in.RawText)
	}
	return nil, false
}

// consigneeBlock returns the consignee name from the labeled line and the
// address from the lines that follow, up to a blank line or the next label.
func consigneeBlock(text string) (name, address string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		m := consigneeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name = strings.TrimSpace(m[1])

		var addrLines []string
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" || labelLineRe.MatchString(next) {
				break
			}
			addrLines = append(addrLines, next)
		}
		address = strings.Join(addrLines, ", ")
		return name, address
	}
	return "", ""
}

// findDate prefers a date on a "Date:"-labeled line, falling back to the
// first date-like token anywhere in the text.
func findDate(text string) (any, bool) {
	if m := dateLabelRe.FindStringSubmatch(text); m != nil {
		if tok, ok := firstDateToken(m[1]); ok {
			return tok, true
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	return firstDateToken(text)
}

func firstDateToken(s string) (string, bool) {
	for _, re := range dateTokenRes {
		if m := re.FindString(s); m != "" {
			return m, true
		}
	}
	return "", false
}
