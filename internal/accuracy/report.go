package accuracy

import (
	"fmt"
	"strings"

	"github.com/harborline/shipdocs/internal/model"
)

// Report renders a document accuracy result as a human-readable table.
func Report(doc model.DocumentAccuracy) string {
	var b strings.Builder

	b.WriteString("Accuracy Report\n")
	b.WriteString("===============\n")
	fmt.Fprintf(&b, "Overall: %.1f%% (%d/%d perfect)\n\n", doc.Overall*100, doc.PerfectMatches, doc.TotalFields)

	for _, fs := range doc.Fields {
		marker := "~"
		switch {
		case fs.Score == 1.0:
			marker = "✓"
		case fs.Score == 0.0:
			marker = "✗"
		}
		fmt.Fprintf(&b, "%s %-24s %.2f  expected=%v actual=%v\n",
			marker, fs.Field, fs.Score, displayValue(fs.Expected), displayValue(fs.Actual))
	}
	return b.String()
}

// BatchReport renders batch accuracy with per-field breakdown.
func BatchReport(batch model.BatchAccuracy) string {
	var b strings.Builder

	b.WriteString("Batch Accuracy Report\n")
	b.WriteString("=====================\n")
	fmt.Fprintf(&b, "Documents: %d\n", batch.Documents)
	fmt.Fprintf(&b, "Mean accuracy: %.1f%%\n\n", batch.MeanAccuracy*100)

	for _, field := range model.CanonicalFields {
		if score, ok := batch.PerField[field]; ok {
			fmt.Fprintf(&b, "  %-24s %.1f%%\n", field, score*100)
		}
	}
	return b.String()
}

func displayValue(v any) any {
	if v == nil {
		return "<missing>"
	}
	return v
}
