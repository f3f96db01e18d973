package model

import "time"

// Source identifies which strategy produced a field value.
type Source string

const (
	SourceLLM         Source = "llm"
	SourceRule        Source = "rule"
	SourceSpreadsheet Source = "spreadsheet"
	SourceComputed    Source = "computed"
	SourceNone        Source = "none"
)

// FieldValue is a resolved value together with its provenance.
// Provider names the LLM backend when Source is SourceLLM, otherwise empty.
type FieldValue struct {
	Value    any    `json:"value"`
	Source   Source `json:"source"`
	Provider string `json:"llm_provider,omitempty"`
}

// ExtractionRecord is the reconciled output for one document set. Every
// canonical field is present; unresolved fields carry SourceNone and a nil
// value. Provider names the LLM backend that ran for this extraction, even
// when none of its fields won, and is empty when no backend ran.
type ExtractionRecord struct {
	Fields   map[string]FieldValue `json:"fields"`
	Provider string                `json:"llm_provider,omitempty"`
}

// NewExtractionRecord returns a record with all canonical fields unresolved.
func NewExtractionRecord() *ExtractionRecord {
	r := &ExtractionRecord{Fields: make(map[string]FieldValue, len(CanonicalFields))}
	for _, f := range CanonicalFields {
		r.Fields[f] = FieldValue{Source: SourceNone}
	}
	return r
}

// Set records a resolved value for a field.
func (r *ExtractionRecord) Set(field string, value any, source Source, provider string) {
	r.Fields[field] = FieldValue{Value: value, Source: source, Provider: provider}
}

// Values flattens the record into a plain field -> value map, dropping
// provenance. Used when scoring against ground truth.
func (r *ExtractionRecord) Values() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for k, fv := range r.Fields {
		out[k] = fv.Value
	}
	return out
}

// Resolved reports whether the field holds a value from any real source.
func (r *ExtractionRecord) Resolved(field string) bool {
	fv, ok := r.Fields[field]
	return ok && fv.Source != SourceNone
}

// LineItem is one structured invoice or packing-list row.
type LineItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	GrossWeight *float64 `json:"gross_weight,omitempty"`
}

// LineItemMetrics are aggregates computed from spreadsheet line items.
// A nil member means the metric could not be derived from the sheet.
type LineItemMetrics struct {
	Count              *int     `json:"line_items_count"`
	AverageGrossWeight *float64 `json:"average_gross_weight"`
	AveragePrice       *float64 `json:"average_price"`
}

// Empty reports whether no metric was derived at all.
func (m *LineItemMetrics) Empty() bool {
	return m == nil || (m.Count == nil && m.AverageGrossWeight == nil && m.AveragePrice == nil)
}

// Document is a processed document set as persisted by the store.
type Document struct {
	ID        string            `json:"id"`
	Filenames []string          `json:"filenames"`
	RawText   string            `json:"raw_text,omitempty"`
	Record    *ExtractionRecord `json:"record"`
	Accuracy  *DocumentAccuracy `json:"accuracy,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
