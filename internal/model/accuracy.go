package model

// FieldScore is one field's comparison against ground truth.
type FieldScore struct {
	Field    string  `json:"field"`
	Expected any     `json:"expected"`
	Actual   any     `json:"actual"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
}

// Perfect reports whether the field matched exactly.
func (f FieldScore) Perfect() bool { return f.Score == 1.0 }

// DocumentAccuracy is the weighted accuracy of one reconciled record.
type DocumentAccuracy struct {
	Overall        float64      `json:"overall_accuracy"`
	PerfectMatches int          `json:"perfect_matches"`
	TotalFields    int          `json:"total_fields"`
	Fields         []FieldScore `json:"fields"`
}

// BatchAccuracy aggregates document accuracies across a corpus.
type BatchAccuracy struct {
	MeanAccuracy float64            `json:"mean_accuracy"`
	PerField     map[string]float64 `json:"per_field"`
	Documents    int                `json:"documents"`
}
