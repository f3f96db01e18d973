// Package accuracy scores reconciled extraction records against ground truth
// and aggregates the results across batches.
package accuracy

import (
	"sort"

	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
	"github.com/harborline/shipdocs/internal/similarity"
)

// DefaultFieldWeight applies to any field without an explicit weight.
const DefaultFieldWeight = 0.5

// Scorer computes weighted document accuracy.
type Scorer struct {
	sim           *similarity.Scorer
	weights       map[string]float64
	defaultWeight float64
}

// NewScorer builds a document scorer. A nil weights map means every field
// gets the default weight.
func NewScorer(sim *similarity.Scorer, weights map[string]float64, defaultWeight float64) *Scorer {
	if sim == nil {
		sim = similarity.NewScorer()
	}
	if defaultWeight <= 0 {
		defaultWeight = DefaultFieldWeight
	}
	return &Scorer{sim: sim, weights: weights, defaultWeight: defaultWeight}
}

// ScoreDocument compares extracted values against ground truth. The field
// universe is the union of both key sets after key normalization, so a field
// the extractor missed still counts against it, and a hallucinated field
// counts too.
func (s *Scorer) ScoreDocument(expected, actual map[string]any) model.DocumentAccuracy {
	exp := normalizeKeys(expected)
	act := normalizeKeys(actual)

	fields := make([]string, 0, len(exp)+len(act))
	seen := make(map[string]struct{}, len(exp)+len(act))
	for k := range exp {
		seen[k] = struct{}{}
		fields = append(fields, k)
	}
	for k := range act {
		if _, ok := seen[k]; !ok {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)

	doc := model.DocumentAccuracy{Fields: make([]model.FieldScore, 0, len(fields))}
	var weightedSum, totalWeight float64

	for _, field := range fields {
		score := s.sim.Score(field, exp[field], act[field])
		weight := s.weightFor(field)

		fs := model.FieldScore{
			Field:    field,
			Expected: exp[field],
			Actual:   act[field],
			Score:    score,
			Weight:   weight,
		}
		doc.Fields = append(doc.Fields, fs)

		weightedSum += score * weight
		totalWeight += weight
		if fs.Perfect() {
			doc.PerfectMatches++
		}
	}

	doc.TotalFields = len(fields)
	if totalWeight > 0 {
		doc.Overall = weightedSum / totalWeight
	}

	zap.L().Debug("scored document",
		zap.Float64("overall", doc.Overall),
		zap.Int("fields", doc.TotalFields),
		zap.Int("perfect", doc.PerfectMatches),
	)
	return doc
}

func (s *Scorer) weightFor(field string) float64 {
	if w, ok := s.weights[field]; ok && w > 0 {
		return w
	}
	return s.defaultWeight
}

func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[normalize.Key(k)] = v
	}
	return out
}
