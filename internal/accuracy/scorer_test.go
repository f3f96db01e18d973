package accuracy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipdocs/internal/model"
)

func TestScoreDocumentAllPerfect(t *testing.T) {
	s := NewScorer(nil, nil, 0)

	expected := map[string]any{
		"bill_of_lading_number": "ABC12345",
		"container_number":      "MSKU1234567",
		"date":                  "2024-09-05",
	}
	actual := map[string]any{
		"bill_of_lading_number": "abc-12345",
		"container_number":      "MSKU1234567",
		"date":                  "09/05/2024",
	}

	doc := s.ScoreDocument(expected, actual)
	assert.Equal(t, 1.0, doc.Overall)
	assert.Equal(t, 3, doc.PerfectMatches)
	assert.Equal(t, 3, doc.TotalFields)
}

func TestScoreDocumentWeightNormalization(t *testing.T) {
	weights := map[string]float64{
		"bill_of_lading_number": 1.0,
		"consignee_name":        0.5,
	}
	s := NewScorer(nil, weights, 0.5)

	expected := map[string]any{
		"bill_of_lading_number": "ABC12345",
		"consignee_name":        "John Doe",
	}
	actual := map[string]any{
		"bill_of_lading_number": "ABC12345",
		"consignee_name":        nil,
	}

	doc := s.ScoreDocument(expected, actual)
	// (1.0*1.0 + 0.0*0.5) / 1.5
	assert.InDelta(t, 1.0/1.5, doc.Overall, 1e-9)
	assert.Equal(t, 1, doc.PerfectMatches)
}

func TestScoreDocumentKeyUnion(t *testing.T) {
	s := NewScorer(nil, nil, 0)

	// Extractor missed "date" and hallucinated "vessel_name": both count.
	expected := map[string]any{"date": "2024-09-05"}
	actual := map[string]any{"vessel_name": "Ever Given"}

	doc := s.ScoreDocument(expected, actual)
	assert.Equal(t, 2, doc.TotalFields)
	assert.Equal(t, 0.0, doc.Overall)
}

func TestScoreDocumentAliasedKeys(t *testing.T) {
	s := NewScorer(nil, nil, 0)

	expected := map[string]any{"BOL": "ABC12345"}
	actual := map[string]any{"bill_of_lading_number": "ABC12345"}

	doc := s.ScoreDocument(expected, actual)
	require.Equal(t, 1, doc.TotalFields)
	assert.Equal(t, 1.0, doc.Overall)
}

func TestScoreDocumentEmpty(t *testing.T) {
	s := NewScorer(nil, nil, 0)
	doc := s.ScoreDocument(nil, nil)
	assert.Equal(t, 0.0, doc.Overall)
	assert.Equal(t, 0, doc.TotalFields)
}

func TestScoreBatchEqualWeight(t *testing.T) {
	docs := []model.DocumentAccuracy{
		{Overall: 1.0, Fields: []model.FieldScore{{Field: "date", Score: 1.0}}},
		{Overall: 0.5, Fields: []model.FieldScore{{Field: "date", Score: 0.5}}},
		{Overall: 0.0},
	}
	batch := ScoreBatch(docs)
	assert.InDelta(t, 0.5, batch.MeanAccuracy, 1e-9)
	assert.Equal(t, 3, batch.Documents)
	// Only two documents scored the date field.
	assert.InDelta(t, 0.75, batch.PerField["date"], 1e-9)
}

func TestScoreBatchEmpty(t *testing.T) {
	batch := ScoreBatch(nil)
	assert.Equal(t, 0.0, batch.MeanAccuracy)
	assert.Equal(t, 0, batch.Documents)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.DefaultWeight)
	assert.Equal(t, 0.7, cfg.DatePartialCredit)
	assert.Equal(t, 0.3, cfg.TextFloor)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	data := `scoring:
  date_partial_credit: 0.8
  field_weights:
    bill_of_lading_number: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.DatePartialCredit)
	assert.Equal(t, 0.3, cfg.TextFloor)
	assert.Equal(t, 2.0, cfg.FieldWeights["bill_of_lading_number"])

	s := cfg.NewScorer()
	doc := s.ScoreDocument(
		map[string]any{"date": "2024-09-05"},
		map[string]any{"date": "2024-09-06"},
	)
	assert.InDelta(t, 0.8, doc.Overall, 1e-9)
}

func TestReportMarkers(t *testing.T) {
	doc := model.DocumentAccuracy{
		Overall:        0.75,
		PerfectMatches: 1,
		TotalFields:    2,
		Fields: []model.FieldScore{
			{Field: "date", Expected: "2024-09-05", Actual: "2024-09-05", Score: 1.0, Weight: 0.5},
			{Field: "consignee_name", Expected: "John Doe", Actual: nil, Score: 0.0, Weight: 0.5},
		},
	}
	out := Report(doc)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "<missing>")
}
