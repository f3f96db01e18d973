package accuracy

import "github.com/harborline/shipdocs/internal/model"

// ScoreBatch aggregates document accuracies into corpus-level numbers.
// Every document contributes equally to the mean regardless of how many
// fields it scored. Per-field means only average over documents that
// actually scored the field.
func ScoreBatch(docs []model.DocumentAccuracy) model.BatchAccuracy {
	batch := model.BatchAccuracy{
		PerField:  make(map[string]float64),
		Documents: len(docs),
	}
	if len(docs) == 0 {
		return batch
	}

	var sum float64
	fieldSums := make(map[string]float64)
	fieldCounts := make(map[string]int)

	for _, doc := range docs {
		sum += doc.Overall
		for _, fs := range doc.Fields {
			fieldSums[fs.Field] += fs.Score
			fieldCounts[fs.Field]++
		}
	}

	batch.MeanAccuracy = sum / float64(len(docs))
	for field, total := range fieldSums {
		batch.PerField[field] = total / float64(fieldCounts[field])
	}
	return batch
}
