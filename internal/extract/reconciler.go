package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/harborline/shipdocs/internal/model"
)

// Reconciler resolves every canonical field by walking an ordered strategy
// chain. The first strategy that produces a usable value wins the field;
// fields no strategy can serve stay present with source "none".
type Reconciler struct {
	strategies []Strategy
}

// NewReconciler builds a reconciler. With no arguments the default chain is
// used: llm, computed, spreadsheet, rule.
func NewReconciler(strategies ...Strategy) *Reconciler {
	if len(strategies) == 0 {
		strategies = []Strategy{
			LLMStrategy{},
			ComputedStrategy{},
			SpreadsheetStrategy{},
			RuleStrategy{},
		}
	}
	return &Reconciler{strategies: strategies}
}

// Reconcile produces a fully populated record for the input.
func (r *Reconciler) Reconcile(ctx context.Context, in *Input) *model.ExtractionRecord {
	record := model.NewExtractionRecord()
	if in.LLM != nil {
		record.Provider = in.LLMProvider
	}

	for _, field := range model.CanonicalFields {
		for _, strat := range r.strategies {
			value, ok := strat.Resolve(ctx, field, in)
			if !ok {
				continue
			}

			provider := ""
			if strat.Source() == model.SourceLLM {
				provider = in.LLMProvider
			}
			record.Set(field, value, strat.Source(), provider)

			zap.L().Debug("field resolved",
				zap.String("field", field),
				zap.String("source", string(strat.Source())),
			)
			break
		}
		if !record.Resolved(field) {
			zap.L().Debug("field unresolved", zap.String("field", field))
		}
	}
	return record
}
