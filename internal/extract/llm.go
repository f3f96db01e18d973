package extract

import (
	"context"
	"slices"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
)

// LLMStrategy serves fields from a validated LLM payload.
type LLMStrategy struct{}

func (LLMStrategy) Source() model.Source { return model.SourceLLM }

// Resolve declines aggregate fields whenever structured line items are
// available: aggregates computed from the items themselves beat whatever
// totals the model claimed.
func (LLMStrategy) Resolve(_ context.Context, field string, in *Input) (any, bool) {
	if in.LLM == nil {
		return nil, false
	}
	if len(in.LineItems) > 0 && slices.Contains(model.AggregateFields, field) {
		return nil, false
	}
	raw, ok := in.LLM[field]
	if !ok {
		return nil, false
	}
	if normalize.Value(field, raw) == nil {
		return nil, false
	}
	return raw, true
}

// ComputedStrategy derives the aggregate fields from structured line items.
type ComputedStrategy struct{}

func (ComputedStrategy) Source() model.Source { return model.SourceComputed }

func (ComputedStrategy) Resolve(_ context.Context, field string, in *Input) (any, bool) {
	if len(in.LineItems) == 0 {
		return nil, false
	}

	switch field {
	case model.FieldLineItemsCount:
		count := 0
		for _, item := range in.LineItems {
			if item.Description != "" {
				count++
			}
		}
		if count == 0 {
			return nil, false
		}
		return count, true
	case model.FieldAverageGrossWeight:
		return mean(in.LineItems, func(i model.LineItem) *float64 { return i.GrossWeight })
	case model.FieldAveragePrice:
		return mean(in.LineItems, func(i model.LineItem) *float64 { return i.Price })
	}
	return nil, false
}

// SpreadsheetStrategy serves aggregate fields from spreadsheet-derived
// metrics. It only applies when the LLM payload carried no structured line
// items; items, even incomplete ones, supersede sheet aggregates.
type SpreadsheetStrategy struct{}

func (SpreadsheetStrategy) Source() model.Source { return model.SourceSpreadsheet }

func (SpreadsheetStrategy) Resolve(_ context.Context, field string, in *Input) (any, bool) {
	if len(in.LineItems) > 0 || in.Metrics.Empty() {
		return nil, false
	}

	switch field {
	case model.FieldLineItemsCount:
		if in.Metrics.Count != nil {
			return *in.Metrics.Count, true
		}
	case model.FieldAverageGrossWeight:
		if in.Metrics.AverageGrossWeight != nil {
			return *in.Metrics.AverageGrossWeight, true
		}
	case model.FieldAveragePrice:
		if in.Metrics.AveragePrice != nil {
			return *in.Metrics.AveragePrice, true
		}
	}
	return nil, false
}

func mean(items []model.LineItem, pick func(model.LineItem) *float64) (any, bool) {
	var sum float64
	n := 0
	for _, item := range items {
		if v := pick(item); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil, false
	}
	return sum / float64(n), true
}
