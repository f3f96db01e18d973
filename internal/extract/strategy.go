// Package extract reconciles extraction outputs from several imperfect
// sources into a single record with per-field provenance.
package extract

import (
	"context"

	"github.com/harborline/shipdocs/internal/model"
	"github.com/harborline/shipdocs/internal/normalize"
)

// Input carries everything the strategy chain can draw on for one document
// set. Any member may be absent; strategies decline fields they cannot serve.
type Input struct {
	// LLM is the schema-validated LLM payload with normalized keys, or nil
	// when no LLM backend ran.
	LLM map[string]any
	// LLMProvider names the backend that produced the payload.
	LLMProvider string
	// LineItems are structured line items from the LLM payload, used to
	// compute aggregates.
	LineItems []model.LineItem
	// Metrics are aggregates parsed directly from spreadsheets.
	Metrics *model.LineItemMetrics
	// RawText is the concatenated plain text of all documents.
	RawText string
}

// NewInput normalizes a raw LLM payload into an Input, lifting line items
// out of the payload when present.
func NewInput(llmFields map[string]any, provider string, metrics *model.LineItemMetrics, rawText string) *Input {
	in := &Input{LLMProvider: provider, Metrics: metrics, RawText: rawText}
	if llmFields == nil {
		return in
	}

	in.LLM = make(map[string]any, len(llmFields))
	for k, v := range llmFields {
		key := normalize.Key(k)
		if key == "line_items" {
			in.LineItems = parseLineItems(v)
			continue
		}
		in.LLM[key] = v
	}
	return in
}

// Strategy resolves individual fields from one source. Resolve returns false
// when the strategy has nothing usable for the field, handing it to the next
// strategy in the chain.
type Strategy interface {
	Source() model.Source
	Resolve(ctx context.Context, field string, in *Input) (any, bool)
}

func parseLineItems(v any) []model.LineItem {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]model.LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var item model.LineItem
		for k, val := range m {
			switch normalize.Key(k) {
			case "description", "item", "item_description":
				if s, ok := val.(string); ok {
					item.Description = s
				}
			case "quantity", "qty":
				item.Quantity = toFloatPtr(val)
			case "price", "unit_price", "amount":
				item.Price = toFloatPtr(val)
			case "gross_weight", "weight":
				item.GrossWeight = toFloatPtr(val)
			}
		}
		items = append(items, item)
	}
	return items
}

func toFloatPtr(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		if f, ok := normalize.ParseFloat(n); ok {
			return &f
		}
	}
	return nil
}
