package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/shipdocs/internal/model"
)

const sampleText = `SHIPPING MANIFEST

Bill of Lading No: ABC12345
Container: MSKU1234567
Consignee: John Doe
123 Main St, Springfield

Date: 2024-09-05
`

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestReconcileRulesAndSpreadsheetOnly(t *testing.T) {
	r := NewReconciler()
	in := NewInput(nil, "", &model.LineItemMetrics{
		Count:              intPtr(3),
		AverageGrossWeight: floatPtr(50.0),
		AveragePrice:       floatPtr(100.0),
	}, sampleText)

	record := r.Reconcile(context.Background(), in)

	assert.Equal(t, "ABC12345", record.Fields[model.FieldBillOfLadingNumber].Value)
	assert.Equal(t, model.SourceRule, record.Fields[model.FieldBillOfLadingNumber].Source)

	assert.Equal(t, "MSKU1234567", record.Fields[model.FieldContainerNumber].Value)
	assert.Equal(t, "John Doe", record.Fields[model.FieldConsigneeName].Value)
	assert.Equal(t, "123 Main St, Springfield", record.Fields[model.FieldConsigneeAddress].Value)
	assert.Equal(t, "2024-09-05", record.Fields[model.FieldDate].Value)

	assert.Equal(t, 3, record.Fields[model.FieldLineItemsCount].Value)
	assert.Equal(t, model.SourceSpreadsheet, record.Fields[model.FieldLineItemsCount].Source)
	assert.Equal(t, 50.0, record.Fields[model.FieldAverageGrossWeight].Value)
	assert.Equal(t, 100.0, record.Fields[model.FieldAveragePrice].Value)
}

func TestReconcileLLMWins(t *testing.T) {
	r := NewReconciler()
	llm := map[string]any{
		"bill_of_lading_number": "XYZ99999",
		"consignee":             "Jane Smith",
	}
	in := NewInput(llm, "openai", nil, sampleText)

	record := r.Reconcile(context.Background(), in)

	bol := record.Fields[model.FieldBillOfLadingNumber]
	assert.Equal(t, "XYZ99999", bol.Value)
	assert.Equal(t, model.SourceLLM, bol.Source)
	assert.Equal(t, "openai", bol.Provider)

	// Aliased key resolves to the canonical field.
	name := record.Fields[model.FieldConsigneeName]
	assert.Equal(t, "Jane Smith", name.Value)
	assert.Equal(t, model.SourceLLM, name.Source)

	// Fields the LLM skipped fall through to rules.
	assert.Equal(t, model.SourceRule, record.Fields[model.FieldContainerNumber].Source)
}

func TestReconcileComputedBeatsLLMAggregates(t *testing.T) {
	r := NewReconciler()
	llm := map[string]any{
		"line_items_count":     99,
		"average_gross_weight": 1.0,
		"line_items": []any{
			map[string]any{"description": "Widgets", "quantity": 10.0, "price": 50.0, "gross_weight": 20.0},
			map[string]any{"description": "Gadgets", "quantity": 5.0, "price": 150.0, "gross_weight": 80.0},
			map[string]any{"description": "Sprockets", "quantity": 1.0},
		},
	}
	in := NewInput(llm, "anthropic", nil, "")

	record := r.Reconcile(context.Background(), in)

	count := record.Fields[model.FieldLineItemsCount]
	assert.Equal(t, 3, count.Value)
	assert.Equal(t, model.SourceComputed, count.Source)

	weight := record.Fields[model.FieldAverageGrossWeight]
	assert.Equal(t, 50.0, weight.Value)
	assert.Equal(t, model.SourceComputed, weight.Source)

	price := record.Fields[model.FieldAveragePrice]
	assert.Equal(t, 100.0, price.Value)
	assert.Equal(t, model.SourceComputed, price.Source)
}

func TestReconcileSpreadsheetSkippedWhenItemsPresent(t *testing.T) {
	r := NewReconciler()
	// Items carry no weights, but their presence still shuts out the sheet
	// metrics: the field stays unresolved rather than taking a stale value.
	llm := map[string]any{
		"line_items": []any{
			map[string]any{"description": "Widgets", "price": 50.0},
		},
	}
	in := NewInput(llm, "anthropic", &model.LineItemMetrics{AverageGrossWeight: floatPtr(42.0)}, "")

	record := r.Reconcile(context.Background(), in)

	weight := record.Fields[model.FieldAverageGrossWeight]
	assert.Nil(t, weight.Value)
	assert.Equal(t, model.SourceNone, weight.Source)

	assert.Equal(t, model.SourceComputed, record.Fields[model.FieldLineItemsCount].Source)
	assert.Equal(t, "anthropic", record.Provider)
}

func TestReconcileProviderRecordedWithoutWinningFields(t *testing.T) {
	r := NewReconciler()
	// The payload holds nothing but items, so no per-field value carries the
	// llm source, yet the record still names the backend that ran.
	llm := map[string]any{
		"line_items": []any{
			map[string]any{"description": "Widgets", "gross_weight": 20.0},
		},
	}
	record := r.Reconcile(context.Background(), NewInput(llm, "openai", nil, ""))

	assert.Equal(t, "openai", record.Provider)
	for field, fv := range record.Fields {
		assert.NotEqual(t, model.SourceLLM, fv.Source, field)
	}

	// No payload at all leaves the provider empty.
	bare := r.Reconcile(context.Background(), NewInput(nil, "openai", nil, ""))
	assert.Empty(t, bare.Provider)
}

func TestReconcileUnresolvedFieldsPresent(t *testing.T) {
	r := NewReconciler()
	record := r.Reconcile(context.Background(), NewInput(nil, "", nil, ""))

	require.Len(t, record.Fields, len(model.CanonicalFields))
	for _, field := range model.CanonicalFields {
		fv, ok := record.Fields[field]
		require.True(t, ok, field)
		assert.Equal(t, model.SourceNone, fv.Source, field)
		assert.Nil(t, fv.Value, field)
	}
}

func TestReconcileEmptyLLMValueFallsThrough(t *testing.T) {
	r := NewReconciler()
	llm := map[string]any{"bill_of_lading_number": "   "}
	in := NewInput(llm, "openai", nil, sampleText)

	record := r.Reconcile(context.Background(), in)
	assert.Equal(t, model.SourceRule, record.Fields[model.FieldBillOfLadingNumber].Source)
}

func TestRuleStrategyBareContainer(t *testing.T) {
	var s RuleStrategy
	v, ok := s.Resolve(context.Background(), model.FieldContainerNumber, &Input{
		RawText: "cargo loaded into TCLU7654321 at berth 4",
	})
	require.True(t, ok)
	assert.Equal(t, "TCLU7654321", v)
}

func TestRuleStrategyBOLLabelVariants(t *testing.T) {
	var s RuleStrategy
	for _, text := range []string{
		"Bill of Lading No: ABC12345\n",
		"B/L No: ABC12345\n",
		"B/L: ABC12345\n",
		"BOL: ABC12345\n",
		"BOL # ABC12345\n",
	} {
		v, ok := s.Resolve(context.Background(), model.FieldBillOfLadingNumber, &Input{RawText: text})
		require.True(t, ok, text)
		assert.Equal(t, "ABC12345", v, text)
	}
}

func TestRuleStrategyDateTokenPriority(t *testing.T) {
	var s RuleStrategy

	// Unlabeled month-name dates are still found.
	v, ok := s.Resolve(context.Background(), model.FieldDate, &Input{
		RawText: "Shipped on board September 5, 2024 at Port of Oakland\n",
	})
	require.True(t, ok)
	assert.Equal(t, "September 5, 2024", v)

	// ISO beats a month-name token that appears earlier in the text.
	v, ok = s.Resolve(context.Background(), model.FieldDate, &Input{
		RawText: "Issued January 3, 2024, laden 2024-09-05\n",
	})
	require.True(t, ok)
	assert.Equal(t, "2024-09-05", v)
}

func TestRuleStrategyConsigneeStopsAtLabel(t *testing.T) {
	text := "Consignee: Acme Corp\nUnit 7, Dockside Park\nLiverpool\nDate: 01/02/2024\n"
	name, addr := consigneeBlock(text)
	assert.Equal(t, "Acme Corp", name)
	assert.Equal(t, "Unit 7, Dockside Park, Liverpool", addr)
}
