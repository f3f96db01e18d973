package llm

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildExtractionSchema returns the JSON Schema the combined extraction
// payload must satisfy. Values stay permissive (the normalizer cleans them
// up) but the shape is enforced, especially for line_items.
func BuildExtractionSchema() map[string]any {
	stringOrNull := map[string]any{"type": []string{"string", "null"}}
	numberOrNull := map[string]any{"type": []string{"number", "string", "null"}}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bill_of_lading_number": stringOrNull,
			"container_number":      stringOrNull,
			"consignee_name":        stringOrNull,
			"consignee_address":     stringOrNull,
			"date":                  stringOrNull,
			"line_items_count":      numberOrNull,
			"average_gross_weight":  numberOrNull,
			"average_price":         numberOrNull,
			"line_items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description":  stringOrNull,
						"quantity":     numberOrNull,
						"price":        numberOrNull,
						"gross_weight": numberOrNull,
					},
				},
			},
		},
	}
}

// ValidateAgainstSchema checks a raw JSON payload against a schema map.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return eris.Wrap(err, "llm: marshal schema")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return eris.Wrap(err, "llm: add schema resource")
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return eris.Wrap(err, "llm: compile schema")
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return eris.Wrap(err, "llm: payload is not valid JSON")
	}
	if err := schema.Validate(v); err != nil {
		return eris.Wrap(err, "llm: payload does not match schema")
	}
	return nil
}
