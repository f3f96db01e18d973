// Package model defines the canonical shipment field set and the record,
// provenance, and accuracy types shared across the pipeline.
package model

// Canonical extraction fields. Every reconciled record carries exactly this set.
const (
	FieldBillOfLadingNumber = "bill_of_lading_number"
	FieldContainerNumber    = "container_number"
	FieldConsigneeName      = "consignee_name"
	FieldConsigneeAddress   = "consignee_address"
	FieldDate               = "date"
	FieldLineItemsCount     = "line_items_count"
	FieldAverageGrossWeight = "average_gross_weight"
	FieldAveragePrice       = "average_price"
)

// CanonicalFields lists every canonical field in display order.
var CanonicalFields = []string{
	FieldBillOfLadingNumber,
	FieldContainerNumber,
	FieldConsigneeName,
	FieldConsigneeAddress,
	FieldDate,
	FieldLineItemsCount,
	FieldAverageGrossWeight,
	FieldAveragePrice,
}

// AggregateFields are the fields derived from line items rather than read
// off the document face.
var AggregateFields = []string{
	FieldLineItemsCount,
	FieldAverageGrossWeight,
	FieldAveragePrice,
}

// FieldClass determines which normalization and similarity rules apply.
type FieldClass string

const (
	ClassIdentifier FieldClass = "identifier"
	ClassText       FieldClass = "text"
	ClassDate       FieldClass = "date"
	ClassNumeric    FieldClass = "numeric"
)

var fieldClasses = map[string]FieldClass{
	FieldBillOfLadingNumber: ClassIdentifier,
	FieldContainerNumber:    ClassIdentifier,
	FieldConsigneeName:      ClassText,
	FieldConsigneeAddress:   ClassText,
	FieldDate:               ClassDate,
	FieldLineItemsCount:     ClassNumeric,
	FieldAverageGrossWeight: ClassNumeric,
	FieldAveragePrice:       ClassNumeric,
}

// ClassOf returns the field class for a canonical field. Unknown fields are
// treated as free text, the most forgiving comparison.
func ClassOf(field string) FieldClass {
	if c, ok := fieldClasses[field]; ok {
		return c
	}
	return ClassText
}

// IsCanonical reports whether key is one of the eight canonical fields.
func IsCanonical(key string) bool {
	_, ok := fieldClasses[key]
	return ok
}

// FieldAliases maps normalized non-canonical keys to their canonical field.
// Keys here are already in normalized form (lowercase, underscores).
var FieldAliases = map[string]string{
	"bol":                  FieldBillOfLadingNumber,
	"bol_number":           FieldBillOfLadingNumber,
	"bl_number":            FieldBillOfLadingNumber,
	"bill_of_lading":       FieldBillOfLadingNumber,
	"bill_of_lading_no":    FieldBillOfLadingNumber,
	"lading_number":        FieldBillOfLadingNumber,
	"container":            FieldContainerNumber,
	"container_no":         FieldContainerNumber,
	"container_num":        FieldContainerNumber,
	"container_id":         FieldContainerNumber,
	"consignee":            FieldConsigneeName,
	"consignee_full_name":  FieldConsigneeName,
	"receiver_name":        FieldConsigneeName,
	"consignee_addr":       FieldConsigneeAddress,
	"receiver_address":     FieldConsigneeAddress,
	"shipment_date":        FieldDate,
	"document_date":        FieldDate,
	"issue_date":           FieldDate,
	"ship_date":            FieldDate,
	"line_item_count":      FieldLineItemsCount,
	"items_count":          FieldLineItemsCount,
	"number_of_line_items": FieldLineItemsCount,
	"avg_gross_weight":     FieldAverageGrossWeight,
	"average_weight":       FieldAverageGrossWeight,
	"mean_gross_weight":    FieldAverageGrossWeight,
	"avg_price":            FieldAveragePrice,
	"average_unit_price":   FieldAveragePrice,
	"mean_price":           FieldAveragePrice,
}
