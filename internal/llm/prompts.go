package llm

import "strings"

const systemPrompt = `You are a shipping-document extraction assistant. You read bills of lading, commercial invoices, and packing lists and extract structured fields exactly as they appear.`

const combinedPromptTemplate = `Extract the following fields from the shipment documents below and answer with a single JSON object using exactly these keys:

- bill_of_lading_number: the bill of lading number
- container_number: the container number (four letters followed by seven digits)
- consignee_name: the consignee's name
- consignee_address: the consignee's address
- date: the document date in YYYY-MM-DD form
- line_items: an array of objects with description, quantity, price, gross_weight
- line_items_count: the number of line items
- average_gross_weight: the mean gross weight across line items
- average_price: the mean price across line items

Use null for any field the documents do not contain. Do not guess.

<documents>
{documents}
</documents>`

// fieldPrompts asks for one field at a time. The answer comes back wrapped in
// result tags so it survives chatty models.
var fieldPrompts = map[string]string{
	"bill_of_lading_number": `Find the bill of lading number in the shipment documents below. It is usually labeled "Bill of Lading No" or "B/L Number".`,
	"container_number":      `Find the container number in the shipment documents below. Container numbers are four uppercase letters followed by seven digits, like MSKU1234567.`,
	"consignee_name":        `Find the consignee's name in the shipment documents below. The consignee is the party receiving the goods.`,
	"consignee_address":     `Find the consignee's address in the shipment documents below.`,
	"date":                  `Find the document date in the shipment documents below. Answer in YYYY-MM-DD form.`,
	"line_items_count":      `Count the line items in the shipment documents below. Answer with the number only.`,
	"average_gross_weight":  `Compute the average gross weight across all line items in the shipment documents below. Answer with the number only.`,
	"average_price":         `Compute the average price across all line items in the shipment documents below. Answer with the number only.`,
}

const fieldPromptSuffix = `

Answer inside <result></result> tags. If the documents do not contain the answer, respond with <result>none</result>. You may add a short <explanation></explanation> after the result.

<documents>
{documents}
</documents>`

// CombinedPrompt renders the whole-record extraction prompt.
func CombinedPrompt(documents string) string {
	return strings.Replace(combinedPromptTemplate, "{documents}", documents, 1)
}

// FieldPrompt renders the single-field prompt, falling back to a generic ask
// for non-canonical fields.
func FieldPrompt(field, documents string) string {
	prompt, ok := fieldPrompts[field]
	if !ok {
		prompt = `Find the value of "` + field + `" in the shipment documents below.`
	}
	return prompt + strings.Replace(fieldPromptSuffix, "{documents}", documents, 1)
}
