package llm

import "github.com/santhosh-tekuri/jsonschema/v5"

// itemSchemaJSON is deliberately lenient: the model mixes strings and
// numbers freely, and the assembler gate re-validates everything anyway.
// The schema only guards the shape we can work with at all.
const itemSchemaJSON = `{
  "type": "object",
  "properties": {
    "item_name":  {"type": ["string", "null"]},
    "quantity":   {"type": ["string", "number", "null"]},
    "unit_price": {"type": ["string", "number", "null"]},
    "line_total": {"type": ["string", "number", "null"]}
  },
  "required": ["item_name"]
}`

var itemSchema = jsonschema.MustCompileString("item.schema.json", itemSchemaJSON)

// validItemShape reports whether a decoded object is usable as an item.
func validItemShape(obj map[string]any) bool {
	return itemSchema.Validate(map[string]any(obj)) == nil
}
