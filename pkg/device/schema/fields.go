package schema

import (
	"encoding/json"

	"github.com/urmzd/zwhub/pkg/unit"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

// FromFields renders the writable fields of a unit as the JSON Schema for a
// state write. Read-only fields are left out, so writing one fails
// validation as an unknown property.
func FromFields(defs []unit.FieldDef) json.RawMessage {
	properties := make(map[string]any, len(defs))
	for _, d := range defs {
		if !d.Writable() {
			continue
		}
		properties[d.Name] = fieldSchema(d)
	}

	doc, err := json.Marshal(map[string]any{
		"$schema":              draft,
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	})
	if err != nil {
		return json.RawMessage("{}")
	}
	return doc
}

func fieldSchema(d unit.FieldDef) map[string]any {
	if d.Type == unit.FieldCard {
		return map[string]any{
			"type":    "integer",
			"minimum": d.Min,
			"maximum": d.Max,
		}
	}

	words := []string{"on", "off"}
	if d.Semantic == unit.SemanticLock {
		words = []string{"locked", "unlocked"}
	}
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "boolean"},
			map[string]any{"type": "string", "enum": words},
		},
	}
}
