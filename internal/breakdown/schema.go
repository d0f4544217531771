package breakdown

import (
	"encoding/json"
)

// Response schemas attached to generation requests. They check shape, not
// content: individual entries are still validated (and dropped) one by one at
// the normalization boundary, so the schemas stay deliberately loose. No key
// is required; a response missing its list degrades to an empty contribution
// rather than a failed request.

var harvestSchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"synopsis":    map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"elements": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
})

var continuitySchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"continuity_notes": map[string]any{
			"type": "array",
		},
	},
})

var flagSchema = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"review_flags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
})

func mustSchema(schema map[string]any) json.RawMessage {
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return raw
}
