package outline

import "github.com/abhisek/skilltree/internal/llm"

// OutlineSchema is the response shape requested from the model: a flat,
// pre-ordered list of skills with their nesting depth. A flat list keeps
// the schema non-recursive, which every provider's structured output mode
// accepts.
var OutlineSchema = &llm.Schema{
	Name:        "skill-outline",
	Description: "A skill tree as a pre-ordered list of skills with nesting depth",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type":        "array",
				"description": "Skills in pre-order: every skill is followed by its sub-skills",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "Short name of the skill, a few words, no numbering",
						},
						"depth": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "0 for top-level skills, parent depth + 1 for sub-skills",
						},
					},
					"required":             []any{"label", "depth"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}
