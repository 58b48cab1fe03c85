package quiz

import "github.com/abhisek/olive/internal/llm"

// QuestionSchema is the structured contract requested from the LLM.
var QuestionSchema = &llm.Schema{
	Name:        "kids-quiz",
	Description: "One simple multiple-choice quiz question for a child, with its answer key",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question shown to the child, one short sentence",
			},
			"choices": map[string]any{
				"type":     "array",
				"minItems": 3,
				"maxItems": 3,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"letter": map[string]any{
							"type": "string",
							"enum": []any{"A", "B", "C"},
						},
						"text": map[string]any{
							"type": "string",
						},
					},
					"required":             []any{"letter", "text"},
					"additionalProperties": false,
				},
				"description": "Exactly 3 options lettered A, B and C",
			},
			"correct": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C"},
				"description": "Letter of the correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "One friendly sentence explaining the answer",
			},
		},
		"required":             []any{"question", "choices", "correct", "explanation"},
		"additionalProperties": false,
	},
}
