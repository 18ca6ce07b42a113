package problemgen

import "github.com/abhisek/practix/internal/llm"

func stringArray(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// ProblemSchema defines the JSON schema for LLM problem generation responses.
var ProblemSchema = &llm.Schema{
	Name:        "practice-problem",
	Description: "A single math practice problem with answer, solution steps and hint",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The problem statement shown to the learner, in plain ASCII text",
			},
			"question_text_localized": map[string]any{
				"type":        "string",
				"description": "The problem statement in the requested locale. Empty when no locale was requested.",
			},
			"answer": map[string]any{
				"type":        "string",
				"description": "The correct answer in simplest form",
			},
			"answer_type": map[string]any{
				"type":        "string",
				"enum":        []any{"integer", "decimal", "fraction", "text"},
				"description": "The representation of the answer",
			},
			"solution_steps":           stringArray("Ordered worked-solution steps"),
			"solution_steps_localized": stringArray("The solution steps in the requested locale. Empty when no locale was requested."),
			"hint": map[string]any{
				"type":        "string",
				"description": "A short scaffolding hint that does not give the answer away",
			},
			"hint_localized": map[string]any{
				"type":        "string",
				"description": "The hint in the requested locale",
			},
			"estimated_minutes": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     30,
				"description": "Expected time to solve, in minutes",
			},
		},
		"required": []any{
			"question_text", "question_text_localized", "answer", "answer_type",
			"solution_steps", "solution_steps_localized", "hint", "hint_localized", "estimated_minutes",
		},
		"additionalProperties": false,
	},
}
