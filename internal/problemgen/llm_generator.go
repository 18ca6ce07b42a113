package problemgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/practix/internal/llm"
)

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// problemOutput is the raw LLM response before validation.
type problemOutput struct {
	QuestionText           string   `json:"question_text"`
	QuestionTextLocalized  string   `json:"question_text_localized"`
	Answer                 string   `json:"answer"`
	AnswerType             string   `json:"answer_type"`
	SolutionSteps          []string `json:"solution_steps"`
	SolutionStepsLocalized []string `json:"solution_steps_localized"`
	Hint                   string   `json:"hint"`
	HintLocalized          string   `json:"hint_localized"`
	EstimatedMinutes       int      `json:"estimated_minutes"`
}

// Generate produces a single problem for the given input context.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Generated, error) {
	ctx = llm.WithPurpose(ctx, "problem-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      ProblemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw problemOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	p := &Generated{
		Question:          raw.QuestionText,
		QuestionLocalized: raw.QuestionTextLocalized,
		Answer:            raw.Answer,
		AnswerType:        AnswerType(raw.AnswerType),
		Steps:             raw.SolutionSteps,
		StepsLocalized:    raw.SolutionStepsLocalized,
		Hint:              raw.Hint,
		HintLocalized:     raw.HintLocalized,
		EstimatedMinutes:  raw.EstimatedMinutes,
	}
	if input.Locale == "" {
		p.QuestionLocalized, p.StepsLocalized, p.HintLocalized = "", nil, ""
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(p, input); verr != nil {
			return nil, verr
		}
	}

	return p, nil
}
