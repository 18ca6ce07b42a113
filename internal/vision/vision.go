// Package vision checks answers submitted as images of handwritten work.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/abhisek/practix/internal/llm"
	"github.com/abhisek/practix/internal/objectstore"
	"github.com/abhisek/practix/internal/problemgen"
)

// Analyzer judges an image answer against a problem.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*Analysis, error)
}

// AnalyzeInput is one image answer.
type AnalyzeInput struct {
	Problem problemgen.Problem
	Image   objectstore.Image

	// Locale selects the language of the feedback.
	Locale string
}

// Analysis is the analyzer's verdict.
type Analysis struct {
	// IsCorrect is nil when correctness could not be determined.
	IsCorrect       *bool   `json:"isCorrect"`
	Feedback        string  `json:"feedback,omitempty"`
	ExtractedAnswer string  `json:"extractedAnswer,omitempty"`
	Confidence      float64 `json:"confidence"`
}

// Config holds configuration for the LLM analyzer.
type Config struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	// MinConfidence is the confidence below which a verdict is reported
	// as undetermined.
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     384,
		Temperature:   0.2,
		MinConfidence: 0.6,
	}
}

// LLMAnalyzer sends the image to a multimodal LLM.
type LLMAnalyzer struct {
	provider llm.Provider
	cfg      Config
}

// New creates an LLM-based analyzer.
func New(provider llm.Provider, cfg Config) *LLMAnalyzer {
	return &LLMAnalyzer{provider: provider, cfg: cfg}
}

// analysisOutput is the raw LLM response.
type analysisOutput struct {
	IsCorrect       *bool   `json:"is_correct"`
	ExtractedAnswer string  `json:"extracted_answer"`
	Confidence      float64 `json:"confidence"`
	Feedback        string  `json:"feedback"`
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, input AnalyzeInput) (*Analysis, error) {
	ctx = llm.WithPurpose(ctx, "answer-image")

	userMsg, err := buildAnalysisMessage(input)
	if err != nil {
		return nil, fmt.Errorf("build analysis prompt: %w", err)
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System: analysisSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: userMsg,
			Images:  []llm.Image{{URL: input.Image.URL, MediaType: input.Image.MediaType}},
		}},
		Schema:      AnalysisSchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM image analysis failed: %w", err)
	}

	var raw analysisOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	out := &Analysis{
		IsCorrect:       raw.IsCorrect,
		Feedback:        raw.Feedback,
		ExtractedAnswer: raw.ExtractedAnswer,
		Confidence:      raw.Confidence,
	}
	if raw.Confidence < a.cfg.MinConfidence {
		out.IsCorrect = nil
	}
	return out, nil
}

const analysisSystemPrompt = `You are a patient math teacher checking a learner's handwritten work from a photo.

Instructions:
- Read the final answer the learner wrote and report it in extracted_answer exactly as written.
- Decide whether it is equivalent to the correct answer. Equivalent forms count as correct.
- If the image is unreadable, blank, or unrelated to the question, set is_correct to null.
- Give one or two sentences of encouraging feedback that point at the first mistake, if any.
- Provide a confidence score (0.0–1.0) for your verdict.`

var analysisUserTemplate = template.Must(template.New("analysis").Parse(`Topic: {{.Problem.TopicName}}
Question: {{.Problem.Question}}
Correct answer: {{.Problem.Answer}}
Answer type: {{.Problem.AnswerType}}
Feedback language: {{if .Locale}}{{.Locale}}{{else}}en{{end}}

The learner's work is attached as an image.`))

func buildAnalysisMessage(input AnalyzeInput) (string, error) {
	var buf bytes.Buffer
	if err := analysisUserTemplate.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AnalysisSchema defines the JSON schema for image answer analysis.
var AnalysisSchema = &llm.Schema{
	Name:        "answer-image-analysis",
	Description: "Verdict on a photographed answer to a math problem",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{
				"type":        []any{"boolean", "null"},
				"description": "Whether the written answer is correct, or null if it cannot be determined",
			},
			"extracted_answer": map[string]any{
				"type":        "string",
				"description": "The final answer as written by the learner, empty if none is visible",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "Confidence score (0.0–1.0) for the verdict",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of feedback for the learner",
			},
		},
		"required":             []any{"is_correct", "extracted_answer", "confidence", "feedback"},
		"additionalProperties": false,
	},
}
