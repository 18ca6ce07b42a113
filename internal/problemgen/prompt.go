package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a math teacher writing daily practice problems for school students.

Rules:
- Generate a single problem for the given topic and difficulty.
- Use plain ASCII text for all math. No LaTeX. Use / for fractions, * for multiplication, and standard operators.
- The problem must be self-contained and have exactly one correct answer.
- The answer must be in simplest form (reduce fractions, no trailing zeros on decimals).
- Use answer_type "text" only when the answer is not a number.
- Give 2 to 6 short solution steps, in order.
- The hint nudges toward the method without revealing the answer.
- When a locale is given, translate the question, steps and hint into it. Otherwise leave the localized fields empty.
- Easy problems take one step, medium problems two or three, hard problems combine ideas.
- Do not repeat any problem from the "recently seen" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", input.Topic.Name)
	if input.Topic.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", input.Topic.Description)
	}
	if len(input.Topic.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(input.Topic.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	locale := input.Locale
	if locale == "" {
		locale = "none"
	}
	fmt.Fprintf(&b, "Locale: %s\n", locale)

	b.WriteString("\nRecently seen by this learner:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, keeping the most
// recent max entries. Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
