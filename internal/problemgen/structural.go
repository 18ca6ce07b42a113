package problemgen

import "fmt"

const (
	maxQuestionLen = 600
	maxStepLen     = 300
	maxSteps       = 8
)

// StructuralValidator checks that required fields are present, within
// length limits, and have valid enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) fail(msg string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(msg, args...), Retryable: true}
}

func (v *StructuralValidator) Validate(p *Generated, input GenerateInput) *ValidationError {
	if p.Question == "" {
		return v.fail("question_text is empty")
	}
	if len(p.Question) > maxQuestionLen {
		return v.fail("question_text exceeds %d characters", maxQuestionLen)
	}
	if p.Answer == "" {
		return v.fail("answer is empty")
	}
	if !p.AnswerType.Valid() {
		return v.fail("answer_type must be \"integer\", \"decimal\", \"fraction\", or \"text\"")
	}
	if len(p.Steps) == 0 {
		return v.fail("solution_steps is empty")
	}
	if len(p.Steps) > maxSteps {
		return v.fail("more than %d solution steps", maxSteps)
	}
	for i, s := range p.Steps {
		if s == "" {
			return v.fail("solution step %d is empty", i+1)
		}
		if len(s) > maxStepLen {
			return v.fail("solution step %d exceeds %d characters", i+1, maxStepLen)
		}
	}
	if p.EstimatedMinutes < 1 || p.EstimatedMinutes > 30 {
		return v.fail("estimated_minutes must be between 1 and 30")
	}
	if input.Locale != "" {
		if p.QuestionLocalized == "" {
			return v.fail("question_text_localized is empty for locale %q", input.Locale)
		}
		if len(p.StepsLocalized) != 0 && len(p.StepsLocalized) != len(p.Steps) {
			return v.fail("localized steps count %d does not match %d steps", len(p.StepsLocalized), len(p.Steps))
		}
	}
	return nil
}
