package problemgen

import (
	"fmt"
	"regexp"
	"strconv"
)

var fractionPattern = regexp.MustCompile(`^-?\d+/\d+$`)

// AnswerFormatValidator checks that the answer string matches the declared
// answer_type and is in simplest form.
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(p *Generated, _ GenerateInput) *ValidationError {
	var err error
	switch p.AnswerType {
	case AnswerTypeInteger:
		err = validateInteger(p.Answer)
	case AnswerTypeDecimal:
		err = validateDecimal(p.Answer)
	case AnswerTypeFraction:
		err = validateFraction(p.Answer)
	}
	if err != nil {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("invalid %s answer %q: %s", p.AnswerType, p.Answer, err),
			Retryable: true,
		}
	}
	return nil
}

// validateInteger checks that s is a valid integer string with no leading zeros.
func validateInteger(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not a valid integer")
	}
	if strconv.FormatInt(n, 10) != s {
		return fmt.Errorf("has leading zeros")
	}
	return nil
}

// validateDecimal checks that s is a valid decimal string with no trailing zeros.
func validateDecimal(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a valid decimal")
	}
	normalized := strconv.FormatFloat(f, 'f', -1, 64)
	if normalized != s {
		return fmt.Errorf("has trailing zeros or is not normalized (expected %q)", normalized)
	}
	return nil
}

// validateFraction checks that s matches a/b, denominator > 0, and is in lowest terms.
func validateFraction(s string) error {
	if !fractionPattern.MatchString(s) {
		return fmt.Errorf("does not match fraction pattern a/b")
	}
	num, den, err := parseFraction(s)
	if err != nil {
		return err
	}
	if den <= 0 {
		return fmt.Errorf("denominator must be positive")
	}
	if gcd(abs(num), den) != 1 {
		return fmt.Errorf("fraction is not in lowest terms")
	}
	return nil
}
