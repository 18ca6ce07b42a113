package problemgen

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NumericTolerance is the largest difference at which two numeric answers
// are considered equal. It scales with the magnitude of the correct answer
// above 1.
const NumericTolerance = 1e-4

var folder = cases.Fold()

// CheckAnswer compares the learner's answer against the correct one.
//
// Normalization rules:
//   - Unicode is NFKC-normalized and case-folded
//   - Leading and trailing whitespace is ignored
//   - When both sides parse as numbers (integer, decimal, a/b fraction or
//     a mixed number such as "1 1/2") they are compared within
//     NumericTolerance, so "2/4" matches "0.5" and "3.50" matches "3.5"
//   - Text answers must otherwise match exactly with all whitespace removed
func CheckAnswer(given, correct string, answerType AnswerType) bool {
	gs := foldText(given)
	cs := foldText(correct)
	g := stripSpace(gs)
	c := stripSpace(cs)
	if g == "" || c == "" {
		return false
	}

	gv, gerr := parseNumber(gs)
	cv, cerr := parseNumber(cs)
	if gerr == nil && cerr == nil {
		return numbersEqual(gv, cv)
	}
	if answerType != AnswerTypeText && cerr == nil {
		// A numeric answer was expected and the learner gave something else.
		return false
	}
	return g == c
}

// NormalizeText applies the text comparison normalization used by
// CheckAnswer.
func NormalizeText(s string) string {
	return stripSpace(foldText(s))
}

func foldText(s string) string {
	s = norm.NFKC.String(s)
	s = folder.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '−', '–':
			return '-'
		case '÷':
			return '/'
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func numbersEqual(a, b float64) bool {
	return math.Abs(a-b) <= NumericTolerance*math.Max(1, math.Abs(b))
}

var (
	mixedNumberPattern = regexp.MustCompile(`^(-?)(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	thousandsPattern   = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// parseNumber parses an integer, decimal, fraction or mixed number from
// trimmed input. Commas grouping digits in threes ("1,000") are thousands
// separators; any other single comma is the decimal separator ("3,5").
// Whitespace is only allowed between the parts of a fraction or mixed
// number.
func parseNumber(s string) (float64, error) {
	if m := mixedNumberPattern.FindStringSubmatch(s); m != nil {
		whole, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid whole part: %w", err)
		}
		num, den, err := parseFraction(m[3] + "/" + m[4])
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		v := float64(whole) + float64(num)/float64(den)
		if m[1] == "-" {
			v = -v
		}
		return v, nil
	}
	if strings.Contains(s, "/") {
		num, den, err := parseFraction(s)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return float64(num) / float64(den), nil
	}
	switch {
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// abs returns the absolute value of n.
func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
