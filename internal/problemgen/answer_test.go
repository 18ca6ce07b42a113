package problemgen

import "testing"

func TestCheckAnswer_Integer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"042", true},
		{"42.0", true},
		{"43", false},
		{"", false},
		{"abc", false},
	}

	for _, tc := range tests {
		got := CheckAnswer(tc.input, "42", AnswerTypeInteger)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, 42/integer) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_Decimal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3.5", true},
		{"3.50", true},
		{"3.500", true},
		{" 3.5 ", true},
		{"3,5", true},
		{"7/2", true},
		{"3.50004", true},
		{"3.6", false},
		{"3.501", false},
	}

	for _, tc := range tests {
		got := CheckAnswer(tc.input, "3.5", AnswerTypeDecimal)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, 3.5/decimal) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_Fraction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1/2", true},
		{"2/4", true},
		{"3/6", true},
		{" 1 / 2 ", true},
		{"0.5", true},
		{"1/3", false},
		{"1/0", false},
	}

	for _, tc := range tests {
		got := CheckAnswer(tc.input, "1/2", AnswerTypeFraction)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, 1/2/fraction) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_NegativeAndUnicodeMinus(t *testing.T) {
	if !CheckAnswer("−15", "-15", AnswerTypeInteger) {
		t.Error("expected unicode minus to match")
	}
	if !CheckAnswer("-3/4", "-0.75", AnswerTypeFraction) {
		t.Error("expected negative fraction to match decimal")
	}
}

func TestCheckAnswer_Text(t *testing.T) {
	tests := []struct {
		input, correct string
		want           bool
	}{
		{"Acute", "acute", true},
		{"  ACUTE  ", "acute", true},
		{"x = 4", "X=4", true},
		{"ｘ＝４", "x=4", true}, // full-width forms fold under NFKC
		{"obtuse", "acute", false},
		{"", "acute", false},
	}
	for _, tc := range tests {
		got := CheckAnswer(tc.input, tc.correct, AnswerTypeText)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, %q/text) = %v, want %v", tc.input, tc.correct, got, tc.want)
		}
	}
}

func TestCheckAnswer_LargeMagnitudeTolerance(t *testing.T) {
	if !CheckAnswer("1000000.05", "1000000", AnswerTypeDecimal) {
		t.Error("expected relative tolerance for large values")
	}
	if CheckAnswer("1000200", "1000000", AnswerTypeInteger) {
		t.Error("expected mismatch beyond tolerance")
	}
}

func TestCheckAnswer_MixedNumbers(t *testing.T) {
	tests := []struct {
		input, correct string
		want           bool
	}{
		{"1 1/2", "3/2", true},
		{"1 1/2", "1.5", true},
		{"1  1 / 2", "3/2", true},
		{"-1 1/2", "-3/2", true},
		{"1 1/2", "11/2", false},
		{"2 1/2", "3/2", false},
		{"1 1/0", "1", false},
		{"1 1 1/2", "3/2", false},
		{"4 2", "42", false},
	}
	for _, tc := range tests {
		got := CheckAnswer(tc.input, tc.correct, AnswerTypeFraction)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, %q/fraction) = %v, want %v", tc.input, tc.correct, got, tc.want)
		}
	}
}

func TestCheckAnswer_Separators(t *testing.T) {
	tests := []struct {
		input, correct string
		want           bool
	}{
		{"1,000", "1000", true},
		{"12,345,678", "12345678", true},
		{"1,234.5", "1234.5", true},
		{"3,5", "3.5", true},
		{"0,25", "1/4", true},
		{"1,000", "1", false},
		{"1,00", "100", false},
	}
	for _, tc := range tests {
		got := CheckAnswer(tc.input, tc.correct, AnswerTypeDecimal)
		if got != tc.want {
			t.Errorf("CheckAnswer(%q, %q/decimal) = %v, want %v", tc.input, tc.correct, got, tc.want)
		}
	}
}
