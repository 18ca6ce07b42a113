package clock

import (
	"testing"
	"time"
)

func TestLocalDate_CrossesMidnightByZone(t *testing.T) {
	// 22:30 UTC is already the next day in Jerusalem.
	ts := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)

	if got := LocalDate(ts, time.UTC); got != "2026-03-10" {
		t.Errorf("UTC date = %q, want 2026-03-10", got)
	}
	jer := LoadLocation("Asia/Jerusalem", "")
	if got := LocalDate(ts, jer); got != "2026-03-11" {
		t.Errorf("Jerusalem date = %q, want 2026-03-11", got)
	}
}

func TestLoadLocation_Fallbacks(t *testing.T) {
	if loc := LoadLocation("Not/AZone", "Europe/Paris"); loc.String() != "Europe/Paris" {
		t.Errorf("got %s, want Europe/Paris", loc)
	}
	if loc := LoadLocation("", ""); loc != time.UTC {
		t.Errorf("got %s, want UTC", loc)
	}
}

func TestIsConsecutiveDay(t *testing.T) {
	tests := []struct {
		prev, next string
		want       bool
	}{
		{"2026-01-01", "2026-01-02", true},
		{"2026-01-31", "2026-02-01", true},
		{"2025-12-31", "2026-01-01", true},
		{"2026-01-01", "2026-01-01", false},
		{"2026-01-01", "2026-01-03", false},
		{"", "2026-01-01", false},
		{"garbage", "2026-01-01", false},
	}
	for _, tt := range tests {
		if got := IsConsecutiveDay(tt.prev, tt.next); got != tt.want {
			t.Errorf("IsConsecutiveDay(%q, %q) = %v, want %v", tt.prev, tt.next, got, tt.want)
		}
	}
}

func TestIsSameDay(t *testing.T) {
	if !IsSameDay("2026-05-05", "2026-05-05") {
		t.Error("expected same day")
	}
	if IsSameDay("", "") {
		t.Error("empty dates must not match")
	}
}

func TestValidateTimezone(t *testing.T) {
	if err := ValidateTimezone("Asia/Jerusalem"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTimezone("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown zone")
	}
	if err := ValidateTimezone(""); err == nil {
		t.Error("expected error for empty zone")
	}
}
