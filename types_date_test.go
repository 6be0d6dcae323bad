package billsync

import (
	"fmt"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestDateOf(t *testing.T) {
	at := time.Date(2025, time.March, 13, 23, 59, 59, 0, time.UTC)
	if got, want := DateOf(at), NewDate(2025, time.March, 13); got != want {
		t.Errorf("DateOf(%v) = %v, want %v", at, got, want)
	}
}

func TestParseDate(t *testing.T) {
	today := Today()
	currentYear := today.Year()
	currentMonth := today.Month()

	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{" 2025-03-13 ", NewDate(2025, time.March, 13), false},
		{"invalid-date", Date{}, true},

		{"0d", today, false},
		{"-1d", today.Add(-1), false},
		{"+1d", today.Add(1), false},
		{"1d", Date{}, true},
		{"-2w", today.Add(-14), false},
		{"+1m", NewDate(currentYear, currentMonth+1, today.Day()), false},
		{"-1y", NewDate(currentYear-1, currentMonth, today.Day()), false},

		{"27", NewDate(currentYear, currentMonth, 27), false},
		{fmt.Sprintf("%d-27", currentMonth), NewDate(currentYear, currentMonth, 27), false},
		{"0", NewDate(currentYear, currentMonth, 0), false},
		{"0-15", NewDate(currentYear-1, time.December, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_String(t *testing.T) {
	if got := (Date{}).String(); got != "" {
		t.Errorf("zero Date String() = %q, want empty", got)
	}
	if got := NewDate(2025, time.March, 1).String(); got != "2025-03-01" {
		t.Errorf("String() = %q, want %q", got, "2025-03-01")
	}
}
