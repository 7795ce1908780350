package stats

import (
	"testing"
	"time"
)

func TestPeriodLabel(t *testing.T) {
	ts := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	if got := PeriodLabel(ts, GrainDay); got != "2025-01-02" {
		t.Errorf("day label = %s", got)
	}
	if got := PeriodLabel(ts, GrainWeek); got != "2025-W01" {
		t.Errorf("week label = %s", got)
	}
	if got := PeriodLabel(ts, GrainMonth); got != "2025-01" {
		t.Errorf("month label = %s", got)
	}
	// ISO year differs from calendar year at the boundary
	dec := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	if got := PeriodLabel(dec, GrainWeek); got != "2025-W01" {
		t.Errorf("Expected 2024-12-30 to be in 2025-W01, got %s", got)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		label    string
		n        int
		expected string
	}{
		{"2025-01", 1, "2025-02"},
		{"2025-11", 3, "2026-02"},
		{"2025-03", -3, "2024-12"},
	}
	for _, tt := range tests {
		got, err := AddMonths(tt.label, tt.n)
		if err != nil {
			t.Fatalf("AddMonths(%s, %d) returned error: %v", tt.label, tt.n, err)
		}
		if got != tt.expected {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.label, tt.n, got, tt.expected)
		}
	}

	if _, err := AddMonths("January", 1); err == nil {
		t.Error("Expected error for malformed month label")
	}
}

func TestParseGrain(t *testing.T) {
	tests := []struct {
		in       string
		expected Grain
	}{
		{"", GrainMonth},
		{"day", GrainDay},
		{"week", GrainWeek},
		{"month", GrainMonth},
	}
	for _, tt := range tests {
		got, err := ParseGrain(tt.in)
		if err != nil || got != tt.expected {
			t.Errorf("ParseGrain(%q) = %q, %v, want %q", tt.in, got, err, tt.expected)
		}
	}

	for _, bad := range []string{"weekly", "Month", "quarter"} {
		if _, err := ParseGrain(bad); err == nil {
			t.Errorf("Expected error for grain %q", bad)
		}
	}
}
