package stats

import (
	"fmt"
	"time"
)

// Grain is the time bucket used for grouping sales.
type Grain string

const (
	GrainDay   Grain = "day"
	GrainWeek  Grain = "week"
	GrainMonth Grain = "month"
)

// ParseGrain maps a user supplied grain to a Grain. An empty string means month.
func ParseGrain(s string) (Grain, error) {
	switch Grain(s) {
	case "":
		return GrainMonth, nil
	case GrainDay, GrainWeek, GrainMonth:
		return Grain(s), nil
	default:
		return "", fmt.Errorf("unknown grain %q (want day, week or month)", s)
	}
}

// PeriodLabel returns the sortable key of the bucket containing t:
// "2025-01-31" for days, "2025-W05" for ISO weeks and "2025-01" for months.
func PeriodLabel(t time.Time, grain Grain) string {
	switch grain {
	case GrainWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GrainMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// ParseMonth parses a "YYYY-MM" label into the first day of that month (UTC).
func ParseMonth(label string) (time.Time, error) {
	t, err := time.Parse("2006-01", label)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", label, err)
	}
	return t, nil
}

// AddMonths shifts a "YYYY-MM" label by n calendar months.
func AddMonths(label string, n int) (string, error) {
	t, err := ParseMonth(label)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, n, 0).Format("2006-01"), nil
}
