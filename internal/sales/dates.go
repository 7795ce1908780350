package sales

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// ErrUnparseableDate is returned when no date format matches a value.
var ErrUnparseableDate = errors.New("unparseable date")

// dateLayouts are tried in order: ISO, day-first, month-first, dot-separated.
var dateLayouts = []string{
	// ISO
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	// Day-first
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006 15:04:05",
	// Month-first
	"01/02/2006",
	"1/2/2006",
	// Dot-separated
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02.01.2006 15:04:05",
}

// Excel serials outside this range are not treated as dates (1927-05-18 .. 9999-12-31).
// The floor keeps bare years and small counts from reading as early-1900s dates.
const (
	minExcelSerial = 10000
	maxExcelSerial = 2958465
)

// ParseDate resolves a date written in any of the accepted representations.
// Layouts are tried in a fixed priority order, then Excel serial numbers, then
// a general parser that prefers day-first for ambiguous input.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial >= minExcelSerial && serial <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}
	return t, nil
}

// IsMonthLabel reports whether s is a YYYY-MM label.
func IsMonthLabel(s string) bool {
	if len(s) != 7 {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

// NormalizeMonth turns plan month values such as "2025-01-01" or Excel serials
// into YYYY-MM. Values that cannot be resolved are returned trimmed but unchanged.
func NormalizeMonth(raw string) string {
	s := strings.TrimSpace(raw)
	if IsMonthLabel(s) {
		return s
	}
	if t, err := time.Parse("2006-1", s); err == nil {
		return t.Format("2006-01")
	}
	if t, err := ParseDate(s); err == nil {
		return t.Format("2006-01")
	}
	return s
}
