package sales

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-01-15 10:30:00", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-01-15T10:30:00", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"05/02/2025", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)}, // day-first wins
		{"05-02-2025", time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)},
		{"01/15/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)}, // only valid month-first
		{"15.01.2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"45658", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, // Excel serial
		{"January 15, 2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			if err != nil {
				t.Fatalf("ParseDate(%q) returned error: %v", tt.raw, err)
			}
			if got.Year() != tt.want.Year() || got.Month() != tt.want.Month() || got.Day() != tt.want.Day() {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.raw, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}

	for _, bad := range []string{"", "not a date", "-4", "99999999", "2025", "9999"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("ParseDate(%q) expected ErrUnparseableDate, got %v", bad, err)
		}
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := map[string]string{
		"2025-01":    "2025-01",
		"2025-1":     "2025-01",
		"2025-03-01": "2025-03",
		" 2025-02 ":  "2025-02",
		"45658":      "2025-01",
		"Q1":         "Q1",
	}
	for raw, want := range tests {
		if got := NormalizeMonth(raw); got != want {
			t.Errorf("NormalizeMonth(%q) = %q, want %q", raw, got, want)
		}
	}

	if IsMonthLabel("2025-13") || IsMonthLabel("2025-1") || !IsMonthLabel("2024-12") {
		t.Error("IsMonthLabel did not validate labels as expected")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		coerced int
		clamped int
		groups  int
	}{
		{"1234.5", 1234.5, 0, 0, 0},
		{"1 234,50", 1234.5, 0, 0, 0},
		{"1,234.50", 1234.5, 0, 0, 0},
		{"abc", 0, 1, 0, 0},
		{"", 0, 1, 0, 0},
		{"-5", 0, 0, 1, 0},
		{"12,000", 12, 0, 0, 1},
		{"12,00", 12, 0, 0, 0},
		{"1,234,567", 0, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var issues Issues
			got := parseAmount(tt.raw, &issues)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if issues.Coerced != tt.coerced || issues.Clamped != tt.clamped || issues.CommaGroups != tt.groups {
				t.Errorf("parseAmount(%q) issues = %+v", tt.raw, issues)
			}
		})
	}

	var issues Issues
	if got := parseCount("2.6", &issues); got != 3 {
		t.Errorf("parseCount rounds to nearest, got %d", got)
	}
}

func TestDecodeFacts(t *testing.T) {
	table := Table{
		Header: FactColumns,
		Rows: [][]string{
			{"M1", "2025-01-10", "Food", "10", "3", "30"},
			{"M1", "2025-01-11", "Food", "10", "3", "45"}, // inconsistent
			{"M2", "2025-01-12", "Drinks", "x", "-1", "0"},
		},
	}

	records, issues, err := DecodeFacts(table)
	if err != nil {
		t.Fatalf("DecodeFacts returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].LineTotal != 30 || records[0].Qty != 3 {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if issues.Inconsistent != 1 {
		t.Errorf("Expected 1 inconsistent row, got %d", issues.Inconsistent)
	}
	if issues.Coerced != 1 || issues.Clamped != 1 {
		t.Errorf("Expected 1 coercion and 1 clamp, got %+v", issues)
	}
	if len(issues.Messages()) != 3 {
		t.Errorf("Expected 3 warning messages, got %v", issues.Messages())
	}
}

func TestDecodeFactsErrors(t *testing.T) {
	_, _, err := DecodeFacts(Table{Header: []string{"Magazin", "Datasales"}})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 4 {
		t.Errorf("Expected 4 missing columns, got %v", schemaErr.Missing)
	}

	_, _, err = DecodeFacts(Table{Header: FactColumns})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestDecodePlans(t *testing.T) {
	table := Table{
		Header: PlanColumns,
		Rows: [][]string{
			{"M1", "Food", "2025-01-01", "1000", "10"},
			{"M1", "Food", "2025-01", "2000", "20"}, // duplicate key after normalization
			{"M2", "Food", "someday", "500", "5"},
		},
	}

	plans, issues, err := DecodePlans(table)
	if err != nil {
		t.Fatalf("DecodePlans returned error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("Expected 2 plans, got %d", len(plans))
	}
	if plans[0].Month != "2025-01" || plans[0].PlannedRevenue != 1000 {
		t.Errorf("Expected first duplicate to win, got %+v", plans[0])
	}
	if issues.DuplicatePlans != 1 || issues.InvalidMonths != 1 {
		t.Errorf("Unexpected issues: %+v", issues)
	}
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFMagazin;Datasales;Segment;Price;Qty;Sum\n" +
		"M1;2025-01-10;Food;10,5;2;21\n" +
		";;;;;\n" +
		"M2;2025-01-11;Drinks;4;1;4\n"

	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if table.Header[0] != "Magazin" {
		t.Errorf("Expected BOM to be stripped, got %q", table.Header[0])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected blank row to be skipped, got %d rows", len(table.Rows))
	}

	records, _, err := DecodeFacts(table)
	if err != nil {
		t.Fatalf("DecodeFacts returned error: %v", err)
	}
	if records[0].Price != 10.5 {
		t.Errorf("Expected decimal comma to parse, got %v", records[0].Price)
	}

	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for empty CSV, got %v", err)
	}
}
