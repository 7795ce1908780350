package sales

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fact and plan column names.
const (
	ColOutlet      = "Magazin"
	ColDate        = "Datasales"
	ColSegment     = "Segment"
	ColPrice       = "Price"
	ColQty         = "Qty"
	ColSum         = "Sum"
	ColMonth       = "Month"
	ColRevenuePlan = "Revenue_Plan"
	ColUnitsPlan   = "Units_Plan"
)

var (
	FactColumns = []string{ColOutlet, ColDate, ColSegment, ColPrice, ColQty, ColSum}
	PlanColumns = []string{ColOutlet, ColSegment, ColMonth, ColRevenuePlan, ColUnitsPlan}
)

// consistencyTolerance is the relative gap allowed between Sum and Price*Qty.
const consistencyTolerance = 0.01

// ErrEmptyInput is returned when a table carries no data rows.
var ErrEmptyInput = errors.New("empty input")

// SchemaError reports required columns that are absent from a table.
type SchemaError struct {
	Table    string
	Missing  []string
	Expected []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table is missing columns %v (expected %v)", e.Table, e.Missing, e.Expected)
}

// Table is a raw header + rows grid as produced by a reader.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Issues counts recoverable data problems found while decoding and reconciling.
type Issues struct {
	Coerced        int `json:"coerced_values"`      // Non-numeric values replaced by 0
	Clamped        int `json:"clamped_values"`      // Negative values replaced by 0
	Inconsistent   int `json:"inconsistent_totals"` // Sum differs from Price*Qty beyond tolerance
	DroppedDates   int `json:"dropped_dates"`       // Fact rows with unparseable dates
	DuplicatePlans int `json:"duplicate_plan_keys"` // Repeated (outlet, segment, month) plan rows
	InvalidMonths  int `json:"invalid_plan_months"` // Plan rows whose Month is not YYYY-MM
	CommaGroups    int `json:"comma_groups"`        // "12,000" style amounts read as decimals
}

// Add merges the counts of o into i.
func (i *Issues) Add(o Issues) {
	i.Coerced += o.Coerced
	i.Clamped += o.Clamped
	i.Inconsistent += o.Inconsistent
	i.DroppedDates += o.DroppedDates
	i.DuplicatePlans += o.DuplicatePlans
	i.InvalidMonths += o.InvalidMonths
	i.CommaGroups += o.CommaGroups
}

// Messages renders the non-zero counts as human readable warnings.
func (i Issues) Messages() []string {
	var out []string
	add := func(n int, format string) {
		if n > 0 {
			out = append(out, fmt.Sprintf(format, n))
		}
	}
	add(i.Coerced, "%d non-numeric values were coerced to 0")
	add(i.Clamped, "%d negative values were clamped to 0")
	add(i.Inconsistent, "%d fact rows have Sum differing from Price*Qty by more than 1%%")
	add(i.DroppedDates, "%d fact rows were dropped because their date could not be parsed")
	add(i.DuplicatePlans, "%d duplicate plan rows were ignored")
	add(i.InvalidMonths, "%d plan rows have a Month that is not YYYY-MM")
	add(i.CommaGroups, "%d amounts with a comma before three digits were read as decimals")
	return out
}

// columnIndex resolves the position of every expected column or returns a SchemaError.
func columnIndex(table string, header []string, expected []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range expected {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: table, Missing: missing, Expected: expected}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseAmount reads a non-negative float, counting coercions and clamps.
// Without a dot a comma is the decimal separator, so "12,000" reads as 12;
// such values are counted in CommaGroups.
func parseAmount(raw string, issues *Issues) float64 {
	raw = strings.NewReplacer(" ", "", "\u00a0", "").Replace(raw)
	if strings.Contains(raw, ".") {
		raw = strings.ReplaceAll(raw, ",", "")
	} else if i := strings.IndexByte(raw, ','); i >= 0 {
		if frac := raw[i+1:]; len(frac) == 3 && isDigits(frac) {
			issues.CommaGroups++
		}
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		issues.Coerced++
		return 0
	}
	if v < 0 {
		issues.Clamped++
		return 0
	}
	return v
}

// parseCount reads a non-negative integer; fractional input is rounded.
func parseCount(raw string, issues *Issues) int {
	return int(math.Round(parseAmount(raw, issues)))
}

// DecodeFacts converts a raw fact table into SalesRecords.
func DecodeFacts(t Table) ([]SalesRecord, Issues, error) {
	var issues Issues
	idx, err := columnIndex("fact", t.Header, FactColumns)
	if err != nil {
		return nil, issues, err
	}
	if len(t.Rows) == 0 {
		return nil, issues, fmt.Errorf("fact table: %w", ErrEmptyInput)
	}

	records := make([]SalesRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := SalesRecord{
			Outlet:    cell(row, idx[ColOutlet]),
			SaleDate:  cell(row, idx[ColDate]),
			Segment:   cell(row, idx[ColSegment]),
			Price:     parseAmount(cell(row, idx[ColPrice]), &issues),
			Qty:       parseCount(cell(row, idx[ColQty]), &issues),
			LineTotal: parseAmount(cell(row, idx[ColSum]), &issues),
		}
		if !IsConsistent(r) {
			issues.Inconsistent++
		}
		records = append(records, r)
	}
	return records, issues, nil
}

// DecodePlans converts a raw plan table into PlanTargets. Duplicate keys keep
// the first occurrence.
func DecodePlans(t Table) ([]PlanTarget, Issues, error) {
	var issues Issues
	idx, err := columnIndex("plan", t.Header, PlanColumns)
	if err != nil {
		return nil, issues, err
	}
	if len(t.Rows) == 0 {
		return nil, issues, fmt.Errorf("plan table: %w", ErrEmptyInput)
	}

	seen := make(map[Key]bool, len(t.Rows))
	plans := make([]PlanTarget, 0, len(t.Rows))
	for _, row := range t.Rows {
		p := PlanTarget{
			Outlet:         cell(row, idx[ColOutlet]),
			Segment:        cell(row, idx[ColSegment]),
			Month:          NormalizeMonth(cell(row, idx[ColMonth])),
			PlannedRevenue: parseAmount(cell(row, idx[ColRevenuePlan]), &issues),
			PlannedUnits:   parseCount(cell(row, idx[ColUnitsPlan]), &issues),
		}
		if !IsMonthLabel(p.Month) {
			issues.InvalidMonths++
		}
		if seen[p.Key()] {
			issues.DuplicatePlans++
			continue
		}
		seen[p.Key()] = true
		plans = append(plans, p)
	}
	return plans, issues, nil
}

// IsConsistent reports whether LineTotal matches Price*Qty within 1%.
func IsConsistent(r SalesRecord) bool {
	expected := r.Price * float64(r.Qty)
	if expected == 0 {
		return r.LineTotal == 0
	}
	return math.Abs(r.LineTotal-expected)/expected <= consistencyTolerance
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
