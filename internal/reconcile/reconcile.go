package reconcile

import (
	"fmt"

	"planfact/internal/sales"
	"planfact/internal/stats"

	"github.com/shopspring/decimal"
)

// ReconciledRecord is one (outlet, segment, month) row of plan vs fact.
type ReconciledRecord struct {
	Outlet         string  `json:"outlet"`
	Segment        string  `json:"segment"`
	Month          string  `json:"month"`
	RevenuePlan    float64 `json:"revenue_plan"`
	RevenueFact    float64 `json:"revenue_fact"`
	RevenueDiff    float64 `json:"revenue_diff"`
	RevenueDiffPct float64 `json:"revenue_diff_pct"`
	UnitsPlan      int     `json:"units_plan"`
	UnitsFact      int     `json:"units_fact"`
	UnitsDiff      int     `json:"units_diff"`
	UnitsDiffPct   float64 `json:"units_diff_pct"`
}

// Result is the output of Reconcile.
type Result struct {
	Records      []ReconciledRecord     `json:"records"`
	Sales        []sales.NormalizedSale `json:"-"`
	DroppedDates int                    `json:"dropped_dates"`
	Unplanned    int                    `json:"unplanned_keys"` // Fact keys without a plan row
}

// ValidationError is returned when fact rows exist but none of them carries a usable date.
type ValidationError struct {
	Rows   int
	Sample string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("none of the %d fact rows has a parseable sale date (e.g. %q)", e.Rows, e.Sample)
}

type factAgg struct {
	revenue decimal.Decimal
	units   int
}

// Normalize resolves the sale date of every record. Records whose date cannot
// be parsed are skipped and counted.
func Normalize(records []sales.SalesRecord) ([]sales.NormalizedSale, int) {
	out := make([]sales.NormalizedSale, 0, len(records))
	dropped := 0
	for _, r := range records {
		d, err := sales.ParseDate(r.SaleDate)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, sales.NormalizedSale{
			SalesRecord: r,
			Date:        d,
			Day:         stats.PeriodLabel(d, stats.GrainDay),
			Week:        stats.PeriodLabel(d, stats.GrainWeek),
			Month:       stats.PeriodLabel(d, stats.GrainMonth),
		})
	}
	return out, dropped
}

// Reconcile left-joins plan targets with facts aggregated by (outlet, segment, month).
// Plan rows without facts get zero actuals; fact keys without a plan are counted
// in Unplanned but stay available in Sales for time-series work.
func Reconcile(facts []sales.SalesRecord, plans []sales.PlanTarget) (*Result, error) {
	normalized, dropped := Normalize(facts)
	if len(facts) > 0 && len(normalized) == 0 {
		return nil, &ValidationError{Rows: len(facts), Sample: facts[0].SaleDate}
	}

	agg := make(map[sales.Key]*factAgg)
	for _, s := range normalized {
		a, ok := agg[s.Key()]
		if !ok {
			a = &factAgg{revenue: decimal.Zero}
			agg[s.Key()] = a
		}
		a.revenue = a.revenue.Add(decimal.NewFromFloat(s.LineTotal))
		a.units += s.Qty
	}

	planned := make(map[sales.Key]bool, len(plans))
	records := make([]ReconciledRecord, 0, len(plans))
	for _, p := range plans {
		planned[p.Key()] = true

		var fact float64
		var units int
		if a, ok := agg[p.Key()]; ok {
			fact = a.revenue.InexactFloat64()
			units = a.units
		}
		records = append(records, newRecord(p, fact, units))
	}

	unplanned := 0
	for k := range agg {
		if !planned[k] {
			unplanned++
		}
	}

	return &Result{
		Records:      records,
		Sales:        normalized,
		DroppedDates: dropped,
		Unplanned:    unplanned,
	}, nil
}

func newRecord(p sales.PlanTarget, fact float64, units int) ReconciledRecord {
	revDiff := decimal.NewFromFloat(fact).Sub(decimal.NewFromFloat(p.PlannedRevenue)).InexactFloat64()
	unitsDiff := units - p.PlannedUnits
	return ReconciledRecord{
		Outlet:         p.Outlet,
		Segment:        p.Segment,
		Month:          p.Month,
		RevenuePlan:    p.PlannedRevenue,
		RevenueFact:    fact,
		RevenueDiff:    revDiff,
		RevenueDiffPct: stats.RoundTo(stats.Percent(revDiff, p.PlannedRevenue), 2),
		UnitsPlan:      p.PlannedUnits,
		UnitsFact:      units,
		UnitsDiff:      unitsDiff,
		UnitsDiffPct:   stats.RoundTo(stats.Percent(float64(unitsDiff), float64(p.PlannedUnits)), 2),
	}
}
