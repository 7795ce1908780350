package planning

import (
	"planfact/internal/forecast"
	"planfact/internal/reconcile"
	"planfact/internal/sales"
	"planfact/internal/stats"
)

// Entry is an allocated plan for one outlet, segment and future month.
type Entry struct {
	Outlet      string  `json:"outlet"`
	Segment     string  `json:"segment"`
	Month       string  `json:"month"`
	RevenuePlan float64 `json:"revenue_plan"`
	UnitsPlan   int     `json:"units_plan"`
}

// Share is the historical revenue weight of an outlet x segment pair.
type Share struct {
	sales.Pair
	MeanRevenue float64 `json:"mean_revenue"`
	Share       float64 `json:"share"` // 0..1
}

// Shares computes each pair's mean actual revenue over its reconciled months
// and normalizes by the sum of all pair means. Pairs are returned in
// first-seen order.
func Shares(records []reconcile.ReconciledRecord) []Share {
	var order []sales.Pair
	revenue := make(map[sales.Pair][]float64)
	for _, r := range records {
		p := sales.Pair{Outlet: r.Outlet, Segment: r.Segment}
		if _, ok := revenue[p]; !ok {
			order = append(order, p)
		}
		revenue[p] = append(revenue[p], r.RevenueFact)
	}

	out := make([]Share, len(order))
	total := 0.0
	for i, p := range order {
		mean := stats.Mean(revenue[p])
		out[i] = Share{Pair: p, MeanRevenue: mean}
		total += mean
	}
	for i := range out {
		out[i].Share = stats.SafeDiv(out[i].MeanRevenue, total, 0)
	}
	return out
}

// Allocate distributes each forecast month across pairs by historical share,
// scaled by factor. Units are truncated. Entries are ordered by month, then pair.
func Allocate(records []reconcile.ReconciledRecord, projection []forecast.Point, factor float64) []Entry {
	shares := Shares(records)
	out := make([]Entry, 0, len(shares)*len(projection))
	for _, p := range projection {
		for _, s := range shares {
			out = append(out, Entry{
				Outlet:      s.Outlet,
				Segment:     s.Segment,
				Month:       p.Month,
				RevenuePlan: p.Revenue * s.Share * factor,
				UnitsPlan:   int(float64(p.Units) * s.Share * factor),
			})
		}
	}
	return out
}
