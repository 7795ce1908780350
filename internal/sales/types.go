package sales

import "time"

// SalesRecord is a single fact row as supplied by the caller.
type SalesRecord struct {
	Outlet    string  `json:"outlet"`
	SaleDate  string  `json:"sale_date"` // Raw text; normalized during reconciliation
	Segment   string  `json:"segment"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"sum"`
}

// PlanTarget is one planned (outlet, segment, month) target.
type PlanTarget struct {
	Outlet         string  `json:"outlet"`
	Segment        string  `json:"segment"`
	Month          string  `json:"month"` // YYYY-MM
	PlannedRevenue float64 `json:"revenue_plan"`
	PlannedUnits   int     `json:"units_plan"`
}

// Key is the natural key of a plan target.
func (p PlanTarget) Key() Key {
	return Key{Outlet: p.Outlet, Segment: p.Segment, Month: p.Month}
}

// NormalizedSale is a SalesRecord with its date resolved into calendar keys.
type NormalizedSale struct {
	SalesRecord
	Date  time.Time `json:"date"`
	Day   string    `json:"day"`   // YYYY-MM-DD
	Week  string    `json:"week"`  // ISO week, YYYY-Www
	Month string    `json:"month"` // YYYY-MM
}

// Key returns the (outlet, segment, month) triple of the sale.
func (s NormalizedSale) Key() Key {
	return Key{Outlet: s.Outlet, Segment: s.Segment, Month: s.Month}
}

// Key identifies an outlet x segment x month cell.
type Key struct {
	Outlet  string
	Segment string
	Month   string
}

// Pair identifies an outlet x segment combination regardless of month.
type Pair struct {
	Outlet  string `json:"outlet"`
	Segment string `json:"segment"`
}
