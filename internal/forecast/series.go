package forecast

import (
	"cmp"
	"slices"

	"planfact/internal/sales"

	"github.com/shopspring/decimal"
)

// Point is one month of observed or forecast totals.
type Point struct {
	Month   string  `json:"month"` // YYYY-MM
	Revenue float64 `json:"revenue"`
	Units   int     `json:"units"`
}

// Series is a chronological run of monthly totals, one point per month present.
type Series []Point

// SeriesFromSales totals normalized sales per calendar month.
func SeriesFromSales(sold []sales.NormalizedSale) Series {
	revenue := make(map[string]decimal.Decimal)
	units := make(map[string]int)
	for _, s := range sold {
		if _, ok := revenue[s.Month]; !ok {
			revenue[s.Month] = decimal.Zero
		}
		revenue[s.Month] = revenue[s.Month].Add(decimal.NewFromFloat(s.LineTotal))
		units[s.Month] += s.Qty
	}

	out := make(Series, 0, len(revenue))
	for month, rev := range revenue {
		out = append(out, Point{Month: month, Revenue: rev.InexactFloat64(), Units: units[month]})
	}
	slices.SortFunc(out, func(a, b Point) int { return cmp.Compare(a.Month, b.Month) })
	return out
}

// Revenues returns the revenue column.
func (s Series) Revenues() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Revenue
	}
	return out
}

// UnitValues returns the units column as floats.
func (s Series) UnitValues() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Units)
	}
	return out
}

// Last returns the final point of the series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}
