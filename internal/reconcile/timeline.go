package reconcile

import (
	"cmp"
	"slices"

	"planfact/internal/sales"
	"planfact/internal/stats"

	"github.com/shopspring/decimal"
)

// TimelinePoint is the fact revenue of one period, optionally for a single segment.
type TimelinePoint struct {
	Period  string  `json:"period"`
	Segment string  `json:"segment,omitempty"`
	Revenue float64 `json:"revenue"`
	Units   int     `json:"units"`
}

type periodKey struct {
	period  string
	segment string
}

// Timeline sums fact revenue per period at the given grain. When months is
// non-empty only sales in those months are included. With bySegment each
// period is split per segment.
func Timeline(sold []sales.NormalizedSale, grain stats.Grain, months []string, bySegment bool) []TimelinePoint {
	revenue := make(map[periodKey]decimal.Decimal)
	units := make(map[periodKey]int)
	for _, s := range sold {
		if len(months) > 0 && !slices.Contains(months, s.Month) {
			continue
		}
		k := periodKey{period: period(s, grain)}
		if bySegment {
			k.segment = s.Segment
		}
		if _, ok := revenue[k]; !ok {
			revenue[k] = decimal.Zero
		}
		revenue[k] = revenue[k].Add(decimal.NewFromFloat(s.LineTotal))
		units[k] += s.Qty
	}

	out := make([]TimelinePoint, 0, len(revenue))
	for k, v := range revenue {
		out = append(out, TimelinePoint{
			Period:  k.period,
			Segment: k.segment,
			Revenue: v.InexactFloat64(),
			Units:   units[k],
		})
	}
	slices.SortFunc(out, func(a, b TimelinePoint) int {
		if c := cmp.Compare(a.Period, b.Period); c != 0 {
			return c
		}
		return cmp.Compare(a.Segment, b.Segment)
	})
	return out
}

func period(s sales.NormalizedSale, grain stats.Grain) string {
	switch grain {
	case stats.GrainDay:
		return s.Day
	case stats.GrainWeek:
		return s.Week
	default:
		return s.Month
	}
}
