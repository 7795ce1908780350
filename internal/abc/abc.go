package abc

import (
	"cmp"
	"slices"

	"planfact/internal/reconcile"
	"planfact/internal/stats"
)

// Category is an ABC contribution class.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

// Cumulative share thresholds (inclusive) for categories A and B.
const (
	ThresholdA = 80.0
	ThresholdB = 95.0
)

// Classification is the ABC result for one outlet.
type Classification struct {
	Outlet          string   `json:"outlet"`
	RevenuePlan     float64  `json:"revenue_plan"`
	RevenueFact     float64  `json:"revenue_fact"`
	CumulativeFact  float64  `json:"cumulative_revenue"`
	CumulativePct   float64  `json:"cumulative_pct"`
	Category        Category `json:"category"`
	PlanAchievement float64  `json:"plan_achievement_pct"`
}

// CategoryFor maps a cumulative revenue share to its category.
func CategoryFor(cumulativePct float64) Category {
	switch {
	case cumulativePct <= ThresholdA:
		return CategoryA
	case cumulativePct <= ThresholdB:
		return CategoryB
	default:
		return CategoryC
	}
}

// Classify ranks outlets by actual revenue (descending, ties in first-seen
// order) and buckets them by their cumulative share of total revenue.
// When total revenue is zero every outlet lands in category A.
func Classify(records []reconcile.ReconciledRecord) []Classification {
	var order []string
	byOutlet := make(map[string]*Classification)
	for _, r := range records {
		c, ok := byOutlet[r.Outlet]
		if !ok {
			c = &Classification{Outlet: r.Outlet}
			byOutlet[r.Outlet] = c
			order = append(order, r.Outlet)
		}
		c.RevenuePlan += r.RevenuePlan
		c.RevenueFact += r.RevenueFact
	}

	out := make([]Classification, 0, len(order))
	total := 0.0
	for _, name := range order {
		out = append(out, *byOutlet[name])
		total += byOutlet[name].RevenueFact
	}

	slices.SortStableFunc(out, func(a, b Classification) int {
		return cmp.Compare(b.RevenueFact, a.RevenueFact)
	})

	cumulative := 0.0
	for i := range out {
		cumulative += out[i].RevenueFact
		out[i].CumulativeFact = cumulative
		out[i].CumulativePct = stats.Percent(cumulative, total)
		out[i].Category = CategoryFor(out[i].CumulativePct)
		out[i].PlanAchievement = stats.RoundTo(stats.Percent(out[i].RevenueFact, out[i].RevenuePlan), 2)
	}
	return out
}

// Count returns the number of outlets per category.
func Count(classes []Classification) map[Category]int {
	counts := map[Category]int{CategoryA: 0, CategoryB: 0, CategoryC: 0}
	for _, c := range classes {
		counts[c.Category]++
	}
	return counts
}
