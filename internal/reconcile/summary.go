package reconcile

import (
	"cmp"
	"math"
	"slices"

	"planfact/internal/stats"

	"github.com/shopspring/decimal"
)

// alertThreshold is the absolute revenue variance percent beyond which a row is flagged.
const alertThreshold = 10.0

// rankSize is the number of outlets returned on each side of a segment ranking.
const rankSize = 5

// KPI holds network-wide plan vs fact totals.
type KPI struct {
	RevenuePlan    float64 `json:"revenue_plan"`
	RevenueFact    float64 `json:"revenue_fact"`
	RevenueDiff    float64 `json:"revenue_diff"`
	RevenueDiffPct float64 `json:"revenue_diff_pct"`
	UnitsPlan      int     `json:"units_plan"`
	UnitsFact      int     `json:"units_fact"`
	UnitsDiff      int     `json:"units_diff"`
	UnitsDiffPct   float64 `json:"units_diff_pct"`
}

// Summary is a KPI rolled up for a single outlet or segment.
type Summary struct {
	Name string `json:"name"`
	KPI
	Achievement float64 `json:"achievement_pct"` // Fact / plan * 100
}

type totals struct {
	revPlan, revFact     decimal.Decimal
	unitsPlan, unitsFact int
}

func (t *totals) add(r ReconciledRecord) {
	t.revPlan = t.revPlan.Add(decimal.NewFromFloat(r.RevenuePlan))
	t.revFact = t.revFact.Add(decimal.NewFromFloat(r.RevenueFact))
	t.unitsPlan += r.UnitsPlan
	t.unitsFact += r.UnitsFact
}

func (t totals) kpi() KPI {
	plan := t.revPlan.InexactFloat64()
	diff := t.revFact.Sub(t.revPlan).InexactFloat64()
	unitsDiff := t.unitsFact - t.unitsPlan
	return KPI{
		RevenuePlan:    plan,
		RevenueFact:    t.revFact.InexactFloat64(),
		RevenueDiff:    diff,
		RevenueDiffPct: stats.RoundTo(stats.Percent(diff, plan), 2),
		UnitsPlan:      t.unitsPlan,
		UnitsFact:      t.unitsFact,
		UnitsDiff:      unitsDiff,
		UnitsDiffPct:   stats.RoundTo(stats.Percent(float64(unitsDiff), float64(t.unitsPlan)), 2),
	}
}

// Totals computes the network KPI over all records.
func Totals(records []ReconciledRecord) KPI {
	t := totals{revPlan: decimal.Zero, revFact: decimal.Zero}
	for _, r := range records {
		t.add(r)
	}
	return t.kpi()
}

func summarize(records []ReconciledRecord, key func(ReconciledRecord) string) []Summary {
	groups := make(map[string]*totals)
	for _, r := range records {
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &totals{revPlan: decimal.Zero, revFact: decimal.Zero}
			groups[k] = g
		}
		g.add(r)
	}

	out := make([]Summary, 0, len(groups))
	for name, g := range groups {
		kpi := g.kpi()
		out = append(out, Summary{
			Name:        name,
			KPI:         kpi,
			Achievement: stats.RoundTo(stats.Percent(kpi.RevenueFact, kpi.RevenuePlan), 2),
		})
	}
	slices.SortFunc(out, func(a, b Summary) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// ByOutlet rolls records up per outlet, sorted by outlet name.
func ByOutlet(records []ReconciledRecord) []Summary {
	return summarize(records, func(r ReconciledRecord) string { return r.Outlet })
}

// BySegment rolls records up per segment, sorted by segment name.
func BySegment(records []ReconciledRecord) []Summary {
	return summarize(records, func(r ReconciledRecord) string { return r.Segment })
}

// Ranking lists the best and worst outlets of a segment by revenue variance percent.
type Ranking struct {
	Segment string    `json:"segment"`
	Top     []Summary `json:"top"`    // Highest variance first
	Bottom  []Summary `json:"bottom"` // Lowest variance first
}

// RankSegment ranks the outlets of one segment. Outlets with equal variance keep
// name order.
func RankSegment(records []ReconciledRecord, segment string) Ranking {
	var inSegment []ReconciledRecord
	for _, r := range records {
		if r.Segment == segment {
			inSegment = append(inSegment, r)
		}
	}

	outlets := ByOutlet(inSegment)
	slices.SortStableFunc(outlets, func(a, b Summary) int {
		return cmp.Compare(a.RevenueDiffPct, b.RevenueDiffPct)
	})

	n := min(rankSize, len(outlets))
	bottom := slices.Clone(outlets[:n])
	top := slices.Clone(outlets[len(outlets)-n:])
	slices.Reverse(top)

	return Ranking{Segment: segment, Top: top, Bottom: bottom}
}

// RankSegments ranks every segment present in records, in segment name order.
func RankSegments(records []ReconciledRecord) []Ranking {
	segments := BySegment(records)
	out := make([]Ranking, 0, len(segments))
	for _, s := range segments {
		out = append(out, RankSegment(records, s.Name))
	}
	return out
}

// Alerts returns the rows whose revenue variance exceeds 10% in either
// direction, sorted from the worst shortfall upwards.
func Alerts(records []ReconciledRecord) []ReconciledRecord {
	var out []ReconciledRecord
	for _, r := range records {
		if math.Abs(r.RevenueDiffPct) > alertThreshold {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b ReconciledRecord) int {
		return cmp.Compare(a.RevenueDiffPct, b.RevenueDiffPct)
	})
	return out
}

// Filter keeps records whose month and segment are selected. An empty selection
// does not restrict that dimension.
func Filter(records []ReconciledRecord, months, segments []string) []ReconciledRecord {
	out := make([]ReconciledRecord, 0, len(records))
	for _, r := range records {
		if len(months) > 0 && !slices.Contains(months, r.Month) {
			continue
		}
		if len(segments) > 0 && !slices.Contains(segments, r.Segment) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Months lists the distinct months of records in chronological order.
func Months(records []ReconciledRecord) []string {
	var out []string
	for _, r := range records {
		if !slices.Contains(out, r.Month) {
			out = append(out, r.Month)
		}
	}
	slices.Sort(out)
	return out
}
