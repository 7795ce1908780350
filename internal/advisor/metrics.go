package advisor

import (
	"planfact/internal/reconcile"
	"planfact/internal/stats"
)

// SegmentAchievement is the plan achievement of one segment.
type SegmentAchievement struct {
	Segment     string  `json:"segment"`
	RevenuePlan float64 `json:"revenue_plan"`
	Achievement float64 `json:"achievement_pct"`
}

// Metrics are the network-level financial aggregates the rules run against.
type Metrics struct {
	RevenuePlan       float64              `json:"revenue_plan"`
	RevenueFact       float64              `json:"revenue_fact"`
	PlanAchievement   float64              `json:"plan_achievement_pct"`
	Segments          []SegmentAchievement `json:"segments"`
	AvgCheckPlan      float64              `json:"avg_check_plan"`
	AvgCheckFact      float64              `json:"avg_check_fact"`
	AvgCheckVariance  float64              `json:"avg_check_variance_pct"`
	Outlets           int                  `json:"outlets"`
	OutletsOnPlan     int                  `json:"outlets_on_plan"`
	OutletSuccessRate float64              `json:"outlet_success_rate_pct"`
	MedianAchievement float64              `json:"median_outlet_achievement_pct"`
}

// ComputeMetrics aggregates reconciled records. Achievements are fact/plan*100
// and an outlet is on plan when its total fact reaches its total plan.
func ComputeMetrics(records []reconcile.ReconciledRecord) Metrics {
	kpi := reconcile.Totals(records)
	m := Metrics{
		RevenuePlan:     kpi.RevenuePlan,
		RevenueFact:     kpi.RevenueFact,
		PlanAchievement: stats.RoundTo(stats.Percent(kpi.RevenueFact, kpi.RevenuePlan), 2),
		AvgCheckPlan:    stats.SafeDiv(kpi.RevenuePlan, float64(kpi.UnitsPlan), 0),
		AvgCheckFact:    stats.SafeDiv(kpi.RevenueFact, float64(kpi.UnitsFact), 0),
	}
	m.AvgCheckVariance = stats.RoundTo(stats.Percent(m.AvgCheckFact-m.AvgCheckPlan, m.AvgCheckPlan), 2)

	for _, s := range reconcile.BySegment(records) {
		m.Segments = append(m.Segments, SegmentAchievement{Segment: s.Name, RevenuePlan: s.RevenuePlan, Achievement: s.Achievement})
	}

	outlets := reconcile.ByOutlet(records)
	achievements := make([]float64, 0, len(outlets))
	for _, o := range outlets {
		if o.RevenueFact >= o.RevenuePlan {
			m.OutletsOnPlan++
		}
		achievements = append(achievements, o.Achievement)
	}
	m.Outlets = len(outlets)
	m.OutletSuccessRate = stats.RoundTo(stats.Percent(float64(m.OutletsOnPlan), float64(m.Outlets)), 2)
	m.MedianAchievement = stats.CalculateMedianContinuous(achievements)
	return m
}
