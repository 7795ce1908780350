package advisor

import (
	"fmt"

	"planfact/internal/abc"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Recommendation categories.
const (
	CategoryPlanAchievement = "Plan achievement"
	CategorySegment         = "Segment"
	CategoryABC             = "ABC analysis"
	CategoryAverageCheck    = "Average check"
	CategoryNetwork         = "Network"
)

// Rule thresholds, in percent.
const (
	underPlanThreshold     = 90.0
	overPlanThreshold      = 110.0
	segmentThreshold       = 85.0
	avgCheckThreshold      = -10.0
	outletSuccessThreshold = 50.0
)

// Recommendation is one actionable finding.
type Recommendation struct {
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Issue          string   `json:"issue"`
	Recommendation string   `json:"recommendation"`
}

// Recommend evaluates every rule in a fixed order. Rules are independent, so
// several may fire; an empty result means no rule matched. Achievement rules
// are skipped for a network or segment without a revenue plan.
func Recommend(m Metrics, classes []abc.Classification) []Recommendation {
	var out []Recommendation
	planned := m.RevenuePlan > 0

	if planned && m.PlanAchievement < underPlanThreshold {
		out = append(out, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryPlanAchievement,
			Issue:          fmt.Sprintf("Plan achieved at %.1f%%", m.PlanAchievement),
			Recommendation: "Revise targets downward or increase marketing spend to close the gap",
		})
	}

	if planned && m.PlanAchievement > overPlanThreshold {
		out = append(out, Recommendation{
			Priority:       PriorityMedium,
			Category:       CategoryPlanAchievement,
			Issue:          fmt.Sprintf("Plan exceeded at %.1f%%", m.PlanAchievement),
			Recommendation: "Raise targets for the next period to reflect actual demand",
		})
	}

	for _, s := range m.Segments {
		if s.RevenuePlan > 0 && s.Achievement < segmentThreshold {
			out = append(out, Recommendation{
				Priority:       PriorityHigh,
				Category:       CategorySegment,
				Issue:          fmt.Sprintf("Segment %s achieved %.1f%% of plan", s.Segment, s.Achievement),
				Recommendation: fmt.Sprintf("Review assortment, pricing and promotion for segment %s", s.Segment),
			})
		}
	}

	if n := abc.Count(classes)[abc.CategoryC]; n > 0 {
		out = append(out, Recommendation{
			Priority:       PriorityMedium,
			Category:       CategoryABC,
			Issue:          fmt.Sprintf("%d outlets fall into category C", n),
			Recommendation: "Audit low-contribution outlets and optimize their operations or footprint",
		})
	}

	if m.AvgCheckVariance < avgCheckThreshold {
		out = append(out, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryAverageCheck,
			Issue:          fmt.Sprintf("Average check is %.1f%% below plan", -m.AvgCheckVariance),
			Recommendation: "Train staff on upselling and review bundle offers",
		})
	}

	if m.Outlets > 0 && m.OutletSuccessRate < outletSuccessThreshold {
		out = append(out, Recommendation{
			Priority:       PriorityCritical,
			Category:       CategoryNetwork,
			Issue:          fmt.Sprintf("Only %d of %d outlets met their plan", m.OutletsOnPlan, m.Outlets),
			Recommendation: "Run a network-wide audit of outlet performance and plan realism",
		})
	}

	return out
}
