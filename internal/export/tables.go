package export

import (
	"planfact/internal/pipeline"
	"planfact/internal/reconcile"
)

// Table is a flat, named grid ready to be written as CSV or as an XLSX sheet.
// Cells hold strings, ints or float64s.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

var varianceHeader = []string{"Magazin", "Segment", "Month", "Revenue_Plan", "Revenue_Fact", "Revenue_Diff", "Revenue_Diff_Pct", "Units_Plan", "Units_Fact", "Units_Diff", "Units_Diff_Pct"}

var summaryHeader = []string{"Name", "Revenue_Plan", "Revenue_Fact", "Revenue_Diff", "Revenue_Diff_Pct", "Units_Plan", "Units_Fact", "Units_Diff", "Units_Diff_Pct", "Achievement_Pct"}

// Tables flattens a report into its output tables, in a stable order.
// Empty tables are still returned with their header.
func Tables(r *pipeline.Report) []Table {
	return []Table{
		reconciledTable("reconciled", r.Reconciled),
		kpiTable(r),
		summaryTable("outlets", r.Outlets),
		summaryTable("segments", r.Segments),
		rankingTable(r.Rankings),
		reconciledTable("alerts", r.Alerts),
		abcTable(r),
		forecastTable(r),
		scenarioTable(r),
		backtestTable(r),
		smartPlanTable(r),
		timelineTable(r),
		recommendationTable(r),
		warningTable(r),
	}
}

func reconciledTable(name string, records []reconcile.ReconciledRecord) Table {
	t := Table{Name: name, Header: varianceHeader}
	for _, r := range records {
		t.Rows = append(t.Rows, []any{
			r.Outlet, r.Segment, r.Month,
			r.RevenuePlan, r.RevenueFact, r.RevenueDiff, r.RevenueDiffPct,
			r.UnitsPlan, r.UnitsFact, r.UnitsDiff, r.UnitsDiffPct,
		})
	}
	return t
}

func summaryRow(name string, k reconcile.KPI, achievement float64) []any {
	return []any{
		name,
		k.RevenuePlan, k.RevenueFact, k.RevenueDiff, k.RevenueDiffPct,
		k.UnitsPlan, k.UnitsFact, k.UnitsDiff, k.UnitsDiffPct,
		achievement,
	}
}

func kpiTable(r *pipeline.Report) Table {
	t := Table{Name: "kpi", Header: summaryHeader}
	t.Rows = append(t.Rows, summaryRow("Total", r.KPI, r.Metrics.PlanAchievement))
	return t
}

func summaryTable(name string, summaries []reconcile.Summary) Table {
	t := Table{Name: name, Header: summaryHeader}
	for _, s := range summaries {
		t.Rows = append(t.Rows, summaryRow(s.Name, s.KPI, s.Achievement))
	}
	return t
}

func rankingTable(rankings []reconcile.Ranking) Table {
	t := Table{Name: "rankings", Header: []string{"Segment", "Side", "Rank", "Magazin", "Revenue_Plan", "Revenue_Fact", "Revenue_Diff_Pct"}}
	for _, rk := range rankings {
		for i, s := range rk.Top {
			t.Rows = append(t.Rows, []any{rk.Segment, "top", i + 1, s.Name, s.RevenuePlan, s.RevenueFact, s.RevenueDiffPct})
		}
		for i, s := range rk.Bottom {
			t.Rows = append(t.Rows, []any{rk.Segment, "bottom", i + 1, s.Name, s.RevenuePlan, s.RevenueFact, s.RevenueDiffPct})
		}
	}
	return t
}

func abcTable(r *pipeline.Report) Table {
	t := Table{Name: "abc", Header: []string{"Magazin", "Category", "Revenue_Plan", "Revenue_Fact", "Achievement_Pct", "Cumulative_Revenue", "Cumulative_Pct"}}
	for _, c := range r.ABC {
		t.Rows = append(t.Rows, []any{c.Outlet, string(c.Category), c.RevenuePlan, c.RevenueFact, c.PlanAchievement, c.CumulativeFact, c.CumulativePct})
	}
	return t
}

var forecastHeader = []string{"Model", "Month", "Revenue", "Units", "MAPE", "RMSE", "MAE", "RMSE_Pct", "MAE_Pct"}

func forecastTable(r *pipeline.Report) Table {
	t := Table{Name: "forecast", Header: forecastHeader}
	for _, f := range r.Forecasts {
		for _, p := range f.Points {
			a := f.Accuracy
			t.Rows = append(t.Rows, []any{f.Model.String(), p.Month, p.Revenue, p.Units, a.MAPE, a.RMSE, a.MAE, a.RMSEPct, a.MAEPct})
		}
	}
	return t
}

func scenarioTable(r *pipeline.Report) Table {
	t := Table{Name: "scenario", Header: append(append([]string(nil), forecastHeader...), "Scenario", "Factor")}
	if r.Scenario == nil {
		return t
	}
	s := r.Scenario
	a := s.Accuracy
	for _, p := range s.Points {
		t.Rows = append(t.Rows, []any{s.Model.String(), p.Month, p.Revenue, p.Units, a.MAPE, a.RMSE, a.MAE, a.RMSEPct, a.MAEPct, string(s.Scenario), s.Factor})
	}
	return t
}

func backtestTable(r *pipeline.Report) Table {
	t := Table{Name: "backtest", Header: []string{"Model", "Month", "Actual", "Predicted", "Error_Pct", "Hit"}}
	for _, b := range r.Backtest {
		for _, c := range b.Checkpoints {
			t.Rows = append(t.Rows, []any{b.Model.String(), c.Month, c.Actual, c.Predicted, c.ErrorPct, c.Hit})
		}
	}
	return t
}

func smartPlanTable(r *pipeline.Report) Table {
	t := Table{Name: "smart_plan", Header: []string{"Magazin", "Segment", "Month", "Revenue_Plan", "Units_Plan"}}
	for _, e := range r.SmartPlan {
		t.Rows = append(t.Rows, []any{e.Outlet, e.Segment, e.Month, e.RevenuePlan, e.UnitsPlan})
	}
	return t
}

func timelineTable(r *pipeline.Report) Table {
	t := Table{Name: "timeline", Header: []string{"Period", "Segment", "Revenue", "Units"}}
	for _, p := range r.Timeline {
		t.Rows = append(t.Rows, []any{p.Period, "All", p.Revenue, p.Units})
	}
	for _, p := range r.ByPeriod {
		t.Rows = append(t.Rows, []any{p.Period, p.Segment, p.Revenue, p.Units})
	}
	return t
}

func recommendationTable(r *pipeline.Report) Table {
	t := Table{Name: "recommendations", Header: []string{"Priority", "Category", "Issue", "Recommendation"}}
	for _, rec := range r.Recommendations {
		t.Rows = append(t.Rows, []any{string(rec.Priority), rec.Category, rec.Issue, rec.Recommendation})
	}
	return t
}

func warningTable(r *pipeline.Report) Table {
	t := Table{Name: "warnings", Header: []string{"Warning"}}
	for _, w := range r.Warnings {
		t.Rows = append(t.Rows, []any{w})
	}
	return t
}
