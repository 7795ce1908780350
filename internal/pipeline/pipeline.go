package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planfact/internal/abc"
	"planfact/internal/advisor"
	"planfact/internal/forecast"
	"planfact/internal/planning"
	"planfact/internal/reconcile"
	"planfact/internal/sales"
	"planfact/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Report is the complete output of one analysis run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Options     Options   `json:"options"`

	// Plan vs fact
	Reconciled []reconcile.ReconciledRecord `json:"reconciled"`
	KPI        reconcile.KPI                `json:"kpi"`
	Outlets    []reconcile.Summary          `json:"outlets"`
	Segments   []reconcile.Summary          `json:"segments"`
	Rankings   []reconcile.Ranking          `json:"rankings"`
	Alerts     []reconcile.ReconciledRecord `json:"alerts"`
	Timeline   []reconcile.TimelinePoint    `json:"timeline"`
	ByPeriod   []reconcile.TimelinePoint    `json:"segment_timeline"`
	ABC        []abc.Classification         `json:"abc"`

	// Forecasting
	Series     forecast.Series          `json:"series"`
	GrowthRate float64                  `json:"growth_rate_pct"`
	Forecasts  []forecast.Result        `json:"forecasts"`
	Scenario   *forecast.ScenarioResult `json:"scenario,omitempty"`
	Backtest   []forecast.Backtest      `json:"backtest"`
	Growth     []forecast.Point         `json:"growth_forecast"`
	SmartPlan  []planning.Entry         `json:"smart_plan"`

	// Advice
	Metrics         advisor.Metrics          `json:"metrics"`
	Recommendations []advisor.Recommendation `json:"recommendations"`

	Issues   sales.Issues `json:"issues"`
	Warnings []string     `json:"warnings"`
}

// Run decodes raw fact and plan tables and analyzes them.
func Run(ctx context.Context, facts, plans sales.Table, opts Options) (*Report, error) {
	factRows, factIssues, err := sales.DecodeFacts(facts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode facts: %w", err)
	}
	planRows, planIssues, err := sales.DecodePlans(plans)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}
	factIssues.Add(planIssues)
	return Analyze(ctx, factRows, planRows, opts, factIssues)
}

// Analyze runs every stage over decoded records. Issues found while decoding
// are carried into the report.
func Analyze(ctx context.Context, facts []sales.SalesRecord, plans []sales.PlanTarget, opts Options, issues sales.Issues) (*Report, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Options:     opts,
	}
	logger := log.With().Str("run_id", report.RunID).Logger()
	logger.Info().
		Int("facts", len(facts)).
		Int("plans", len(plans)).
		Int("horizon", opts.Horizon).
		Str("model", opts.Model.String()).
		Str("scenario", string(opts.Scenario)).
		Msg("Starting analysis")

	// 1. Reconcile
	rec, err := reconcile.Reconcile(facts, plans)
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}
	issues.DroppedDates += rec.DroppedDates
	report.Issues = issues
	report.Warnings = append(report.Warnings, issues.Messages()...)
	if rec.Unplanned > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d outlet/segment/month combinations have sales but no plan", rec.Unplanned))
	}
	logger.Debug().Int("records", len(rec.Records)).Int("dropped_dates", rec.DroppedDates).Msg("Reconciled")

	// 2. Summaries over the selected months and segments
	selected := reconcile.Filter(rec.Records, opts.Months, opts.Segments)
	report.Reconciled = selected
	report.KPI = reconcile.Totals(selected)
	report.Outlets = reconcile.ByOutlet(selected)
	report.Segments = reconcile.BySegment(selected)
	report.Rankings = reconcile.RankSegments(selected)
	report.Alerts = reconcile.Alerts(selected)
	report.Timeline = reconcile.Timeline(rec.Sales, opts.Grain, opts.Months, false)
	report.ByPeriod = reconcile.Timeline(rec.Sales, opts.Grain, opts.Months, true)
	report.ABC = abc.Classify(selected)

	// 3. Forecast over the full history
	if err := report.forecast(ctx, rec, opts); err != nil {
		return nil, err
	}

	// 4. Advice
	report.Metrics = advisor.ComputeMetrics(selected)
	report.Recommendations = advisor.Recommend(report.Metrics, report.ABC)

	logger.Info().
		Int("alerts", len(report.Alerts)).
		Int("recommendations", len(report.Recommendations)).
		Int("warnings", len(report.Warnings)).
		Msg("Analysis complete")
	return report, nil
}

// Forecast runs only the forecasting stage over decoded facts. Plan-dependent
// sections of the report stay empty.
func Forecast(ctx context.Context, facts []sales.SalesRecord, opts Options, issues sales.Issues) (*Report, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rec, err := reconcile.Reconcile(facts, nil)
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Options:     opts,
	}
	issues.DroppedDates += rec.DroppedDates
	report.Issues = issues
	report.Warnings = append(report.Warnings, report.Issues.Messages()...)
	if err := report.forecast(ctx, rec, opts); err != nil {
		return nil, err
	}
	log.Debug().Str("run_id", report.RunID).Int("months", len(report.Series)).Msg("Forecast complete")
	return report, nil
}

func (r *Report) forecast(ctx context.Context, rec *reconcile.Result, opts Options) error {
	r.Series = forecast.SeriesFromSales(rec.Sales)
	r.GrowthRate = stats.GrowthRate(r.Series.Revenues())

	suite, err := forecast.Run(ctx, r.Series, opts.Horizon)
	switch {
	case errors.Is(err, forecast.ErrNoForecast):
		r.Warnings = append(r.Warnings, forecast.ErrNoForecast.Error())
	case err != nil:
		return fmt.Errorf("forecast failed: %w", err)
	}
	if suite != nil {
		for _, k := range forecast.Kinds() {
			if reason, ok := suite.Skipped[k]; ok {
				r.Warnings = append(r.Warnings, fmt.Sprintf("model %s skipped: %s", k, reason))
			}
		}
		r.Forecasts = suite.All()

		chosen, selErr := suite.Select(opts.Model)
		if selErr != nil && opts.Model != forecast.Ensemble && len(suite.Models) > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("model %s unavailable, scenario uses the ensemble", opts.Model))
			chosen, selErr = suite.Select(forecast.Ensemble)
		}
		if selErr == nil {
			projected := forecast.Project(chosen, opts.Scenario)
			r.Scenario = &projected
		}
	}

	backtest, err := forecast.WalkForward(ctx, r.Series)
	switch {
	case errors.Is(err, forecast.ErrInsufficientData):
	case err != nil:
		return fmt.Errorf("backtest failed: %w", err)
	default:
		r.Backtest = backtest
	}

	growth, err := forecast.Compound(r.Series, r.GrowthRate, opts.Horizon)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("smart plan unavailable: %v", err))
		return nil
	}
	r.Growth = growth
	r.SmartPlan = planning.Allocate(rec.Records, growth, opts.AdjustmentFactor)
	return nil
}
