package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"planfact/internal/abc"
	"planfact/internal/advisor"
	"planfact/internal/export"
	"planfact/internal/forecast"
	"planfact/internal/pipeline"
	"planfact/internal/planning"
	"planfact/internal/reconcile"
	"planfact/internal/sales"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// maxAlerts caps the alert rows returned inline; exports carry all of them.
const maxAlerts = 20

// AnalyzeInput is the argument object of analyze_plan_fact.
type AnalyzeInput struct {
	FactsPath        string   `json:"facts_path" jsonschema:"path to the sales fact file (CSV or XLSX)"`
	PlansPath        string   `json:"plans_path" jsonschema:"path to the sales plan file (CSV or XLSX)"`
	Horizon          int      `json:"horizon,omitempty" jsonschema:"months to forecast, 1 to 24"`
	Scenario         string   `json:"scenario,omitempty" jsonschema:"optimistic, realistic or pessimistic"`
	Model            string   `json:"model,omitempty" jsonschema:"linear, polynomial, exp_smoothing, wma or ensemble"`
	AdjustmentFactor float64  `json:"adjustment_factor,omitempty" jsonschema:"multiplier applied to the smart plan"`
	Grain            string   `json:"grain,omitempty" jsonschema:"timeline grain: day, week or month"`
	Months           []string `json:"months,omitempty" jsonschema:"restrict summaries to these YYYY-MM months"`
	Segments         []string `json:"segments,omitempty" jsonschema:"restrict summaries to these segments"`
	Format           string   `json:"format,omitempty" jsonschema:"export the full report as csv or xlsx"`
	OutputDir        string   `json:"output_dir,omitempty" jsonschema:"export directory, defaults to OUTPUT_DIR"`
}

func (in AnalyzeInput) request() pipeline.Request {
	return pipeline.Request{
		Horizon:          in.Horizon,
		Scenario:         in.Scenario,
		Model:            in.Model,
		AdjustmentFactor: in.AdjustmentFactor,
		Grain:            in.Grain,
		Months:           in.Months,
		Segments:         in.Segments,
	}
}

// ForecastInput is the argument object of forecast_revenue.
type ForecastInput struct {
	FactsPath string `json:"facts_path" jsonschema:"path to the sales fact file (CSV or XLSX)"`
	Horizon   int    `json:"horizon,omitempty" jsonschema:"months to forecast, 1 to 24"`
	Scenario  string `json:"scenario,omitempty" jsonschema:"optimistic, realistic or pessimistic"`
	Model     string `json:"model,omitempty" jsonschema:"model used for the scenario projection"`
}

// ListModelsInput is the (empty) argument object of list_forecast_models.
type ListModelsInput struct{}

// AnalysisSummary is the inline answer of analyze_plan_fact.
type AnalysisSummary struct {
	RunID           string                       `json:"run_id"`
	Options         pipeline.Options             `json:"options"`
	KPI             reconcile.KPI                `json:"kpi"`
	Segments        []reconcile.Summary          `json:"segments"`
	Alerts          []reconcile.ReconciledRecord `json:"alerts"`
	AlertCount      int                          `json:"alert_count"`
	ABC             map[abc.Category]int         `json:"abc_counts"`
	GrowthRate      float64                      `json:"growth_rate_pct"`
	Scenario        *forecast.ScenarioResult     `json:"scenario,omitempty"`
	SmartPlan       []planning.Entry             `json:"smart_plan"`
	Metrics         advisor.Metrics              `json:"metrics"`
	Recommendations []advisor.Recommendation     `json:"recommendations"`
	Issues          sales.Issues                 `json:"issues"`
	Files           []string                     `json:"files,omitempty"`
}

// ForecastSummary is the answer of forecast_revenue.
type ForecastSummary struct {
	RunID      string                   `json:"run_id"`
	Series     forecast.Series          `json:"series"`
	GrowthRate float64                  `json:"growth_rate_pct"`
	Forecasts  []forecast.Result        `json:"forecasts"`
	Scenario   *forecast.ScenarioResult `json:"scenario,omitempty"`
	Backtest   []forecast.Backtest      `json:"backtest"`
	Growth     []forecast.Point         `json:"growth_forecast"`
}

// Response is the envelope of every tool answer.
type Response struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
	Guidance []string `json:"guidance,omitempty"`
}

func (s *Server) handleAnalyze(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, any, error) {
	opts, err := in.request().Options(s.defaults)
	if err != nil {
		return nil, nil, err
	}
	facts, err := sales.ReadFile(s.resolve(in.FactsPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read facts: %w", err)
	}
	plans, err := sales.ReadFile(s.resolve(in.PlansPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plans: %w", err)
	}

	report, err := pipeline.Run(ctx, facts, plans, opts)
	if err != nil {
		return nil, nil, err
	}

	var files []string
	if in.Format != "" {
		format, err := export.ParseFormat(in.Format)
		if err != nil {
			return nil, nil, err
		}
		dir := s.cfg.OutputDir
		if in.OutputDir != "" {
			dir = s.resolve(in.OutputDir)
		}
		if files, err = export.Write(dir, format, export.Tables(report)); err != nil {
			return nil, nil, err
		}
	}

	var guidance []string
	if len(report.Alerts) > maxAlerts {
		guidance = append(guidance, fmt.Sprintf("Only the %d worst of %d alerts are listed. Export the report for the full list.", maxAlerts, len(report.Alerts)))
	}
	if report.Scenario == nil {
		guidance = append(guidance, "No forecast could be fitted. DO NOT extrapolate revenue yourself.")
	}

	return textResult(Response{
		Data:     summarize(report, files),
		Warnings: report.Warnings,
		Guidance: guidance,
	})
}

func (s *Server) handleForecast(ctx context.Context, _ *mcp.CallToolRequest, in ForecastInput) (*mcp.CallToolResult, any, error) {
	req := pipeline.Request{Horizon: in.Horizon, Scenario: in.Scenario, Model: in.Model}
	opts, err := req.Options(s.defaults)
	if err != nil {
		return nil, nil, err
	}
	table, err := sales.ReadFile(s.resolve(in.FactsPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read facts: %w", err)
	}
	facts, issues, err := sales.DecodeFacts(table)
	if err != nil {
		return nil, nil, err
	}

	report, err := pipeline.Forecast(ctx, facts, opts, issues)
	if err != nil {
		return nil, nil, err
	}
	return textResult(Response{
		Data: ForecastSummary{
			RunID:      report.RunID,
			Series:     report.Series,
			GrowthRate: report.GrowthRate,
			Forecasts:  report.Forecasts,
			Scenario:   report.Scenario,
			Backtest:   report.Backtest,
			Growth:     report.Growth,
		},
		Warnings: report.Warnings,
	})
}

func (s *Server) handleListModels(_ context.Context, _ *mcp.CallToolRequest, _ ListModelsInput) (*mcp.CallToolResult, any, error) {
	models := make([]string, 0, len(forecast.Kinds()))
	for _, k := range forecast.Kinds() {
		models = append(models, k.String())
	}
	return textResult(Response{Data: map[string]any{
		"models":    models,
		"scenarios": forecast.Scenarios(),
		"defaults":  s.defaults,
	}})
}

func summarize(r *pipeline.Report, files []string) AnalysisSummary {
	alerts := r.Alerts
	if len(alerts) > maxAlerts {
		alerts = alerts[:maxAlerts]
	}
	return AnalysisSummary{
		RunID:           r.RunID,
		Options:         r.Options,
		KPI:             r.KPI,
		Segments:        r.Segments,
		Alerts:          alerts,
		AlertCount:      len(r.Alerts),
		ABC:             abc.Count(r.ABC),
		GrowthRate:      r.GrowthRate,
		Scenario:        r.Scenario,
		SmartPlan:       r.SmartPlan,
		Metrics:         r.Metrics,
		Recommendations: r.Recommendations,
		Issues:          r.Issues,
		Files:           files,
	}
}

// resolve makes relative paths relative to the configured data directory.
func (s *Server) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.cfg.DataPath, path)
}

func textResult(res Response) (*mcp.CallToolResult, any, error) {
	out, err := json.Marshal(res)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("bytes", len(out)).Msg("Tool response")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
	}, nil, nil
}
