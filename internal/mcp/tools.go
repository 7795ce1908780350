package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "analyze_plan_fact",
		Description: "Reconcile a sales fact file against a plan file (CSV or XLSX) and return KPIs, segment summaries, " +
			"variance alerts, ABC classes, a scenario forecast, a smart plan and recommendations.\n\n" +
			"Fact columns: Magazin, Datasales, Segment, Price, Qty, Sum. Plan columns: Magazin, Segment, Month, Revenue_Plan, Units_Plan.\n" +
			"Relative paths are resolved against the server's DATA_PATH. Set 'format' to also export the full report into 'output_dir'.\n" +
			"Guidance: Report the numbers returned by this tool as they are. DO NOT invent forecasts when 'warnings' says no forecast is available.",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "forecast_revenue",
		Description: "Fit every forecasting model (linear, polynomial, exp_smoothing, wma) plus their ensemble to the monthly revenue " +
			"of a fact file and project the chosen model under a scenario (optimistic x1.20, realistic x1.00, pessimistic x0.85).\n" +
			"'backtest' replays the history month by month and reports how far each model's one-month-ahead prediction was off.\n" +
			"Guidance: Prefer the model with the lowest backtest MAPE over the one with the lowest in-sample MAPE.",
	}, s.handleForecast)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_forecast_models",
		Description: "List the available forecasting models, scenarios and the server's default analysis options.",
	}, s.handleListModels)
}
