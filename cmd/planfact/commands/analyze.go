package commands

import (
	"fmt"

	"planfact/internal/export"
	"planfact/internal/pipeline"
	"planfact/internal/sales"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	facts  string
	plans  string
	out    string
	format string
	open   bool
	req    pipeline.Request
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the plan vs fact analysis on two files and export the report",
	Example: `  planfact analyze --facts fact.csv --plan plan.xlsx --format xlsx --open
  planfact analyze --facts fact.csv --plan plan.csv --months 2025-02,2025-03 --scenario pessimistic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := analyzeFlags
		opts, err := f.req.Options(defaults)
		if err != nil {
			return err
		}
		format := cfg.ExportFormat
		if cmd.Flags().Changed("format") {
			format = f.format
		}
		exportFormat, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		outDir := cfg.OutputDir
		if f.out != "" {
			outDir = f.out
		}

		facts, err := sales.ReadFile(f.facts)
		if err != nil {
			return fmt.Errorf("failed to read facts: %w", err)
		}
		plans, err := sales.ReadFile(f.plans)
		if err != nil {
			return fmt.Errorf("failed to read plans: %w", err)
		}

		report, err := pipeline.Run(cmd.Context(), facts, plans, opts)
		if err != nil {
			return err
		}
		for _, w := range report.Warnings {
			log.Warn().Str("run_id", report.RunID).Msg(w)
		}

		paths, err := export.Write(outDir, exportFormat, export.Tables(report))
		if err != nil {
			return err
		}

		k := report.KPI
		fmt.Fprintf(cmd.OutOrStdout(), "Plan %.2f, fact %.2f (%+.2f%%), %d alerts, %d recommendations\n",
			k.RevenuePlan, k.RevenueFact, k.RevenueDiffPct, len(report.Alerts), len(report.Recommendations))
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}

		if f.open && len(paths) > 0 {
			if err := browser.OpenFile(paths[0]); err != nil {
				log.Warn().Err(err).Str("path", paths[0]).Msg("Failed to open report")
			}
		}
		return nil
	},
}

func init() {
	fl := analyzeCmd.Flags()
	fl.StringVar(&analyzeFlags.facts, "facts", "", "sales fact file (CSV or XLSX)")
	fl.StringVar(&analyzeFlags.plans, "plan", "", "sales plan file (CSV or XLSX)")
	fl.StringVarP(&analyzeFlags.out, "out", "o", "", "output directory (default OUTPUT_DIR)")
	fl.StringVar(&analyzeFlags.format, "format", "csv", "export format: csv or xlsx")
	fl.BoolVar(&analyzeFlags.open, "open", false, "open the exported report when done")

	fl.IntVar(&analyzeFlags.req.Horizon, "horizon", 0, "months to forecast (1-24)")
	fl.StringVar(&analyzeFlags.req.Scenario, "scenario", "", "optimistic, realistic or pessimistic")
	fl.StringVar(&analyzeFlags.req.Model, "model", "", "linear, polynomial, exp_smoothing, wma or ensemble")
	fl.Float64Var(&analyzeFlags.req.AdjustmentFactor, "adjust", 0, "smart plan adjustment factor")
	fl.StringVar(&analyzeFlags.req.Grain, "grain", "", "timeline grain: day, week or month")
	fl.StringSliceVar(&analyzeFlags.req.Months, "months", nil, "restrict summaries to these YYYY-MM months")
	fl.StringSliceVar(&analyzeFlags.req.Segments, "segments", nil, "restrict summaries to these segments")

	_ = analyzeCmd.MarkFlagRequired("facts")
	_ = analyzeCmd.MarkFlagRequired("plan")
}
