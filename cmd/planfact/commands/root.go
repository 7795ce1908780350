package commands

import (
	"context"
	"os/signal"
	"syscall"

	"planfact/internal/config"
	"planfact/internal/logging"
	"planfact/internal/mcp"
	"planfact/internal/pipeline"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	cfg      *config.AppConfig
	defaults pipeline.Options
)

var rootCmd = &cobra.Command{
	Use:   "planfact",
	Short: "Plan vs fact sales analytics and forecasting",
	Long: `Reconciles retail sales facts against monthly plans, ranks outlets and segments,
forecasts revenue with several models and derives the next period's plan.

Without a subcommand it runs as an MCP server over stdio.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		defaults, err = pipeline.FromConfig(cfg.Analysis)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid analysis defaults")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("planfact starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := mcp.NewServer(cfg, defaults, Version)
		return server.Run(ctx)
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(analyzeCmd, serveCmd)
}
