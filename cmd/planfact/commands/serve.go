package commands

import (
	"os/signal"
	"syscall"

	"planfact/internal/httpapi"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over an HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := httpapi.NewServer(defaults)
		errCh := make(chan error, 1)
		go func() { errCh <- server.Listen(addr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			log.Info().Msg("Shutting down HTTP API")
			return server.Shutdown()
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR)")
}
