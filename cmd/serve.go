package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrisure/portal/internal/app"
	"github.com/agrisure/portal/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the portal HTTP server",
	Long: `Starts the portal HTTP server and blocks until SIGINT or SIGTERM. Usage:

	portal serve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, logger.Get())
		if err != nil {
			l := logger.Component("serve")
			l.Error().Err(err).Msg("failed to start portal")
			return err
		}
		defer a.Close()

		return a.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
