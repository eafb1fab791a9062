package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrisure/portal/internal/pkg/config"
	"github.com/agrisure/portal/pkg/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Agricultural insurance portal server",
	Long: `Runs the agricultural insurance portal: session handling, role
dashboards backed by the insurance API, and Rwanda location lookups.

Configuration is read from the environment (see internal/pkg/config).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and initialises the shared logger.
// Commands read the logger back through logger.Get or logger.Component.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Output:  cmd.ErrOrStderr(),
		Service: "agrisure-portal",
	})
	return cfg, nil
}
