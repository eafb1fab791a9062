package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrisure/portal/internal/infrastructure/geo"
	"github.com/agrisure/portal/pkg/logger"
)

var includeDistricts bool

// locationsCmd groups lookups against the Rwanda geography API.
var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Query the Rwanda location service",
}

var provincesCmd = &cobra.Command{
	Use:   "provinces",
	Short: "List provinces, falling back to the built-in list when the service is down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := geoClient(cmd)
		if err != nil {
			return err
		}
		for _, p := range client.Provinces(cmd.Context()) {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search provinces, and optionally districts, by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := geoClient(cmd)
		if err != nil {
			return err
		}
		matches, err := client.Search(cmd.Context(), strings.Join(args, " "), includeDistricts)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if m.Province != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Level, m.Name, m.Province)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.Level, m.Name)
		}
		return nil
	},
}

func geoClient(cmd *cobra.Command) (*geo.Client, error) {
	cfg, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return geo.New(geo.Options{
		BaseURL:   cfg.Geo.BaseURL,
		Host:      cfg.Geo.Host,
		Key:       cfg.Geo.Key,
		FanoutRPS: cfg.Geo.FanoutRPS,
		Logger:    logger.Get(),
	}), nil
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(provincesCmd, searchCmd)

	searchCmd.Flags().BoolVar(&includeDistricts, "districts", false, "also match district names")
}
