package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/marketmap-geocode/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "marketmap-geocode",
	Short: "Geocode a location list",
	Long: `Deduplicates the addresses of a location list, geocodes each distinct address
with the Census batch geocoder (Nominatim search as fallback) and writes the list
back out with Latitude, Longitude and Location columns, plus a report of rows that
could not be resolved.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGeocode(cmd.Context(), cfg, geocodeFlags, cmd.OutOrStdout())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, eris.ToString(err, true))
		os.Exit(1)
	}
}
