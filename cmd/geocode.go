package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/marketmap-geocode/internal/config"
	"github.com/sells-group/marketmap-geocode/internal/locfile"
	"github.com/sells-group/marketmap-geocode/internal/pipeline"
	"github.com/sells-group/marketmap-geocode/pkg/geocode"
)

// geocodeOptions holds the file paths of a run.
type geocodeOptions struct {
	Input      string
	OutputCSV  string
	OutputJSON string
	Failures   string
	GeoJSON    string
}

var geocodeFlags geocodeOptions

func init() {
	f := rootCmd.Flags()
	f.StringVar(&geocodeFlags.Input, "input", "Location List Oct 2025.csv", "Input location list (.csv or .xlsx)")
	f.StringVar(&geocodeFlags.OutputCSV, "output-csv", "Location List Oct 2025 with locations.csv", "Output CSV path")
	f.StringVar(&geocodeFlags.OutputJSON, "output-json", "data_with_locations.json", "Output JSON path")
	f.StringVar(&geocodeFlags.Failures, "failures", "geocoding_failures.json", "Where to record unresolved rows")
	f.StringVar(&geocodeFlags.GeoJSON, "geojson", "", "Optional GeoJSON output path for resolved rows")
}

// runGeocode reads the input, resolves every row and writes all outputs.
func runGeocode(ctx context.Context, c *config.Config, opts geocodeOptions, out io.Writer) error {
	restore := zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.NewString())))
	defer restore()

	rows, err := locfile.ReadRows(opts.Input)
	if err != nil {
		return eris.Wrap(err, "geocode: read input")
	}
	zap.L().Info("geocode: loaded input", zap.String("path", opts.Input), zap.Int("rows", len(rows)))

	client := geocode.NewClient(c.Geocode(), geocode.WithHTTPClient(c.HTTPClient()))
	res, err := pipeline.New(client).Run(ctx, rows)
	if err != nil {
		return eris.Wrap(err, "geocode: resolve")
	}

	if err := locfile.WriteCSV(opts.OutputCSV, res.Rows); err != nil {
		return err
	}
	if err := locfile.WriteJSON(opts.OutputJSON, res.Rows); err != nil {
		return err
	}
	if err := locfile.WriteJSON(opts.Failures, res.Failures); err != nil {
		return err
	}
	if opts.GeoJSON != "" {
		if err := locfile.WriteGeoJSON(opts.GeoJSON, res.Rows); err != nil {
			return err
		}
	}

	zap.L().Info("geocode: outputs written",
		zap.String("csv", opts.OutputCSV),
		zap.String("json", opts.OutputJSON),
		zap.String("failures", opts.Failures),
	)

	fmt.Fprintf(out, "Processed %d rows; failures: %d\n", len(res.Rows), len(res.Failures))
	return nil
}
