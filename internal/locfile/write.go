package locfile

import (
	"encoding/csv"
	"encoding/json"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/marketmap-geocode/internal/model"
)

// WriteCSV writes rows with the input columns followed by Latitude,
// Longitude and Location. The header is written even when rows is empty.
func WriteCSV(path string, rows []model.OutputRow) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "locfile: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	if err := enc.EncodeHeader(model.OutputRow{}); err != nil {
		return eris.Wrap(err, "locfile: write csv header")
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrap(err, "locfile: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "locfile: flush csv")
	}
	return eris.Wrap(f.Close(), "locfile: close csv")
}

// WriteJSON writes v as two-space indented JSON.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "locfile: create json")
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "locfile: encode json")
	}
	return eris.Wrap(f.Close(), "locfile: close json")
}

// WriteGeoJSON writes a FeatureCollection with one Point per resolved row.
// Unresolved rows are skipped.
func WriteGeoJSON(path string, rows []model.OutputRow) error {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(rows))}
	for _, r := range rows {
		if !r.Resolved() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.LocationCode,
			Geometry: geom.NewPointFlat(geom.XY, []float64{r.Longitude.Value, r.Latitude.Value}),
			Properties: map[string]any{
				model.ColLocationCode: r.LocationCode,
				"Location Name":       r.LocationName,
				model.ColCity:         r.City,
				model.ColState:        r.State,
				model.ColZip:          r.Zip,
			},
		})
	}
	return WriteJSON(path, fc)
}
