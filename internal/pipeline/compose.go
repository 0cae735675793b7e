package pipeline

import (
	"github.com/sells-group/marketmap-geocode/internal/dedupe"
	"github.com/sells-group/marketmap-geocode/internal/model"
	"github.com/sells-group/marketmap-geocode/pkg/geocode"
)

// Compose attaches coordinates to every row, in input order and including
// duplicates. Rows without coordinates get empty fields and a FailureRecord.
func Compose(rows []model.AddressRow, index dedupe.Index, results geocode.Results) ([]model.OutputRow, []model.FailureRecord) {
	out := make([]model.OutputRow, 0, len(rows))
	failures := make([]model.FailureRecord, 0)

	for _, row := range rows {
		coords := results[index[dedupe.BuildKey(row)]]
		if coords == nil {
			out = append(out, model.OutputRow{AddressRow: row})
			failures = append(failures, model.FailureRecord{
				LocationCode: row.LocationCode,
				City:         row.City,
				State:        row.State,
				Zip:          row.Zip,
			})
			continue
		}

		out = append(out, model.OutputRow{
			AddressRow: row,
			Latitude:   model.NewDegrees(coords.Latitude),
			Longitude:  model.NewDegrees(coords.Longitude),
			Location:   model.FormatLocation(coords.Latitude, coords.Longitude),
		})
	}

	return out, failures
}
