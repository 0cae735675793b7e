package geocode

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// censusBatchRow is one line of the addressFile upload.
type censusBatchRow struct {
	ID      string `csv:"id"`
	Address string `csv:"address"`
	City    string `csv:"city"`
	State   string `csv:"state"`
	Zip     string `csv:"zip"`
}

// BatchGeocode submits every address to the Census batch API in a single
// multipart request. Only IDs present in addrs appear in the result; rows the
// service marks as anything other than "Match" map to nil.
func (c *Client) BatchGeocode(ctx context.Context, addrs []AddressInput) (Results, error) {
	payload, err := encodeCensusBatch(addrs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("benchmark", c.cfg.Benchmark); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch write benchmark")
	}
	if err := writer.WriteField("returntype", c.cfg.ReturnType); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch write returntype")
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="addressFile"; filename="addresses.csv"`)
	header.Set("Content-Type", "text/csv")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch create form file")
	}
	if _, err := part.Write(payload); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch write csv")
	}
	if err := writer.Close(); err != nil {
		return nil, eris.Wrap(err, "geocode: census batch close writer")
	}

	req, err := newRequest(ctx, http.MethodPost, c.cfg.BatchURL, &buf, "census batch")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req, c.cfg.BatchDelay, "census batch")
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		known[a.ID] = true
	}
	return parseCensusBatchResponse(body, known)
}

// encodeCensusBatch renders addrs as the id,address,city,state,zip upload.
func encodeCensusBatch(addrs []AddressInput) ([]byte, error) {
	rows := make([]censusBatchRow, len(addrs))
	for i, a := range addrs {
		rows[i] = censusBatchRow{ID: a.ID, Address: a.Street, City: a.City, State: a.State, Zip: a.ZipCode}
	}
	payload, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: census batch encode csv")
	}
	return payload, nil
}

// parseCensusBatchResponse parses the Census batch CSV response.
// Format: "id","input address","Match|No_Match|Tie","Exact|Non_Exact","matched address","lon,lat","tigerlineid","side"
func parseCensusBatchResponse(body []byte, known map[string]bool) (Results, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	results := make(Results)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "geocode: census batch parse response")
		}

		id := strings.TrimSpace(fields[0])
		if id == "id" || !known[id] {
			continue
		}
		if len(fields) < 3 {
			zap.L().Debug("census batch: short response row", zap.String("id", id), zap.Int("fields", len(fields)))
			results[id] = nil
			continue
		}

		var coords string
		if len(fields) > 5 {
			coords = fields[5]
		}
		if fields[2] != "Match" || coords == "" {
			results[id] = nil
			continue
		}

		lon, lat, ok := parseCensusCoords(coords)
		if !ok {
			zap.L().Debug("census batch: malformed coordinates", zap.String("id", id), zap.String("coords", coords))
			results[id] = nil
			continue
		}
		results[id] = &Coordinates{Latitude: lat, Longitude: lon}
	}

	return results, nil
}

// parseCensusCoords parses "lon,lat" from the Census batch response.
func parseCensusCoords(coords string) (lon, lat float64, ok bool) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, ok = parseDegrees(parts[0])
	if !ok {
		return 0, 0, false
	}
	lat, ok = parseDegrees(parts[1])
	if !ok {
		return 0, 0, false
	}
	return lon, lat, true
}

// parseDegrees parses a finite float, tolerating surrounding whitespace.
func parseDegrees(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
