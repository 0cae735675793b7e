package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
)

// nominatimPlace is one element of the Nominatim search response. Lat and
// lon arrive as strings from the public service but numbers are accepted too.
type nominatimPlace struct {
	Lat json.RawMessage `json:"lat"`
	Lon json.RawMessage `json:"lon"`
}

// Search runs a single-result Nominatim free-text query. An empty result
// list or unparseable coordinates yield nil without error.
func (c *Client) Search(ctx context.Context, query string) (*Coordinates, error) {
	params := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {"1"},
	}

	req, err := newRequest(ctx, http.MethodGet, c.cfg.SearchURL+"?"+params.Encode(), nil, "nominatim")
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, c.cfg.SearchDelay, "nominatim")
	if err != nil {
		return nil, err
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "geocode: nominatim parse response")
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, ok := jsonDegrees(places[0].Lat)
	if !ok {
		return nil, nil
	}
	lon, ok := jsonDegrees(places[0].Lon)
	if !ok {
		return nil, nil
	}
	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}

// jsonDegrees accepts a JSON string or number holding a finite float.
func jsonDegrees(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return parseDegrees(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return parseDegrees(n.String())
}
