// Package geocode resolves addresses via the Census batch geocoder (primary)
// and Nominatim search (fallback).
package geocode

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	censusBatchURL  = "https://geocoding.geo.census.gov/geocoder/locations/addressbatch"
	censusBenchmark = "Public_AR_Current"
	nominatimURL    = "https://nominatim.openstreetmap.org/search"
	defaultAgent    = "marketmap-fix/1.0 (example@example.com)"
)

// AddressInput represents an address to geocode.
type AddressInput struct {
	ID      string // Identifier for batch correlation
	Street  string
	City    string
	State   string
	ZipCode string
}

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Results maps an AddressInput ID to its coordinates. A nil entry, or a
// missing one, means the address is unresolved.
type Results map[string]*Coordinates

// Resolved reports whether id has coordinates.
func (r Results) Resolved(id string) bool {
	return r[id] != nil
}

// Clone returns a shallow copy of r.
func (r Results) Clone() Results {
	out := make(Results, len(r))
	for id, c := range r {
		out[id] = c
	}
	return out
}

// Config holds the fixed service settings shared by both resolvers.
type Config struct {
	BatchURL    string
	Benchmark   string
	ReturnType  string
	BatchDelay  time.Duration
	SearchURL   string
	SearchDelay time.Duration
	UserAgent   string

	// Sleep blocks before each request. Nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultConfig returns the public Census and Nominatim endpoints with their
// rate-limit delays.
func DefaultConfig() Config {
	return Config{
		BatchURL:    censusBatchURL,
		Benchmark:   censusBenchmark,
		ReturnType:  "locations",
		BatchDelay:  200 * time.Millisecond,
		SearchURL:   nominatimURL,
		SearchDelay: 1200 * time.Millisecond,
		UserAgent:   defaultAgent,
	}
}

func (c Config) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for both Census and Nominatim requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client talks to the Census batch geocoder and Nominatim search.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a Client for the given service configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sleeps for delay, sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, delay time.Duration, label string) ([]byte, error) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.cfg.wait(delay)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: %s request", label)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("geocode: %s returned status %d", label, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: %s read body", label)
	}
	return body, nil
}

// newRequest is http.NewRequestWithContext with a wrapped error.
func newRequest(ctx context.Context, method, url string, body io.Reader, label string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: %s build request", label)
	}
	return req, nil
}
