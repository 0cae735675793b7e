package geocode

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// sleepRecorder stands in for time.Sleep and records requested delays.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// newTestClient creates a Client pointed at test servers that records sleeps
// instead of blocking.
func newTestClient(batchURL, searchURL string) (*Client, *sleepRecorder) {
	rec := &sleepRecorder{}
	cfg := DefaultConfig()
	cfg.BatchURL = batchURL
	cfg.SearchURL = searchURL
	cfg.Sleep = rec.Sleep
	return NewClient(cfg), rec
}

// newRewriteClient creates an HTTP client that rewrites requests to test server URLs.
// Requests matching a target prefix are redirected to the paired test server.
func newRewriteClient(rewrites map[string]string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{
			base:     http.DefaultTransport,
			rewrites: rewrites,
		},
	}
}

type rewriteTransport struct {
	base     http.RoundTripper
	rewrites map[string]string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	origURL := req.URL.String()
	for prefix, testURL := range t.rewrites {
		if !strings.HasPrefix(origURL, prefix) {
			continue
		}
		newReq := req.Clone(req.Context())
		parsed, err := req.URL.Parse(testURL + origURL[len(prefix):])
		if err != nil {
			return nil, err
		}
		newReq.URL = parsed
		newReq.Host = parsed.Host
		return t.base.RoundTrip(newReq)
	}
	return t.base.RoundTrip(req)
}
