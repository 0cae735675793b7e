package geocode

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// BatchGeocoder resolves many addresses in one call.
type BatchGeocoder interface {
	BatchGeocode(ctx context.Context, addrs []AddressInput) (Results, error)
}

// Searcher resolves one free-text query. A nil result means no match.
type Searcher interface {
	Search(ctx context.Context, query string) (*Coordinates, error)
}

// ResolveBatch runs the batch phase. The returned Results has an entry for
// every address; IDs the service did not echo back are left nil.
func ResolveBatch(ctx context.Context, g BatchGeocoder, addrs []AddressInput) (Results, error) {
	results := make(Results, len(addrs))
	if len(addrs) == 0 {
		return results, nil
	}

	batch, err := g.BatchGeocode(ctx, addrs)
	if err != nil {
		return nil, err
	}

	matched := 0
	for _, a := range addrs {
		results[a.ID] = batch[a.ID]
		if results[a.ID] != nil {
			matched++
		}
	}

	zap.L().Info("geocode: batch phase complete",
		zap.Int("submitted", len(addrs)),
		zap.Int("matched", matched),
		zap.Int("unmatched", len(addrs)-matched),
	)
	return results, nil
}

// ResolveFallback searches for every address still unresolved in prior,
// trying CandidateQueries in order and keeping the first match. Addresses
// already resolved are never queried. prior is not modified.
func ResolveFallback(ctx context.Context, s Searcher, addrs []AddressInput, prior Results) (Results, error) {
	results := prior.Clone()

	var missing []AddressInput
	for _, a := range addrs {
		if !results.Resolved(a.ID) {
			missing = append(missing, a)
		}
	}

	resolved := 0
	for i, a := range missing {
		log := zap.L().With(
			zap.String("id", a.ID),
			zap.Int("index", i+1),
			zap.Int("total", len(missing)),
		)

		var coords *Coordinates
		for _, q := range CandidateQueries(a) {
			c, err := s.Search(ctx, q)
			if err != nil {
				return nil, err
			}
			log.Debug("geocode: fallback query", zap.String("query", q), zap.Bool("matched", c != nil))
			if c != nil {
				coords = c
				break
			}
		}

		results[a.ID] = coords
		if coords != nil {
			resolved++
		}
	}

	zap.L().Info("geocode: fallback phase complete",
		zap.Int("attempted", len(missing)),
		zap.Int("resolved", resolved),
		zap.Int("unresolved", len(missing)-resolved),
	)
	return results, nil
}

// CandidateQueries returns the fallback queries for addr, most specific first:
// the full one-line address (when a street is present), then city/state/zip
// (when a zip is present), then city/state.
func CandidateQueries(addr AddressInput) []string {
	var queries []string
	if addr.Street != "" {
		queries = append(queries, formatOneLine(addr))
	}
	if addr.ZipCode != "" {
		queries = append(queries, fmt.Sprintf("%s, %s %s", addr.City, addr.State, addr.ZipCode))
	}
	return append(queries, fmt.Sprintf("%s, %s", addr.City, addr.State))
}

// formatOneLine joins the non-empty address parts with ", ".
func formatOneLine(addr AddressInput) string {
	parts := []string{addr.Street, addr.City, addr.State, addr.ZipCode}
	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
