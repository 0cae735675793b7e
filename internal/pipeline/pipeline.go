package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/marketmap-geocode/internal/dedupe"
	"github.com/sells-group/marketmap-geocode/internal/model"
	"github.com/sells-group/marketmap-geocode/pkg/geocode"
)

// Geocoder is the pair of services the pipeline resolves against.
type Geocoder interface {
	geocode.BatchGeocoder
	geocode.Searcher
}

// Result is the outcome of a pipeline run.
type Result struct {
	Rows     []model.OutputRow
	Failures []model.FailureRecord
	Unique   int
}

// Pipeline deduplicates location rows, geocodes each distinct address
// (batch first, fallback search for the rest) and maps the coordinates back
// onto every original row.
type Pipeline struct {
	geocoder Geocoder
}

// New creates a Pipeline backed by gc.
func New(gc Geocoder) *Pipeline {
	return &Pipeline{geocoder: gc}
}

// Run executes dedupe, batch, fallback and compose in order. Any service
// error aborts the run.
func (p *Pipeline) Run(ctx context.Context, rows []model.AddressRow) (*Result, error) {
	log := zap.L()
	log.Info("pipeline: starting", zap.Int("rows", len(rows)))

	index, records := dedupe.Deduplicate(rows)
	addrs := dedupe.Inputs(records)
	log.Info("pipeline: deduplicated", zap.Int("rows", len(rows)), zap.Int("unique", len(records)))

	var results geocode.Results
	err := trackPhase("batch", func() error {
		var phaseErr error
		results, phaseErr = geocode.ResolveBatch(ctx, p.geocoder, addrs)
		return phaseErr
	})
	if err != nil {
		return nil, err
	}

	err = trackPhase("fallback", func() error {
		var phaseErr error
		results, phaseErr = geocode.ResolveFallback(ctx, p.geocoder, addrs, results)
		return phaseErr
	})
	if err != nil {
		return nil, err
	}

	out, failures := Compose(rows, index, results)
	log.Info("pipeline: complete",
		zap.Int("rows", len(out)),
		zap.Int("unique", len(records)),
		zap.Int("failures", len(failures)),
	)

	return &Result{Rows: out, Failures: failures, Unique: len(records)}, nil
}

// trackPhase runs fn and logs its duration and outcome.
func trackPhase(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start).Milliseconds()

	if err != nil {
		zap.L().Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
		return err
	}
	zap.L().Info("pipeline: phase complete",
		zap.String("phase", name),
		zap.Int64("duration_ms", duration),
	)
	return nil
}
