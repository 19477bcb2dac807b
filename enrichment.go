package jobboard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultEnrichConcurrency bounds the job lookups in flight per listing
const DefaultEnrichConcurrency = 8

// ApplicationEnricher joins applications with a summary of their job
type ApplicationEnricher struct {
	jobs    JobFinder
	limit   int
	logger  Logger
	metrics Metrics
}

// EnricherOption configures an ApplicationEnricher
type EnricherOption func(*ApplicationEnricher)

// WithEnrichConcurrency bounds concurrent lookups, values below 1 are ignored
func WithEnrichConcurrency(n int) EnricherOption {
	return func(e *ApplicationEnricher) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithEnricherLogger sets the logger
func WithEnricherLogger(logger Logger) EnricherOption {
	return func(e *ApplicationEnricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEnricherMetrics sets the metrics sink
func WithEnricherMetrics(m Metrics) EnricherOption {
	return func(e *ApplicationEnricher) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewApplicationEnricher creates an enricher that looks jobs up in finder
func NewApplicationEnricher(finder JobFinder, opts ...EnricherOption) *ApplicationEnricher {
	e := &ApplicationEnricher{
		jobs:    finder,
		limit:   DefaultEnrichConcurrency,
		logger:  defLogger{},
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one EnrichedApplication per input, in input order. A job
// that no longer exists leaves its application without a summary. Any other
// lookup failure fails the whole call.
func (e *ApplicationEnricher) Enrich(ctx context.Context, apps []*Application) ([]*EnrichedApplication, error) {
	out := make([]*EnrichedApplication, len(apps))
	for i, app := range apps {
		out[i] = &EnrichedApplication{Application: app}
	}

	if len(apps) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, app := range apps {
		if app == nil {
			continue
		}
		g.Go(func() error {
			job, err := e.jobs.GetByID(gctx, app.JobID)
			if err != nil {
				if IsNotFound(err) {
					e.metrics.Increment("enrichment.miss")
					e.logger.Debug("job not found for application",
						"application_id", app.ID,
						"job_id", app.JobID,
					)
					return nil
				}
				return err
			}
			e.metrics.Increment("enrichment.hit")
			// each goroutine owns exactly one slot
			out[i].Job = job.Summary()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
