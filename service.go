package jobboard

import (
	"context"
	"time"
)

// Board is the application layer over the repositories
type Board struct {
	jobs         Jobs
	applications Applications
	enricher     *ApplicationEnricher
	publisher    StatusPublisher
	metrics      Metrics
	logger       Logger
	concurrency  int
	now          func() time.Time
}

// BoardOption configures a Board
type BoardOption func(*Board)

// WithStatusPublisher announces status changes through p
func WithStatusPublisher(p StatusPublisher) BoardOption {
	return func(b *Board) {
		if p != nil {
			b.publisher = p
		}
	}
}

// WithBoardMetrics sets the metrics sink
func WithBoardMetrics(m Metrics) BoardOption {
	return func(b *Board) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithBoardLogger sets the logger
func WithBoardLogger(logger Logger) BoardOption {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithEnricher replaces the default enricher
func WithEnricher(e *ApplicationEnricher) BoardOption {
	return func(b *Board) {
		if e != nil {
			b.enricher = e
		}
	}
}

// WithBoardConfig applies the board settings carried by cfg
func WithBoardConfig(cfg Config) BoardOption {
	return func(b *Board) {
		if cfg != nil {
			b.concurrency = cfg.GetEnrichConcurrency()
		}
	}
}

// NewBoard builds the board on top of the repository manager
func NewBoard(repos RepositoryManager, opts ...BoardOption) *Board {
	b := &Board{
		jobs:         repos.Jobs(),
		applications: repos.Applications(),
		publisher:    NopPublisher{},
		metrics:      NopMetrics{},
		logger:       defLogger{},
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.enricher == nil {
		b.enricher = NewApplicationEnricher(b.jobs,
			WithEnricherLogger(b.logger),
			WithEnricherMetrics(b.metrics),
			WithEnrichConcurrency(b.concurrency),
		)
	}

	return b
}

func (b *Board) ListJobs(ctx context.Context, poster Identity) ([]*Job, error) {
	return b.jobs.ListByPoster(ctx, poster)
}

// GetJob returns the job, or nil without error when it does not exist
func (b *Board) GetJob(ctx context.Context, id string) (*Job, error) {
	job, err := b.jobs.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (b *Board) CreateJob(ctx context.Context, job *Job) (*InsertResult, error) {
	created, err := b.jobs.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	b.metrics.Increment("jobs.created")
	return &InsertResult{Acknowledged: true, InsertedID: created.ID.String()}, nil
}

func (b *Board) Apply(ctx context.Context, app *Application) (*InsertResult, error) {
	created, err := b.applications.Create(ctx, app)
	if err != nil {
		return nil, err
	}
	b.metrics.Increment("applications.created")
	return &InsertResult{Acknowledged: true, InsertedID: created.ID.String()}, nil
}

// ListApplicationsByApplicant returns the applicant's history with job
// summaries attached. Callers must have authorized the applicant first.
func (b *Board) ListApplicationsByApplicant(ctx context.Context, applicant Identity) ([]*EnrichedApplication, error) {
	start := b.now()
	defer func() { b.metrics.Time("applications.list_by_applicant", b.now().Sub(start)) }()

	apps, err := b.applications.ListByApplicant(ctx, applicant)
	if err != nil {
		return nil, err
	}
	return b.enricher.Enrich(ctx, apps)
}

func (b *Board) ListApplicationsByJob(ctx context.Context, jobID string) ([]*Application, error) {
	return b.applications.ListByJob(ctx, jobID)
}

// UpdateApplicationStatus stores status verbatim and announces the change
// when a record was modified. A failed announcement is logged, not returned.
func (b *Board) UpdateApplicationStatus(ctx context.Context, id, status string) (*UpdateResult, error) {
	res, err := b.applications.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if res.ModifiedCount > 0 {
		b.metrics.Increment("applications.status_changed")
		event := StatusChangedEvent{
			ApplicationID: id,
			Status:        status,
			ChangedAt:     b.now().UTC(),
		}
		if err := b.publisher.PublishStatusChanged(ctx, event); err != nil {
			b.logger.Error("failed to publish status change",
				"application_id", id,
				"error", err,
			)
		}
	}

	return res, nil
}

func (b *Board) DeleteApplication(ctx context.Context, id string) (*DeleteResult, error) {
	res, err := b.applications.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.DeletedCount > 0 {
		b.metrics.Increment("applications.deleted")
	}
	return res, nil
}
