package jobboard

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Jobs persists job postings
type Jobs interface {
	JobFinder
	Create(ctx context.Context, job *Job) (*Job, error)
	ListByPoster(ctx context.Context, poster Identity) ([]*Job, error)
}

type jobs struct {
	db   bun.IDB
	repo repository.Repository[*Job]
	now  func() time.Time
}

var _ Jobs = (*jobs)(nil)

// NewJobsRepository returns a bun backed Jobs repository
func NewJobsRepository(db *bun.DB) Jobs {
	return &jobs{
		db: db,
		repo: repository.NewRepository[*Job](db, repository.ModelHandlers[*Job]{
			NewRecord: func() *Job { return &Job{} },
			GetID: func(j *Job) uuid.UUID {
				if j == nil {
					return uuid.Nil
				}
				return j.ID
			},
			SetID: func(j *Job, id uuid.UUID) {
				if j != nil {
					j.ID = id
				}
			},
			GetIdentifier: func() string {
				return "hr_email"
			},
		}),
		now: time.Now,
	}
}

// Create validates and stores a job. The id is assigned here and is time
// ordered so listings come back in insertion order.
func (r *jobs) Create(ctx context.Context, job *Job) (*Job, error) {
	if job == nil {
		return nil, fail(ErrMalformedInput)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeFailure(err, "jobs.create")
	}
	job.ID = id
	job.CreatedAt = r.now().UTC()

	created, err := r.repo.Create(ctx, job)
	if err != nil {
		return nil, storeFailure(err, "jobs.create")
	}
	return created, nil
}

// GetByID returns the job or ErrNotFound. Ids that are not valid UUIDs can
// never match a record and are reported as not found.
func (r *jobs) GetByID(ctx context.Context, id string) (*Job, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fail(ErrNotFound, map[string]any{"id": id})
	}

	job, err := r.repo.GetByID(ctx, uid.String())
	if err != nil {
		if IsNotFound(err) {
			return nil, fail(ErrNotFound, map[string]any{"id": id})
		}
		return nil, storeFailure(err, "jobs.get_by_id")
	}
	return job, nil
}

// ListByPoster returns the poster's jobs, or every job when poster is empty
func (r *jobs) ListByPoster(ctx context.Context, poster Identity) ([]*Job, error) {
	records := []*Job{}

	q := r.db.NewSelect().Model(&records)
	if poster != "" {
		q = q.Where("?TableAlias.hr_email = ?", poster)
	}

	if err := q.OrderExpr("?TableAlias.id ASC").Scan(ctx); err != nil {
		return nil, storeFailure(err, "jobs.list_by_poster")
	}
	return records, nil
}
