package jobboard

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Migrate(ctx context.Context) error
	Jobs() Jobs
	Applications() Applications
}

type mngr struct {
	db           *bun.DB
	jobs         Jobs
	applications Applications
}

// NewRepositoryManager wires the repositories around a single db handle
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:           db,
		jobs:         NewJobsRepository(db),
		applications: NewApplicationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("database handle should be initialized")
	}

	if m.jobs == nil {
		return errors.New("repository jobs should be initialized")
	}

	if m.applications == nil {
		return errors.New("repository applications should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate creates the tables and lookup indexes when missing
func (m mngr) Migrate(ctx context.Context) error {
	return m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []any{(*Job)(nil), (*Application)(nil)} {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return storeFailure(err, "migrate.create_table")
			}
		}

		indexes := []struct {
			model  any
			name   string
			column string
		}{
			{(*Job)(nil), "idx_jobs_hr_email", "hr_email"},
			{(*Application)(nil), "idx_job_applications_applicant_email", "applicant_email"},
			{(*Application)(nil), "idx_job_applications_job_id", "job_id"},
		}

		for _, idx := range indexes {
			_, err := tx.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.column).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return storeFailure(err, "migrate.create_index")
			}
		}
		return nil
	})
}

func (m mngr) Jobs() Jobs {
	return m.jobs
}

func (m mngr) Applications() Applications {
	return m.applications
}
