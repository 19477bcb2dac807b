package jobboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Applications persists job applications
type Applications interface {
	Create(ctx context.Context, app *Application) (*Application, error)
	ListByApplicant(ctx context.Context, applicant Identity) ([]*Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*Application, error)
	UpdateStatus(ctx context.Context, id string, status string) (*UpdateResult, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
}

type applications struct {
	db  bun.IDB
	now func() time.Time
}

var _ Applications = (*applications)(nil)

// NewApplicationsRepository returns a bun backed Applications repository
func NewApplicationsRepository(db bun.IDB) Applications {
	return &applications{db: db, now: time.Now}
}

// Create stores an application. The referenced job is not checked.
func (r *applications) Create(ctx context.Context, app *Application) (*Application, error) {
	if app == nil {
		return nil, fail(ErrMalformedInput)
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeFailure(err, "applications.create")
	}

	app.ID = id
	app.CreatedAt = r.now().UTC()
	if app.Status == "" {
		app.Status = StatusPending
	}

	if _, err := r.db.NewInsert().Model(app).Exec(ctx); err != nil {
		return nil, storeFailure(err, "applications.create")
	}
	return app, nil
}

func (r *applications) ListByApplicant(ctx context.Context, applicant Identity) ([]*Application, error) {
	return r.list(ctx, "applicant_email", applicant, "applications.list_by_applicant")
}

func (r *applications) ListByJob(ctx context.Context, jobID string) ([]*Application, error) {
	return r.list(ctx, "job_id", jobID, "applications.list_by_job")
}

func (r *applications) list(ctx context.Context, column, value, op string) ([]*Application, error) {
	records := []*Application{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeFailure(err, op)
	}
	return records, nil
}

// UpdateStatus sets the status of one application. An unknown id is not an
// error, the result reports zero matches. Writing the status a record
// already has matches it without modifying it.
func (r *applications) UpdateStatus(ctx context.Context, id string, status string) (*UpdateResult, error) {
	uid, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.NewUpdate().
		Model((*Application)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", uid).
		Where("status <> ?", status).
		Exec(ctx)
	if err != nil {
		return nil, storeFailure(err, "applications.update_status")
	}

	modified, err := res.RowsAffected()
	if err != nil {
		return nil, storeFailure(err, "applications.update_status")
	}

	matched := modified
	if modified == 0 {
		exists, err := r.db.NewSelect().
			Model((*Application)(nil)).
			Where("id = ?", uid).
			Exists(ctx)
		if err != nil {
			return nil, storeFailure(err, "applications.update_status")
		}
		if exists {
			matched = 1
		}
	}

	return &UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}, nil
}

// Delete removes at most one application
func (r *applications) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	uid, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.NewDelete().
		Model((*Application)(nil)).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return nil, storeFailure(err, "applications.delete")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, storeFailure(err, "applications.delete")
	}

	return &DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func parseRecordID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fail(ErrMalformedInput, map[string]any{"id": id})
	}
	return uid, nil
}
