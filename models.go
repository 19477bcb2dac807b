package jobboard

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatusPending is the status every new application starts with
const StatusPending = "pending"

// Job is a posting created by a poster
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:job"`
	ID            uuid.UUID      `bun:"id,pk,type:uuid"`
	HREmail       string         `bun:"hr_email,notnull"`
	Title         string         `bun:"title"`
	Company       string         `bun:"company"`
	CompanyLogo   string         `bun:"company_logo"`
	Location      string         `bun:"location"`
	Category      string         `bun:"category"`
	Attributes    map[string]any `bun:"attributes"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Application is an applicant's submission against a job
type Application struct {
	bun.BaseModel  `bun:"table:job_applications,alias:app"`
	ID             uuid.UUID      `bun:"id,pk,type:uuid"`
	ApplicantEmail string         `bun:"applicant_email,notnull"`
	JobID          string         `bun:"job_id,notnull"`
	Status         string         `bun:"status,notnull"`
	Payload        map[string]any `bun:"payload"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero"`
}

// JobSummary is the slice of a job copied onto an application listing
type JobSummary struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	CompanyLogo string `json:"company_logo,omitempty"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category,omitempty"`
}

// EnrichedApplication is an application plus the summary of its job, when
// the job could be found.
type EnrichedApplication struct {
	*Application
	Job *JobSummary
}

// InsertResult is returned by create operations
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult is returned by update operations
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult is returned by delete operations
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

var jobFields = []string{"hr_email", "title", "company", "company_logo", "location", "category"}

// Summary returns the fields enrichment copies onto applications
func (j *Job) Summary() *JobSummary {
	if j == nil {
		return nil
	}
	return &JobSummary{
		Title:       j.Title,
		Company:     j.Company,
		CompanyLogo: j.CompanyLogo,
		Location:    j.Location,
		Category:    j.Category,
	}
}

// Validate checks the fields a posting needs
func (j *Job) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(j,
			validation.Field(&j.HREmail, validation.Required, is.EmailFormat),
		)
	}, "invalid job"); err != nil {
		return err
	}
	return nil
}

func (j *Job) fields() map[string]*string {
	return map[string]*string{
		"hr_email":     &j.HREmail,
		"title":        &j.Title,
		"company":      &j.Company,
		"company_logo": &j.CompanyLogo,
		"location":     &j.Location,
		"category":     &j.Category,
	}
}

// MarshalJSON writes the job as a flat document, extra attributes included
func (j Job) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(j.Attributes)+len(jobFields)+2)
	for k, v := range j.Attributes {
		doc[k] = v
	}
	for name, v := range j.fields() {
		if *v != "" {
			doc[name] = *v
		}
	}
	if j.ID != uuid.Nil {
		doc["_id"] = j.ID.String()
	}
	if !j.CreatedAt.IsZero() {
		doc["created_at"] = j.CreatedAt
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads a flat document. Unknown keys become attributes, store
// assigned keys are ignored.
func (j *Job) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	delete(doc, "_id")
	delete(doc, "created_at")

	if err := takeStrings(doc, j.fields()); err != nil {
		return err
	}

	if len(doc) > 0 {
		j.Attributes = doc
	}
	return nil
}

// Validate checks the fields an application needs
func (a *Application) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(a,
			validation.Field(&a.ApplicantEmail, validation.Required, is.EmailFormat),
			validation.Field(&a.JobID, validation.Required),
		)
	}, "invalid application"); err != nil {
		return err
	}
	return nil
}

func (a *Application) fields() map[string]*string {
	return map[string]*string{
		"applicant_email": &a.ApplicantEmail,
		"job_id":          &a.JobID,
		"status":          &a.Status,
	}
}

func (a *Application) document() map[string]any {
	doc := make(map[string]any, len(a.Payload)+5)
	for k, v := range a.Payload {
		doc[k] = v
	}
	for name, v := range a.fields() {
		if *v != "" {
			doc[name] = *v
		}
	}
	if a.ID != uuid.Nil {
		doc["_id"] = a.ID.String()
	}
	if !a.CreatedAt.IsZero() {
		doc["created_at"] = a.CreatedAt
	}
	if a.UpdatedAt != nil {
		doc["updated_at"] = *a.UpdatedAt
	}
	return doc
}

// MarshalJSON writes the application as a flat document
func (a Application) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.document())
}

// UnmarshalJSON reads a flat document, unknown keys become payload
func (a *Application) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	delete(doc, "_id")
	delete(doc, "created_at")
	delete(doc, "updated_at")

	if err := takeStrings(doc, a.fields()); err != nil {
		return err
	}

	if len(doc) > 0 {
		a.Payload = doc
	}
	return nil
}

// MarshalJSON adds the job summary fields only when a summary is attached
func (e EnrichedApplication) MarshalJSON() ([]byte, error) {
	if e.Application == nil {
		return []byte("null"), nil
	}
	doc := e.Application.document()
	if s := e.Job; s != nil {
		for name, v := range map[string]string{
			"title":        s.Title,
			"company":      s.Company,
			"company_logo": s.CompanyLogo,
			"location":     s.Location,
			"category":     s.Category,
		} {
			if v != "" {
				doc[name] = v
			}
		}
	}
	return json.Marshal(doc)
}

// takeStrings moves the named keys out of doc into dst
func takeStrings(doc map[string]any, dst map[string]*string) error {
	for name, ptr := range dst {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		delete(doc, name)
		if raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return fail(ErrMalformedInput, map[string]any{
				"field":  name,
				"reason": fmt.Sprintf("expected string, got %T", raw),
			})
		}
		*ptr = s
	}
	return nil
}
