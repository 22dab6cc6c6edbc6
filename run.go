package distill

import (
	"context"
	"time"
)

// Run is a persisted extraction: the result of applying a template to one
// document.
type Run struct {
	ID           string    `json:"id"`
	SourceURL    string    `json:"sourceUrl"`
	DocumentHash string    `json:"documentHash"`
	Result       Result    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	for i, obj := range r.Result {
		if obj == nil {
			return Errorf(EINVALID, "run result object %d is nil", i)
		}
		for j, rec := range obj.Records {
			if rec == nil {
				return Errorf(EINVALID, "object %q record %d is nil", obj.ObjectID, j)
			}
		}
	}
	return nil
}

// RunService represents a service for storing extraction runs.
type RunService interface {
	// CreateRun stores a run, assigning its ID and CreatedAt.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run with its full result.
	// Returns ENOTFOUND if run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	// Runs are returned without their results.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// DeleteRun permanently removes a run and its records.
	// Returns ENOTFOUND if run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	SourceURL *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
