package ports

import (
	"context"

	"github.com/thushan/runstatus/internal/core/domain"
)

// ListQuery carries the list filters verbatim; empty strings are sent as
// empty parameters, which the status services read as "unfiltered"
type ListQuery struct {
	DataProvider  string
	ReferenceTime string
	Limit         int
}

// RunSource is the status service as seen by a query controller.
// GetRun returns an error wrapping domain.ErrNotFound for unknown ids.
type RunSource interface {
	GetRun(ctx context.Context, id string) (domain.ModelRun, error)
	ListRuns(ctx context.Context, q ListQuery) (domain.ResultSet, error)
	Resource() string
}
