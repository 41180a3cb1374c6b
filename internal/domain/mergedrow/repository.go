package mergedrow

import "context"

type Repository interface {
	SaveRun(ctx context.Context, run Run) error
	GetLatestRun(ctx context.Context) (Run, bool, error)
}
