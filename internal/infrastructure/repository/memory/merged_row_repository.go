package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

// MergedRowRepository keeps every saved run; the latest one is the last saved.
type MergedRowRepository struct {
	mu   sync.RWMutex
	runs []mergedrow.Run
}

func NewMergedRowRepository() *MergedRowRepository {
	return &MergedRowRepository{}
}

func (r *MergedRowRepository) SaveRun(_ context.Context, run mergedrow.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, cloneRun(run))
	return nil
}

func (r *MergedRowRepository) GetLatestRun(_ context.Context) (mergedrow.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.runs) == 0 {
		return mergedrow.Run{}, false, nil
	}
	return cloneRun(r.runs[len(r.runs)-1]), true, nil
}

func cloneRun(run mergedrow.Run) mergedrow.Run {
	rows := make([]mergedrow.Row, len(run.Rows))
	for i, row := range run.Rows {
		values := make(map[string]string, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		rows[i] = mergedrow.Row{Values: values}
	}
	run.Rows = rows
	return run
}
