package csvsource

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

// Dir reads CSV exports stored flat in one directory. Paths recorded elsewhere
// (schedules, manual lists) keep only their base name when resolved.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: strings.TrimSpace(root)}
}

// Resolve maps a recorded path onto the directory. With no directory set the
// path is used unchanged.
func (d *Dir) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if d.root == "" || path == "" {
		return path
	}
	return filepath.Join(d.root, filepath.Base(path))
}

func (d *Dir) ReadRows(ctx context.Context, path string) ([]map[string]string, error) {
	return ReadFile(ctx, d.Resolve(path))
}

// ReadSchedule reads a schedule export. Schedules are named explicitly, so the
// path is not resolved against the directory.
func (d *Dir) ReadSchedule(ctx context.Context, path string) ([]match.Match, error) {
	rows, err := ReadFile(ctx, strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	return ParseSchedule(rows), nil
}

func (d *Dir) EncodeRows(rows []mergedrow.Row) ([]byte, error) {
	return Encode(rows)
}
