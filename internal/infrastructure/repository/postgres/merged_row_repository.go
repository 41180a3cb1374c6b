package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	qb "github.com/riskibarqy/volleystats/internal/platform/querybuilder"
)

// mergedRowBatchSize keeps each INSERT well below the 65535 bind limit.
const mergedRowBatchSize = 500

type MergedRowRepository struct {
	db *sqlx.DB
}

func NewMergedRowRepository(db *sqlx.DB) *MergedRowRepository {
	return &MergedRowRepository{db: db}
}

func (r *MergedRowRepository) SaveRun(ctx context.Context, run mergedrow.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("merge run id is required")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save merge run: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	runQuery, runArgs, err := qb.InsertModel("merge_runs", mergeRunInsertModel{
		PublicID:  run.ID,
		RowCount:  len(run.Rows),
		CreatedAt: createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert merge run query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, runQuery, runArgs...); err != nil {
		return fmt.Errorf("insert merge run id=%s: %w", run.ID, err)
	}

	for start := 0; start < len(run.Rows); start += mergedRowBatchSize {
		end := min(start+mergedRowBatchSize, len(run.Rows))
		batch := make([]mergedRowInsertModel, 0, end-start)
		for i := start; i < end; i++ {
			encoded, err := sonic.Marshal(run.Rows[i].Values)
			if err != nil {
				return fmt.Errorf("encode merged row %d: %w", i, err)
			}
			batch = append(batch, mergedRowInsertModel{
				RunPublicID: run.ID,
				Position:    i,
				Values:      string(encoded),
			})
		}

		query, args, err := qb.InsertModels("merged_rows", batch, "")
		if err != nil {
			return fmt.Errorf("build insert merged rows query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert merged rows run=%s offset=%d: %w", run.ID, start, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save merge run tx: %w", err)
	}
	return nil
}

func (r *MergedRowRepository) GetLatestRun(ctx context.Context) (mergedrow.Run, bool, error) {
	runQuery, runArgs, err := qb.Select("public_id", "row_count", "created_at").From("merge_runs").
		OrderBy("created_at DESC", "public_id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return mergedrow.Run{}, false, fmt.Errorf("build latest merge run query: %w", err)
	}

	var runRow mergeRunTableModel
	if err := r.db.GetContext(ctx, &runRow, runQuery, runArgs...); err != nil {
		if isNotFound(err) {
			return mergedrow.Run{}, false, nil
		}
		return mergedrow.Run{}, false, fmt.Errorf("get latest merge run: %w", err)
	}

	rowsQuery, rowsArgs, err := qb.Select("run_public_id", "position", "row_values").From("merged_rows").
		Where(qb.Eq("run_public_id", runRow.PublicID)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return mergedrow.Run{}, false, fmt.Errorf("build list merged rows query: %w", err)
	}

	var rows []mergedRowTableModel
	if err := r.db.SelectContext(ctx, &rows, rowsQuery, rowsArgs...); err != nil {
		return mergedrow.Run{}, false, fmt.Errorf("list merged rows run=%s: %w", runRow.PublicID, err)
	}

	out := mergedrow.Run{
		ID:        runRow.PublicID,
		CreatedAt: runRow.CreatedAt,
		Rows:      make([]mergedrow.Row, 0, len(rows)),
	}
	for _, row := range rows {
		values := make(map[string]string)
		if err := sonic.Unmarshal([]byte(row.Values), &values); err != nil {
			return mergedrow.Run{}, false, fmt.Errorf("decode merged row run=%s position=%d: %w", runRow.PublicID, row.Position, err)
		}
		out.Rows = append(out.Rows, mergedrow.Row{Values: values})
	}
	return out, true, nil
}
