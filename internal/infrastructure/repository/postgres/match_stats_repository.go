package postgres

import (
	"context"
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	qb "github.com/riskibarqy/volleystats/internal/platform/querybuilder"
)

// MatchStatsRepository stores the parsed totals of one stats URL as a JSON
// document.
type MatchStatsRepository struct {
	db *sqlx.DB
}

func NewMatchStatsRepository(db *sqlx.DB) *MatchStatsRepository {
	return &MatchStatsRepository{db: db}
}

func (r *MatchStatsRepository) GetByStatsURL(ctx context.Context, statsURL string) ([]matchstats.Totals, bool, error) {
	query, args, err := qb.Select("*").From("match_stats_totals").
		Where(qb.Eq("stats_url", strings.TrimSpace(statsURL))).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build get match stats query: %w", err)
	}

	var row matchStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get match stats stats_url=%s: %w", statsURL, err)
	}

	totals, err := decodeTotals(row.Totals)
	if err != nil {
		return nil, false, fmt.Errorf("decode match stats stats_url=%s: %w", statsURL, err)
	}
	return totals, true, nil
}

func (r *MatchStatsRepository) UpsertByStatsURL(ctx context.Context, statsURL string, totals []matchstats.Totals) error {
	encoded, err := encodeTotals(totals)
	if err != nil {
		return fmt.Errorf("encode match stats stats_url=%s: %w", statsURL, err)
	}

	insertModel := matchStatsInsertModel{
		StatsURL:  strings.TrimSpace(statsURL),
		Totals:    encoded,
		TeamCount: len(totals),
	}
	query, args, err := qb.InsertModel("match_stats_totals", insertModel, `ON CONFLICT (stats_url)
DO UPDATE SET
    totals = EXCLUDED.totals,
    team_count = EXCLUDED.team_count,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert match stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match stats stats_url=%s: %w", statsURL, err)
	}
	return nil
}

func encodeTotals(totals []matchstats.Totals) (string, error) {
	if len(totals) == 0 {
		return "[]", nil
	}
	encoded, err := sonic.Marshal(totals)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeTotals(raw string) ([]matchstats.Totals, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []matchstats.Totals{}, nil
	}
	out := make([]matchstats.Totals, 0, 2)
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
