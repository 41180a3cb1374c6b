package postgres

import "time"

type matchStatsTableModel struct {
	ID        int64     `db:"id"`
	StatsURL  string    `db:"stats_url"`
	Totals    string    `db:"totals"`
	TeamCount int       `db:"team_count"`
	FetchedAt time.Time `db:"fetched_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type matchStatsInsertModel struct {
	StatsURL  string `db:"stats_url"`
	Totals    string `db:"totals"`
	TeamCount int    `db:"team_count"`
}

type mergeRunTableModel struct {
	PublicID  string    `db:"public_id"`
	RowCount  int       `db:"row_count"`
	CreatedAt time.Time `db:"created_at"`
}

type mergeRunInsertModel struct {
	PublicID  string    `db:"public_id"`
	RowCount  int       `db:"row_count"`
	CreatedAt time.Time `db:"created_at"`
}

type mergedRowTableModel struct {
	RunPublicID string `db:"run_public_id"`
	Position    int    `db:"position"`
	Values      string `db:"row_values"`
}

type mergedRowInsertModel struct {
	RunPublicID string `db:"run_public_id"`
	Position    int    `db:"position"`
	Values      string `db:"row_values"`
}
