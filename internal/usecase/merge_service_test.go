package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/infrastructure/override"
	"github.com/riskibarqy/volleystats/internal/infrastructure/repository/memory"
	mergedrowmock "github.com/riskibarqy/volleystats/internal/mocks/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type stubCollector struct {
	collected []MatchTotals
	err       error
	calls     int
}

func (c *stubCollector) CollectTotals(_ context.Context, matches []match.Match) ([]MatchTotals, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make([]MatchTotals, 0, len(c.collected))
	for _, item := range c.collected {
		for _, m := range matches {
			if m.StatsURL == item.Match.StatsURL {
				out = append(out, MatchTotals{Match: m, Totals: item.Totals})
				break
			}
		}
	}
	return out, nil
}

type stubCSVSource struct {
	rows      map[string][]map[string]string
	schedules map[string][]match.Match
}

func (s *stubCSVSource) ReadRows(_ context.Context, path string) ([]map[string]string, error) {
	rows, ok := s.rows[path]
	if !ok {
		return nil, errors.New("no such file: " + path)
	}
	return rows, nil
}

func (s *stubCSVSource) ReadSchedule(_ context.Context, path string) ([]match.Match, error) {
	matches, ok := s.schedules[path]
	if !ok {
		return nil, errors.New("no such file: " + path)
	}
	return matches, nil
}

func (s *stubCSVSource) EncodeRows(rows []mergedrow.Row) ([]byte, error) {
	lines := []string{strings.Join(mergedrow.FieldOrder, ",")}
	for _, row := range rows {
		lines = append(lines, strings.Join(row.Strings(), ","))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

type fixedIDs struct{ id string }

func (g fixedIDs) NewID() (string, error) { return g.id, nil }

func mergeFixtureMatch() match.Match {
	return match.Match{
		MatchID:     "4021",
		MatchNumber: "12",
		Kickoff:     time.Date(2025, 10, 18, 17, 0, 0, 0, time.UTC),
		HomeTeam:    "USC Münster",
		AwayTeam:    "Dresdner SC",
		Location:    "Sporthalle Berg Fidel",
		StatsURL:    testStatsURL,
		Finished:    true,
	}
}

func mergeFixtureTotals() []matchstats.Totals {
	jersey := 9
	metrics := matchstats.Metrics{
		ServesAttempts:        15,
		ReceptionsAttempts:    30,
		ReceptionsPositivePct: "27%",
		ReceptionsPerfectPct:  "13%",
		AttacksSuccessPct:     "40%",
	}.WithDerivedCounts()
	return []matchstats.Totals{{
		TeamName: "USC MUENSTER",
		Players: []matchstats.PlayerStats{{
			TeamName:     "USC MUENSTER",
			PlayerName:   "JORDAN EMILIA",
			JerseyNumber: &jersey,
			Metrics:      metrics,
		}},
	}}
}

func newTestMergeService(collector TotalsCollector, csv CSVSource, overrides matchstats.OverrideSource, repo mergedrow.Repository) *MergeService {
	svc := NewMergeService(collector, csv, overrides, repo, fixedIDs{id: "run-1"}, MergeServiceOptions{
		WorkerCount: 2,
		Logger:      logging.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestMergeService_Merge_FoldsSourcesByPriority(t *testing.T) {
	t.Parallel()

	m := mergeFixtureMatch()
	collector := &stubCollector{collected: []MatchTotals{{Match: m, Totals: mergeFixtureTotals()}}}
	csv := &stubCSVSource{
		rows: map[string][]map[string]string{
			"exports/4021_usc.csv": {
				{"Name": "Jordan Emilia", "Number": "9", "Total Serve": "16", "Total Receptions": "30"},
				{"Name": "Totals", "Total Serve": "80"},
			},
		},
		schedules: map[string][]match.Match{"schedule.csv": {m}},
	}
	overrides := override.Set{
		testStatsURL: {{
			Keys:     []string{"usc munster"},
			TeamName: "USC Münster",
			Players: []matchstats.PlayerStats{{
				TeamName:   "USC Münster",
				PlayerName: "Jordan Emilia",
				Metrics:    matchstats.Metrics{ServesAttempts: 17},
			}},
		}},
	}
	repo := memory.NewMergedRowRepository()

	svc := newTestMergeService(collector, csv, overrides, repo)
	result, err := svc.Merge(context.Background(), MergeInput{
		SchedulePaths: []string{"schedule.csv"},
		CSVFiles: []CSVFile{
			{MatchNumber: "12", Team: "USC Münster", Path: "exports/4021_usc.csv"},
			{MatchNumber: "99", Team: "USC Münster", Path: "exports/unknown.csv"},
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if result.RunID != "run-1" || result.Matches != 1 || result.PDFReports != 1 || result.CSVFiles != 1 || result.ManualTeams != 1 {
		t.Fatalf("unexpected merge summary: got=%+v", result)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("unexpected row count: got=%d want=1", len(result.Rows))
	}

	row := result.Rows[0]
	if got := row.Get(mergedrow.FieldTeam); got != "USC Münster" {
		t.Fatalf("unexpected team: got=%q", got)
	}
	if got := row.Get(mergedrow.FieldServesAttempts); got != "17" {
		t.Fatalf("manual value should win: got=%s want=17", got)
	}
	if got := row.Get(mergedrow.FieldReceptionsPositivePct); got != "0.27" {
		t.Fatalf("unexpected positive reception share: got=%s want=0.27", got)
	}
	if got := row.Get(mergedrow.FieldCSVPath); got != "exports/4021_usc.csv" {
		t.Fatalf("unexpected csv path: got=%q", got)
	}
	if got := row.Get(mergedrow.FieldStatsURL); got != testStatsURL {
		t.Fatalf("unexpected stats url: got=%q", got)
	}
	if got := row.Get(mergedrow.FieldOpponentShort); got != "Dresden" {
		t.Fatalf("unexpected opponent label: got=%q", got)
	}

	stored, exists, err := repo.GetLatestRun(context.Background())
	if err != nil || !exists || stored.ID != "run-1" || len(stored.Rows) != 1 {
		t.Fatalf("unexpected stored run: got=%+v exists=%v err=%v", stored, exists, err)
	}
}

func TestMergeService_Merge_SkipPDFAndUnreadableCSV(t *testing.T) {
	t.Parallel()

	m := mergeFixtureMatch()
	m.CSVPaths = map[string]string{
		"USC Münster": "exports/4021_usc.csv",
		"Dresdner SC": "exports/missing.csv",
	}
	collector := &stubCollector{}
	csv := &stubCSVSource{rows: map[string][]map[string]string{
		"exports/4021_usc.csv": {{"Name": "Jordan Emilia", "Total Serve": "16"}},
	}}

	svc := newTestMergeService(collector, csv, nil, nil)
	result, err := svc.Merge(context.Background(), MergeInput{Matches: []match.Match{m}, SkipPDF: true})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if collector.calls != 0 {
		t.Fatalf("collector should not run: calls=%d", collector.calls)
	}
	if result.CSVFiles != 1 || len(result.Rows) != 1 {
		t.Fatalf("unexpected result: csv_files=%d rows=%d", result.CSVFiles, len(result.Rows))
	}
	if got := result.Rows[0].Get(mergedrow.FieldDataSources); got != "csv" {
		t.Fatalf("unexpected data sources: got=%q", got)
	}
}

func TestMergeService_Merge_Errors(t *testing.T) {
	t.Parallel()

	svc := newTestMergeService(&stubCollector{}, &stubCSVSource{}, nil, nil)
	if _, err := svc.Merge(context.Background(), MergeInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty input, got %v", err)
	}
	if _, err := svc.Merge(context.Background(), MergeInput{SchedulePaths: []string{"missing.csv"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unreadable schedule, got %v", err)
	}

	failing := newTestMergeService(&stubCollector{err: errors.New("boom")}, &stubCSVSource{}, nil, nil)
	if _, err := failing.Merge(context.Background(), MergeInput{Matches: []match.Match{mergeFixtureMatch()}}); err == nil {
		t.Fatalf("expected collector error")
	}
}

func TestMergeService_ExportLatest(t *testing.T) {
	t.Parallel()

	repo := mergedrowmock.NewRepository(t)
	run := mergedrow.Run{
		ID: "run-7",
		Rows: []mergedrow.Row{{Values: map[string]string{
			mergedrow.FieldTeam:       "USC Münster",
			mergedrow.FieldPlayerName: "Jordan Emilia",
		}}},
	}
	repo.On("GetLatestRun", mock.Anything).Return(run, true, nil).Once()

	svc := newTestMergeService(nil, &stubCSVSource{}, nil, repo)
	encoded, got, err := svc.ExportLatest(context.Background())
	if err != nil {
		t.Fatalf("export latest: %v", err)
	}
	if got.ID != "run-7" {
		t.Fatalf("unexpected run id: got=%s want=run-7", got.ID)
	}
	lines := strings.Split(string(encoded), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], mergedrow.FieldDataSources+",") {
		t.Fatalf("unexpected export: got=%q", string(encoded))
	}
	if !strings.Contains(lines[1], "Jordan Emilia") {
		t.Fatalf("export misses player row: got=%q", lines[1])
	}
}

func TestMergeService_LatestRun_NotFound(t *testing.T) {
	t.Parallel()

	repo := mergedrowmock.NewRepository(t)
	repo.On("GetLatestRun", mock.Anything).Return(mergedrow.Run{}, false, nil).Once()

	svc := newTestMergeService(nil, nil, nil, repo)
	if _, err := svc.LatestRun(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	unstored := newTestMergeService(nil, nil, nil, nil)
	if _, err := unstored.LatestRun(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
