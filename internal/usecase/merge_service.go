package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/platform/id"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/riskibarqy/volleystats/internal/reconcile"
	"github.com/sourcegraph/conc/pool"
)

const defaultCSVWorkers = 8

// TotalsCollector fetches parsed box scores for a schedule.
type TotalsCollector interface {
	CollectTotals(ctx context.Context, matches []match.Match) ([]MatchTotals, error)
}

// CSVSource reads federation CSV exports and renders merged rows.
type CSVSource interface {
	ReadRows(ctx context.Context, path string) ([]map[string]string, error)
	ReadSchedule(ctx context.Context, path string) ([]match.Match, error)
	EncodeRows(rows []mergedrow.Row) ([]byte, error)
}

// CSVFile binds one team's CSV export to a match, identified by match id or,
// when the id is empty, by match number.
type CSVFile struct {
	MatchID     string `json:"match_id"`
	MatchNumber string `json:"match_number"`
	Team        string `json:"team" validate:"required"`
	Path        string `json:"path" validate:"required"`
}

type MergeInput struct {
	SchedulePaths []string
	Matches       []match.Match
	CSVFiles      []CSVFile
	SkipPDF       bool
}

type MergeResult struct {
	RunID       string          `json:"run_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Matches     int             `json:"matches"`
	PDFReports  int             `json:"pdf_reports"`
	CSVFiles    int             `json:"csv_files"`
	ManualTeams int             `json:"manual_teams"`
	Rows        []mergedrow.Row `json:"-"`
}

type MergeServiceOptions struct {
	WorkerCount int
	Logger      *logging.Logger
}

type MergeService struct {
	collector   TotalsCollector
	csv         CSVSource
	overrides   matchstats.OverrideSource
	repo        mergedrow.Repository
	ids         id.Generator
	workerCount int
	logger      *logging.Logger
	now         func() time.Time
}

func NewMergeService(
	collector TotalsCollector,
	csv CSVSource,
	overrides matchstats.OverrideSource,
	repo mergedrow.Repository,
	ids id.Generator,
	opts MergeServiceOptions,
) *MergeService {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := opts.WorkerCount
	if workers <= 0 {
		workers = defaultCSVWorkers
	}
	if ids == nil {
		ids = id.NewRandomGenerator("run-")
	}

	return &MergeService{
		collector:   collector,
		csv:         csv,
		overrides:   overrides,
		repo:        repo,
		ids:         ids,
		workerCount: workers,
		logger:      logger,
		now:         time.Now,
	}
}

type csvJob struct {
	index int
	match match.Match
	team  string
	path  string
}

type csvLoad struct {
	job     csvJob
	records []mergedrow.Record
	failed  bool
}

// Merge folds the PDF box scores, the CSV exports and the manual entries of
// every scheduled match into one row per player and match, then stores the
// rows as a new run. Sources are folded in that order, so a field set by a
// higher-priority source is never replaced and equal priorities keep the
// first value.
func (s *MergeService) Merge(ctx context.Context, input MergeInput) (_ MergeResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MergeService.Merge")
	defer func() { endUsecaseSpan(span, err) }()

	matches, err := s.scheduleMatches(ctx, input)
	if err != nil {
		return MergeResult{}, err
	}
	if len(matches) == 0 {
		return MergeResult{}, fmt.Errorf("%w: no matches to merge", ErrInvalidInput)
	}
	matches = s.attachCSVFiles(ctx, matches, input.CSVFiles)

	var collected []MatchTotals
	if !input.SkipPDF && s.collector != nil {
		collected, err = s.collector.CollectTotals(ctx, matches)
		if err != nil {
			return MergeResult{}, fmt.Errorf("collect box scores: %w", err)
		}
	}

	loads, err := s.loadCSVRecords(ctx, matches)
	if err != nil {
		return MergeResult{}, err
	}

	engine := reconcile.NewEngine()
	pdfReports := 0
	for _, item := range collected {
		if len(item.Totals) > 0 {
			pdfReports++
		}
		for _, totals := range item.Totals {
			team := reconcile.ScheduleTeam(item.Match, totals.TeamName)
			engine.AddAll(reconcile.RecordsFromTotals(reconcile.ContextFor(item.Match, team), totals))
		}
	}

	csvFiles := 0
	for _, load := range loads {
		if load.failed {
			continue
		}
		csvFiles++
		engine.AddAll(load.records)
	}

	manualTeams := 0
	if s.overrides != nil {
		for _, item := range collected {
			for _, o := range s.overrides.OverridesFor(item.Match.StatsURL) {
				if len(o.Players) == 0 {
					continue
				}
				manualTeams++
				team := reconcile.ScheduleTeam(item.Match, o.TeamName)
				totals := matchstats.Totals{TeamName: o.TeamName, Players: o.Players}
				engine.AddAll(reconcile.ManualRecords(reconcile.ContextFor(item.Match, team), totals))
			}
		}
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return MergeResult{}, fmt.Errorf("generate merge run id: %w", err)
	}
	result := MergeResult{
		RunID:       runID,
		CreatedAt:   s.now().UTC(),
		Matches:     len(matches),
		PDFReports:  pdfReports,
		CSVFiles:    csvFiles,
		ManualTeams: manualTeams,
		Rows:        engine.Rows(),
	}

	if s.repo != nil {
		run := mergedrow.Run{ID: result.RunID, CreatedAt: result.CreatedAt, Rows: result.Rows}
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return MergeResult{}, fmt.Errorf("save merge run: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "merge run completed",
		"run_id", result.RunID,
		"rows", len(result.Rows),
		"matches", result.Matches,
		"pdf_reports", result.PDFReports,
		"csv_files", result.CSVFiles,
		"manual_teams", result.ManualTeams,
	)
	return result, nil
}

func (s *MergeService) scheduleMatches(ctx context.Context, input MergeInput) ([]match.Match, error) {
	matches := append([]match.Match(nil), input.Matches...)
	for _, path := range input.SchedulePaths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if s.csv == nil {
			return nil, fmt.Errorf("%w: csv source is not configured", ErrDependencyUnavailable)
		}
		scheduled, err := s.csv.ReadSchedule(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: read schedule %s: %v", ErrInvalidInput, path, err)
		}
		matches = append(matches, scheduled...)
	}
	return matches, nil
}

// attachCSVFiles records each file on the match it names. Files naming no
// known match are logged and dropped.
func (s *MergeService) attachCSVFiles(ctx context.Context, matches []match.Match, files []CSVFile) []match.Match {
	if len(files) == 0 {
		return matches
	}

	byID := make(map[string]int, len(matches))
	byNumber := make(map[string]int, len(matches))
	for i, m := range matches {
		if key := strings.TrimSpace(m.MatchID); key != "" {
			if _, ok := byID[key]; !ok {
				byID[key] = i
			}
		}
		if key := strings.TrimSpace(m.MatchNumber); key != "" {
			if _, ok := byNumber[key]; !ok {
				byNumber[key] = i
			}
		}
	}

	for _, file := range files {
		index, ok := -1, false
		if key := strings.TrimSpace(file.MatchID); key != "" {
			index, ok = byID[key]
		} else if key := strings.TrimSpace(file.MatchNumber); key != "" {
			index, ok = byNumber[key]
		}
		if !ok {
			s.logger.WarnContext(ctx, "csv file matches no scheduled match",
				"match_id", file.MatchID, "match_number", file.MatchNumber, "path", file.Path)
			continue
		}

		m := matches[index]
		paths := make(map[string]string, len(m.CSVPaths)+1)
		for team, path := range m.CSVPaths {
			paths[team] = path
		}
		paths[reconcile.ScheduleTeam(m, file.Team)] = strings.TrimSpace(file.Path)
		m.CSVPaths = paths
		matches[index] = m
	}
	return matches
}

// loadCSVRecords reads every CSV export referenced by matches concurrently.
// Unreadable files are logged and marked failed; the merge continues without
// them. Results keep schedule order.
func (s *MergeService) loadCSVRecords(ctx context.Context, matches []match.Match) ([]csvLoad, error) {
	jobs := make([]csvJob, 0)
	for _, m := range matches {
		teams := make([]string, 0, len(m.CSVPaths))
		for team := range m.CSVPaths {
			teams = append(teams, team)
		}
		sort.Strings(teams)
		for _, team := range teams {
			path := strings.TrimSpace(m.CSVPaths[team])
			if path == "" {
				continue
			}
			jobs = append(jobs, csvJob{index: len(jobs), match: m, team: team, path: path})
		}
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	if s.csv == nil {
		return nil, fmt.Errorf("%w: csv source is not configured", ErrDependencyUnavailable)
	}

	p := pool.NewWithResults[csvLoad]().
		WithContext(ctx).
		WithMaxGoroutines(min(s.workerCount, len(jobs)))
	for _, job := range jobs {
		job := job
		p.Go(func(ctx context.Context) (csvLoad, error) {
			if err := ctx.Err(); err != nil {
				return csvLoad{}, err
			}
			rows, err := s.csv.ReadRows(ctx, job.path)
			if err != nil {
				s.logger.WarnContext(ctx, "skip unreadable csv export",
					"path", job.path, "team", job.team, "match_id", job.match.MatchID, "error", err)
				return csvLoad{job: job, failed: true}, nil
			}
			records := reconcile.RecordsFromCSV(reconcile.ContextFor(job.match, job.team), rows)
			return csvLoad{job: job, records: records}, nil
		})
	}

	loads, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("load csv exports: %w", err)
	}
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].job.index < loads[j].job.index
	})
	return loads, nil
}

// LatestRun returns the most recently stored merge run.
func (s *MergeService) LatestRun(ctx context.Context) (_ mergedrow.Run, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MergeService.LatestRun")
	defer func() { endUsecaseSpan(span, err) }()

	if s.repo == nil {
		return mergedrow.Run{}, fmt.Errorf("%w: merge runs are not stored", ErrDependencyUnavailable)
	}
	run, exists, err := s.repo.GetLatestRun(ctx)
	if err != nil {
		return mergedrow.Run{}, fmt.Errorf("get latest merge run: %w", err)
	}
	if !exists {
		return mergedrow.Run{}, fmt.Errorf("%w: no merge run stored yet", ErrNotFound)
	}
	return run, nil
}

// ExportLatest renders the latest merge run as CSV.
func (s *MergeService) ExportLatest(ctx context.Context) ([]byte, mergedrow.Run, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, mergedrow.Run{}, err
	}
	if s.csv == nil {
		return nil, mergedrow.Run{}, fmt.Errorf("%w: csv source is not configured", ErrDependencyUnavailable)
	}
	encoded, err := s.csv.EncodeRows(run.Rows)
	if err != nil {
		return nil, mergedrow.Run{}, fmt.Errorf("encode merge run %s: %w", run.ID, err)
	}
	return encoded, run, nil
}
