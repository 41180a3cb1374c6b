package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
	"github.com/riskibarqy/volleystats/internal/usecase"
)

type parseBoxScoreRequest struct {
	Text string `json:"text" validate:"required"`
}

type matchRequest struct {
	MatchID       string            `json:"match_id"`
	MatchNumber   string            `json:"match_number"`
	Kickoff       string            `json:"kickoff"`
	HomeTeam      string            `json:"home_team" validate:"required"`
	AwayTeam      string            `json:"away_team" validate:"required"`
	Host          string            `json:"host"`
	Location      string            `json:"location"`
	ResultSummary string            `json:"result"`
	StatsURL      string            `json:"stats_url" validate:"omitempty,url"`
	Finished      bool              `json:"finished"`
	CSVPaths      map[string]string `json:"csv_paths"`
}

type csvFileRequest struct {
	MatchID     string `json:"match_id" validate:"required_without=MatchNumber"`
	MatchNumber string `json:"match_number"`
	Team        string `json:"team" validate:"required"`
	Path        string `json:"path" validate:"required"`
}

type mergeRequest struct {
	SchedulePaths []string         `json:"schedule_paths"`
	Matches       []matchRequest   `json:"matches" validate:"dive"`
	CSVFiles      []csvFileRequest `json:"csv_files" validate:"dive"`
	SkipPDF       bool             `json:"skip_pdf"`
}

type teamAggregateRequest struct {
	Team    string         `json:"team" validate:"required"`
	Matches []matchRequest `json:"matches" validate:"required,min=1,dive"`
}

type matchDTO struct {
	MatchID     string `json:"match_id"`
	MatchNumber string `json:"match_number,omitempty"`
	Kickoff     string `json:"kickoff,omitempty"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	StatsURL    string `json:"stats_url,omitempty"`
	Finished    bool   `json:"finished"`
}

type boxScoreDTO struct {
	StatsURL string              `json:"stats_url,omitempty"`
	Teams    []matchstats.Totals `json:"teams"`
}

type mergeResultDTO struct {
	RunID       string              `json:"run_id"`
	CreatedAt   string              `json:"created_at"`
	Matches     int                 `json:"matches"`
	PDFReports  int                 `json:"pdf_reports"`
	CSVFiles    int                 `json:"csv_files"`
	ManualTeams int                 `json:"manual_teams"`
	Columns     []string            `json:"columns"`
	Rows        []map[string]string `json:"rows"`
}

type mergeRunDTO struct {
	RunID     string              `json:"run_id"`
	CreatedAt string              `json:"created_at"`
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
}

func (m matchRequest) toDomain() (match.Match, error) {
	var kickoff time.Time
	if raw := strings.TrimSpace(m.Kickoff); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return match.Match{}, fmt.Errorf("%w: invalid kickoff %q for match %s: %v", usecase.ErrInvalidInput, raw, m.MatchID, err)
		}
		kickoff = parsed
	}

	var csvPaths map[string]string
	if len(m.CSVPaths) > 0 {
		csvPaths = make(map[string]string, len(m.CSVPaths))
		for team, path := range m.CSVPaths {
			csvPaths[strings.TrimSpace(team)] = strings.TrimSpace(path)
		}
	}

	return match.Match{
		MatchID:       strings.TrimSpace(m.MatchID),
		MatchNumber:   strings.TrimSpace(m.MatchNumber),
		Kickoff:       kickoff,
		HomeTeam:      strings.TrimSpace(m.HomeTeam),
		AwayTeam:      strings.TrimSpace(m.AwayTeam),
		Host:          strings.TrimSpace(m.Host),
		Location:      strings.TrimSpace(m.Location),
		ResultSummary: strings.TrimSpace(m.ResultSummary),
		StatsURL:      strings.TrimSpace(m.StatsURL),
		CSVPaths:      csvPaths,
		Finished:      m.Finished,
	}, nil
}

func matchesToDomain(items []matchRequest) ([]match.Match, error) {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		m, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r mergeRequest) toInput() (usecase.MergeInput, error) {
	matches, err := matchesToDomain(r.Matches)
	if err != nil {
		return usecase.MergeInput{}, err
	}

	files := make([]usecase.CSVFile, 0, len(r.CSVFiles))
	for _, f := range r.CSVFiles {
		files = append(files, usecase.CSVFile{
			MatchID:     f.MatchID,
			MatchNumber: f.MatchNumber,
			Team:        f.Team,
			Path:        f.Path,
		})
	}

	return usecase.MergeInput{
		SchedulePaths: r.SchedulePaths,
		Matches:       matches,
		CSVFiles:      files,
		SkipPDF:       r.SkipPDF,
	}, nil
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		MatchID:     m.MatchID,
		MatchNumber: m.MatchNumber,
		Kickoff:     formatTime(m.Kickoff),
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		StatsURL:    m.StatsURL,
		Finished:    m.Finished,
	}
}

func mergeResultToDTO(ctx context.Context, v usecase.MergeResult) mergeResultDTO {
	_, span := startSpan(ctx, "httpapi.mergeResultToDTO")
	defer span.End()

	return mergeResultDTO{
		RunID:       v.RunID,
		CreatedAt:   formatTime(v.CreatedAt),
		Matches:     v.Matches,
		PDFReports:  v.PDFReports,
		CSVFiles:    v.CSVFiles,
		ManualTeams: v.ManualTeams,
		Columns:     mergedrow.FieldOrder,
		Rows:        rowsToDTO(v.Rows),
	}
}

func mergeRunToDTO(v mergedrow.Run) mergeRunDTO {
	return mergeRunDTO{
		RunID:     v.ID,
		CreatedAt: formatTime(v.CreatedAt),
		Columns:   mergedrow.FieldOrder,
		Rows:      rowsToDTO(v.Rows),
	}
}

// rowsToDTO emits every column of every row so clients always see the full
// field set.
func rowsToDTO(rows []mergedrow.Row) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		values := row.Strings()
		item := make(map[string]string, len(values))
		for i, field := range mergedrow.FieldOrder {
			item[field] = values[i]
		}
		out = append(out, item)
	}
	return out
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
