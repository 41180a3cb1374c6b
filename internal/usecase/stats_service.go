package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/volleystats/internal/boxscore"
	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/riskibarqy/volleystats/internal/platform/resilience"
	"github.com/riskibarqy/volleystats/internal/platform/textnorm"
	"github.com/riskibarqy/volleystats/internal/reconcile"
)

const defaultStatsWorkers = 4

// PDFFetcher downloads the box-score PDF behind a stats URL.
type PDFFetcher interface {
	FetchPDF(ctx context.Context, statsURL string) ([]byte, error)
}

// PageTextExtractor returns the plain text of a PDF's first page.
type PageTextExtractor interface {
	FirstPageText(ctx context.Context, data []byte) (string, error)
}

type StatsServiceOptions struct {
	WorkerCount int
	Logger      *logging.Logger
}

// MatchTotals pairs a schedule entry with the totals parsed from its report.
type MatchTotals struct {
	Match  match.Match         `json:"match"`
	Totals []matchstats.Totals `json:"totals"`
}

// TeamAggregate is one team's statistics summed over the matches it played.
type TeamAggregate struct {
	Team    string                       `json:"team"`
	Metrics matchstats.AggregatedMetrics `json:"metrics"`
	Players []reconcile.PlayerAggregate  `json:"players"`
}

type StatsService struct {
	fetcher     PDFFetcher
	extractor   PageTextExtractor
	parser      *boxscore.Parser
	cache       matchstats.Cache
	repo        matchstats.Repository
	overrides   matchstats.OverrideSource
	workerCount int
	logger      *logging.Logger
	flight      resilience.SingleFlight[[]matchstats.Totals]
}

// NewStatsService wires the download pipeline. repo and overrides are
// optional; cache is required.
func NewStatsService(
	fetcher PDFFetcher,
	extractor PageTextExtractor,
	parser *boxscore.Parser,
	cache matchstats.Cache,
	repo matchstats.Repository,
	overrides matchstats.OverrideSource,
	opts StatsServiceOptions,
) *StatsService {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if parser == nil {
		parser = boxscore.NewParser(boxscore.DefaultGlueBounds())
	}
	workers := opts.WorkerCount
	if workers <= 0 {
		workers = defaultStatsWorkers
	}

	return &StatsService{
		fetcher:     fetcher,
		extractor:   extractor,
		parser:      parser,
		cache:       cache,
		repo:        repo,
		overrides:   overrides,
		workerCount: workers,
		logger:      logger,
	}
}

// FetchTotals returns the team totals behind statsURL. Download and extraction
// failures never surface: the manual overrides alone form the result, possibly
// empty, and that result is cached like a parsed one.
func (s *StatsService) FetchTotals(ctx context.Context, statsURL string) (_ []matchstats.Totals, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.FetchTotals")
	defer func() { endUsecaseSpan(span, err) }()

	statsURL = strings.TrimSpace(statsURL)
	if statsURL == "" {
		return nil, fmt.Errorf("%w: stats url is required", ErrInvalidInput)
	}

	if cached, ok := s.cachedTotals(ctx, statsURL); ok {
		return cached, nil
	}

	totals, err, _ := s.flight.Do(statsURL, func() ([]matchstats.Totals, error) {
		if cached, ok := s.cachedTotals(ctx, statsURL); ok {
			return cached, nil
		}
		return s.loadTotals(ctx, statsURL)
	})
	if err != nil {
		return nil, err
	}
	return matchstats.CloneTotals(totals), nil
}

func (s *StatsService) cachedTotals(ctx context.Context, statsURL string) ([]matchstats.Totals, bool) {
	totals, ok, err := s.cache.Get(ctx, statsURL)
	if err != nil {
		s.logger.WarnContext(ctx, "totals cache read failed", "stats_url", statsURL, "error", err)
		return nil, false
	}
	return totals, ok
}

func (s *StatsService) loadTotals(ctx context.Context, statsURL string) ([]matchstats.Totals, error) {
	if s.repo != nil {
		stored, exists, err := s.repo.GetByStatsURL(ctx, statsURL)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "stored totals lookup failed", "stats_url", statsURL, "error", err)
		case exists:
			s.storeInCache(ctx, statsURL, stored)
			return stored, nil
		}
	}

	text, err := s.downloadText(ctx, statsURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "box score unavailable, using manual entries only", "stats_url", statsURL, "error", err)
		result := mergeOverrides(nil, s.overridesFor(statsURL))
		s.storeInCache(ctx, statsURL, result)
		return result, nil
	}

	result := mergeOverrides(s.resolveMetrics(s.parser.ParsePage(text)), s.overridesFor(statsURL))
	s.storeInCache(ctx, statsURL, result)
	if s.repo != nil {
		if err := s.repo.UpsertByStatsURL(ctx, statsURL, result); err != nil {
			s.logger.WarnContext(ctx, "persist totals failed", "stats_url", statsURL, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "box score parsed", "stats_url", statsURL, "teams", len(result))
	return result, nil
}

func (s *StatsService) downloadText(ctx context.Context, statsURL string) (string, error) {
	if s.fetcher == nil || s.extractor == nil {
		return "", fmt.Errorf("%w: box score download is not configured", ErrDependencyUnavailable)
	}
	data, err := s.fetcher.FetchPDF(ctx, statsURL)
	if err != nil {
		return "", fmt.Errorf("download box score: %w", err)
	}
	text, err := s.extractor.FirstPageText(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract box score text: %w", err)
	}
	return text, nil
}

func (s *StatsService) storeInCache(ctx context.Context, statsURL string, totals []matchstats.Totals) {
	if err := s.cache.Set(ctx, statsURL, totals); err != nil {
		s.logger.WarnContext(ctx, "totals cache write failed", "stats_url", statsURL, "error", err)
	}
}

func (s *StatsService) overridesFor(statsURL string) []matchstats.Override {
	if s.overrides == nil {
		return nil
	}
	return s.overrides.OverridesFor(statsURL)
}

// resolveMetrics reads every team's metrics from its totals line. A team whose
// line is unreadable keeps nil metrics.
func (s *StatsService) resolveMetrics(totals []matchstats.Totals) []matchstats.Totals {
	for i := range totals {
		totals[i].Metrics = s.parser.ResolveMetrics(totals[i])
	}
	return totals
}

// ParseText parses already extracted page text. Overrides and caches are not
// involved.
func (s *StatsService) ParseText(ctx context.Context, text string) ([]matchstats.Totals, error) {
	_, span := startUsecaseSpan(ctx, "usecase.StatsService.ParseText")
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	totals := s.resolveMetrics(s.parser.ParsePage(text))
	if totals == nil {
		totals = []matchstats.Totals{}
	}
	return totals, nil
}

// CollectTotals fetches the totals of every finished match that links a stats
// report. Matches sharing a stats URL are fetched once; the first one wins.
// Results keep the input order.
func (s *StatsService) CollectTotals(ctx context.Context, matches []match.Match) ([]MatchTotals, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.CollectTotals")
	defer span.End()

	selected := make([]match.Match, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		url := strings.TrimSpace(m.StatsURL)
		if !m.Finished || url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		selected = append(selected, m)
	}
	if len(selected) == 0 {
		return []MatchTotals{}, nil
	}

	pool, err := ants.NewPool(min(s.workerCount, len(selected)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]MatchTotals, len(selected))
	var failed atomic.Int32
	var workers sync.WaitGroup
	for i, m := range selected {
		i, m := i, m
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			totals, err := s.FetchTotals(ctx, m.StatsURL)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "collect totals failed", "stats_url", m.StatsURL, "match_id", m.MatchID, "error", err)
				totals = []matchstats.Totals{}
			}
			results[i] = MatchTotals{Match: m, Totals: totals}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit totals task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collected match totals", "matches", len(selected), "failed", failed.Load())
	return results, nil
}

// TeamAggregate sums team's metrics and players over collected matches. A
// match in which the team's totals cannot be resolved is skipped.
func (s *StatsService) TeamAggregate(ctx context.Context, team string, collected []MatchTotals) (TeamAggregate, error) {
	_, span := startUsecaseSpan(ctx, "usecase.StatsService.TeamAggregate")
	defer span.End()

	key := textnorm.NormalizeName(team)
	if key == "" {
		return TeamAggregate{}, fmt.Errorf("%w: team is required", ErrInvalidInput)
	}

	var acc matchstats.Accumulator
	players := make([]matchstats.PlayerStats, 0)
	found := false
	for _, item := range collected {
		for _, totals := range item.Totals {
			if textnorm.NormalizeName(totals.TeamName) != key {
				continue
			}
			metrics := s.parser.ResolveMetrics(totals)
			if metrics == nil {
				continue
			}
			found = true
			acc.Add(*metrics)
			for _, player := range totals.Players {
				if player.TeamName == "" {
					player.TeamName = totals.TeamName
				}
				players = append(players, player)
			}
		}
	}
	if !found {
		return TeamAggregate{}, fmt.Errorf("%w: no totals for team %q", ErrNotFound, team)
	}

	return TeamAggregate{
		Team:    strings.TrimSpace(team),
		Metrics: acc.Result(),
		Players: reconcile.AggregatePlayers(players),
	}, nil
}

// mergeOverrides replaces the metrics of every parsed team that has a manual
// entry and appends the entries that matched no parsed team. Parsed players
// are kept; the entry's players fill in only for a team parsed without any.
func mergeOverrides(parsed []matchstats.Totals, overrides []matchstats.Override) []matchstats.Totals {
	result := matchstats.CloneTotals(parsed)
	if result == nil {
		result = []matchstats.Totals{}
	}
	if len(overrides) == 0 {
		return result
	}

	used := make([]bool, len(overrides))
	for i := range result {
		key := textnorm.NormalizeName(result[i].TeamName)
		if key == "" {
			continue
		}
		for j, o := range overrides {
			if used[j] || !o.HasKey(key) {
				continue
			}
			used[j] = true
			metrics := o.Metrics
			result[i].Metrics = &metrics
			if len(result[i].Players) == 0 && len(o.Players) > 0 {
				result[i].Players = append([]matchstats.PlayerStats(nil), o.Players...)
			}
			break
		}
	}

	for j, o := range overrides {
		if used[j] {
			continue
		}
		metrics := o.Metrics
		result = append(result, matchstats.Totals{
			TeamName:    o.TeamName,
			HeaderLines: []string{},
			Metrics:     &metrics,
			Players:     append([]matchstats.PlayerStats{}, o.Players...),
		})
	}
	return result
}
