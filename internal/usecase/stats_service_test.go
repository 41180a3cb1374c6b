package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/volleystats/internal/boxscore"
	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/infrastructure/override"
	repocache "github.com/riskibarqy/volleystats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/volleystats/internal/infrastructure/repository/memory"
	matchstatsmock "github.com/riskibarqy/volleystats/internal/mocks/domain/matchstats"
	usecasemock "github.com/riskibarqy/volleystats/internal/mocks/usecase"
	basecache "github.com/riskibarqy/volleystats/internal/platform/cache"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

const testStatsURL = "https://www.volleyball-bundesliga.de/uploads/4021.pdf"

var testPDF = []byte("%PDF-1.4 fake")

var twoTeamPage = strings.Join([]string{
	"USC Münster 3",
	"Dresdner SC 1",
	"Satz Punkte Aufschlag Annahme Angriff Bk",
	"Spieler insgesamt / Players total",
	"9 Jordan, Emilia 12 2 1 15 3 40% 20% 25 5 2 10 45% 3 18",
	"75 33 +23 105 19 14 88 15 30% (15%) 132 10 8 52 39% 9",
	"",
	"Satz Punkte Aufschlag Annahme Angriff Bk",
	"SPIELER INSGESAMT",
	"10 Ford, Brianna 11 1 3 22 4 30% 10% 30 6 3 12 40% 2 19",
	"Punkte 60 20 -5 Aufschlag 90 12 6 Annahme 95 14 27% ( 12%) Angriff 120 15 9 40 33% Block 5",
}, "\n")

func newTestStatsService(
	fetcher PDFFetcher,
	extractor PageTextExtractor,
	repo matchstats.Repository,
	overrides matchstats.OverrideSource,
) *StatsService {
	return NewStatsService(
		fetcher,
		extractor,
		boxscore.NewParser(boxscore.DefaultGlueBounds()),
		repocache.NewTotalsCache(basecache.NewStore(0)),
		repo,
		overrides,
		StatsServiceOptions{WorkerCount: 2, Logger: logging.NewNop()},
	)
}

func TestStatsService_FetchTotals_DownloadsOnceAndPersists(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	extractor := usecasemock.NewPageTextExtractor(t)
	repo := memory.NewMatchStatsRepository()

	fetcher.On("FetchPDF", mock.Anything, testStatsURL).Return(testPDF, nil).Once()
	extractor.On("FirstPageText", mock.Anything, testPDF).Return(twoTeamPage, nil).Once()

	svc := newTestStatsService(fetcher, extractor, repo, nil)

	got, err := svc.FetchTotals(context.Background(), " "+testStatsURL+" ")
	if err != nil {
		t.Fatalf("fetch totals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected team count: got=%d want=2", len(got))
	}
	if got[0].TeamName != "USC Münster" || got[1].TeamName != "Dresdner SC" {
		t.Fatalf("unexpected teams: got=%q/%q", got[0].TeamName, got[1].TeamName)
	}
	if got[1].Metrics == nil || got[1].Metrics.ServesAttempts != 90 || got[1].Metrics.BlocksPoints != 5 {
		t.Fatalf("unexpected second team metrics: got=%+v", got[1].Metrics)
	}

	got[0].TeamName = "mutated"
	again, err := svc.FetchTotals(context.Background(), testStatsURL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if again[0].TeamName != "USC Münster" {
		t.Fatalf("cached result was shared with caller: got=%q", again[0].TeamName)
	}

	stored, exists, err := repo.GetByStatsURL(context.Background(), testStatsURL)
	if err != nil || !exists || len(stored) != 2 {
		t.Fatalf("unexpected persisted totals: got=%d exists=%v err=%v", len(stored), exists, err)
	}
}

func TestStatsService_FetchTotals_UsesStoredTotals(t *testing.T) {
	t.Parallel()

	repo := matchstatsmock.NewRepository(t)
	repo.On("GetByStatsURL", mock.Anything, testStatsURL).
		Return([]matchstats.Totals{{TeamName: "USC Münster"}}, true, nil).
		Once()

	svc := newTestStatsService(nil, nil, repo, nil)

	for i := 0; i < 2; i++ {
		got, err := svc.FetchTotals(context.Background(), testStatsURL)
		if err != nil {
			t.Fatalf("fetch totals: %v", err)
		}
		if len(got) != 1 || got[0].TeamName != "USC Münster" {
			t.Fatalf("unexpected stored totals: got=%+v", got)
		}
	}
}

func TestStatsService_FetchTotals_AppliesOverrides(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	extractor := usecasemock.NewPageTextExtractor(t)
	overrides := matchstatsmock.NewOverrideSource(t)

	manual := matchstats.Metrics{ServesAttempts: 91, ReceptionsAttempts: 68, ReceptionsPositivePct: "29%"}.WithDerivedCounts()
	overrides.On("OverridesFor", testStatsURL).Return([]matchstats.Override{
		{Keys: []string{"dresdner sc", "dsc"}, TeamName: "Dresdner SC", Metrics: manual},
		{Keys: []string{"vc wiesbaden"}, TeamName: "VC Wiesbaden", Metrics: manual, Players: []matchstats.PlayerStats{
			{TeamName: "VC Wiesbaden", PlayerName: "Doe Jane"},
		}},
	}).Once()
	fetcher.On("FetchPDF", mock.Anything, testStatsURL).Return(testPDF, nil).Once()
	extractor.On("FirstPageText", mock.Anything, testPDF).Return(twoTeamPage, nil).Once()

	svc := newTestStatsService(fetcher, extractor, nil, overrides)

	got, err := svc.FetchTotals(context.Background(), testStatsURL)
	if err != nil {
		t.Fatalf("fetch totals: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected team count: got=%d want=3", len(got))
	}

	dresden := got[1]
	if dresden.Metrics == nil || dresden.Metrics.ServesAttempts != 91 || dresden.Metrics.ReceptionsPositive != 20 {
		t.Fatalf("unexpected overridden metrics: got=%+v", dresden.Metrics)
	}
	if len(dresden.Players) != 1 || dresden.Players[0].PlayerName != "Ford, Brianna" {
		t.Fatalf("parsed players should be kept: got=%+v", dresden.Players)
	}

	appended := got[2]
	if appended.TeamName != "VC Wiesbaden" || appended.TotalsLine != "" || len(appended.HeaderLines) != 0 {
		t.Fatalf("unexpected appended override: got=%+v", appended)
	}
	if len(appended.Players) != 1 {
		t.Fatalf("unexpected appended players: got=%d want=1", len(appended.Players))
	}
}

func TestStatsService_FetchTotals_DownloadFailureFallsBackToOverrides(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	fetcher.On("FetchPDF", mock.Anything, testStatsURL).
		Return(nil, errors.New("status 503")).
		Once()

	overrides := override.Set{
		testStatsURL: {{Keys: []string{"usc munster"}, TeamName: "USC Münster", Metrics: matchstats.ZeroMetrics()}},
	}
	svc := newTestStatsService(fetcher, usecasemock.NewPageTextExtractor(t), nil, overrides)

	for i := 0; i < 2; i++ {
		got, err := svc.FetchTotals(context.Background(), testStatsURL)
		if err != nil {
			t.Fatalf("fetch totals: %v", err)
		}
		if len(got) != 1 || got[0].TeamName != "USC Münster" || got[0].Metrics == nil {
			t.Fatalf("unexpected fallback totals: got=%+v", got)
		}
	}
}

func TestStatsService_FetchTotals_ExtractionFailureCachesEmptyResult(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	extractor := usecasemock.NewPageTextExtractor(t)
	fetcher.On("FetchPDF", mock.Anything, testStatsURL).Return(testPDF, nil).Once()
	extractor.On("FirstPageText", mock.Anything, testPDF).Return("", errors.New("no pages")).Once()

	svc := newTestStatsService(fetcher, extractor, nil, nil)

	for i := 0; i < 2; i++ {
		got, err := svc.FetchTotals(context.Background(), testStatsURL)
		if err != nil {
			t.Fatalf("fetch totals: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil totals, got=%v", got)
		}
	}
}

func TestStatsService_FetchTotals_RequiresURL(t *testing.T) {
	t.Parallel()

	svc := newTestStatsService(nil, nil, nil, nil)
	if _, err := svc.FetchTotals(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatsService_ParseText(t *testing.T) {
	t.Parallel()

	svc := newTestStatsService(nil, nil, nil, nil)

	got, err := svc.ParseText(context.Background(), twoTeamPage)
	if err != nil {
		t.Fatalf("parse text: %v", err)
	}
	if len(got) != 2 || got[0].Metrics == nil || got[0].Metrics.ServesAttempts != 105 {
		t.Fatalf("unexpected parsed totals: got=%+v", got)
	}

	empty, err := svc.ParseText(context.Background(), "no box score here")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty totals, got=%v err=%v", empty, err)
	}

	if _, err := svc.ParseText(context.Background(), "\n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatsService_CollectTotals_FinishedUniqueReports(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	extractor := usecasemock.NewPageTextExtractor(t)
	fetcher.On("FetchPDF", mock.Anything, testStatsURL).Return(testPDF, nil).Once()
	extractor.On("FirstPageText", mock.Anything, testPDF).Return(twoTeamPage, nil).Once()

	svc := newTestStatsService(fetcher, extractor, nil, nil)
	kickoff := time.Date(2025, 10, 18, 17, 0, 0, 0, time.UTC)

	matches := []match.Match{
		{MatchID: "4021", Kickoff: kickoff, HomeTeam: "USC Münster", AwayTeam: "Dresdner SC", StatsURL: testStatsURL, Finished: true},
		{MatchID: "4021-dup", Kickoff: kickoff, StatsURL: testStatsURL, Finished: true},
		{MatchID: "4022", Kickoff: kickoff, StatsURL: "https://example.com/4022.pdf"},
		{MatchID: "4023", Kickoff: kickoff, Finished: true},
	}

	got, err := svc.CollectTotals(context.Background(), matches)
	if err != nil {
		t.Fatalf("collect totals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected collected count: got=%d want=1", len(got))
	}
	if got[0].Match.MatchID != "4021" || len(got[0].Totals) != 2 {
		t.Fatalf("unexpected collected match: id=%s teams=%d", got[0].Match.MatchID, len(got[0].Totals))
	}

	none, err := svc.CollectTotals(context.Background(), matches[2:])
	if err != nil || len(none) != 0 {
		t.Fatalf("expected nothing to collect, got=%v err=%v", none, err)
	}
}

func TestStatsService_TeamAggregate(t *testing.T) {
	t.Parallel()

	svc := newTestStatsService(nil, nil, nil, nil)
	parsed, err := svc.ParseText(context.Background(), twoTeamPage)
	if err != nil {
		t.Fatalf("parse text: %v", err)
	}

	collected := []MatchTotals{
		{Match: match.Match{MatchID: "1"}, Totals: parsed},
		{Match: match.Match{MatchID: "2"}, Totals: parsed},
		{Match: match.Match{MatchID: "3"}, Totals: []matchstats.Totals{{TeamName: "USC Münster", TotalsLine: "unreadable"}}},
	}

	got, err := svc.TeamAggregate(context.Background(), "usc muenster", collected)
	if err != nil {
		t.Fatalf("team aggregate: %v", err)
	}
	if got.Metrics.Matches != 2 {
		t.Fatalf("unexpected match count: got=%d want=2", got.Metrics.Matches)
	}
	if got.Metrics.ServesAttempts != 210 || got.Metrics.BlocksPoints != 18 {
		t.Fatalf("unexpected summed metrics: got=%+v", got.Metrics)
	}
	if got.Metrics.AttacksSuccessPct != "39%" {
		t.Fatalf("unexpected attack pct: got=%s want=39%%", got.Metrics.AttacksSuccessPct)
	}
	if len(got.Players) != 1 || got.Players[0].PlayerName != "Jordan, Emilia" {
		t.Fatalf("unexpected players: got=%+v", got.Players)
	}

	if _, err := svc.TeamAggregate(context.Background(), "Nobody", collected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.TeamAggregate(context.Background(), " ", collected); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMergeOverrides_PlayerPrecedence(t *testing.T) {
	t.Parallel()

	parsedPlayer := matchstats.PlayerStats{
		TeamName:   "USC Münster",
		PlayerName: "MOLENAAR Pippa",
		Metrics:    matchstats.Metrics{ReceptionsAttempts: 30, ReceptionsErrors: 2, ReceptionsPositivePct: "27%"}.WithDerivedCounts(),
	}
	manualMetrics := parsedPlayer.Metrics
	manualMetrics.ServesAttempts = 1
	manualPlayer := parsedPlayer
	manualPlayer.Metrics = manualMetrics

	tests := []struct {
		name          string
		parsedPlayers []matchstats.PlayerStats
		wantServes    int
	}{
		{name: "parsed players win", parsedPlayers: []matchstats.PlayerStats{parsedPlayer}, wantServes: 0},
		{name: "override fills a team parsed without players", parsedPlayers: nil, wantServes: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed := []matchstats.Totals{{TeamName: "USC Münster", Players: tc.parsedPlayers}}
			overrides := []matchstats.Override{{
				Keys:     []string{"usc munster"},
				TeamName: "USC Münster",
				Metrics:  manualMetrics,
				Players:  []matchstats.PlayerStats{manualPlayer},
			}}

			got := mergeOverrides(parsed, overrides)
			if len(got) != 1 {
				t.Fatalf("unexpected team count: got=%d want=1", len(got))
			}
			if got[0].Metrics == nil || got[0].Metrics.ServesAttempts != 1 {
				t.Fatalf("expected override team metrics, got=%+v", got[0].Metrics)
			}
			if len(got[0].Players) != 1 {
				t.Fatalf("unexpected player count: got=%d want=1", len(got[0].Players))
			}
			if serves := got[0].Players[0].Metrics.ServesAttempts; serves != tc.wantServes {
				t.Fatalf("unexpected player serves: got=%d want=%d", serves, tc.wantServes)
			}
		})
	}
}

func TestStatsService_FetchTotals_PersistsResolvedMetrics(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewPDFFetcher(t)
	extractor := usecasemock.NewPageTextExtractor(t)
	repo := memory.NewMatchStatsRepository()
	fetcher.On("FetchPDF", mock.Anything, testStatsURL).Return(testPDF, nil).Once()
	extractor.On("FirstPageText", mock.Anything, testPDF).Return(twoTeamPage, nil).Once()

	svc := newTestStatsService(fetcher, extractor, repo, nil)
	if _, err := svc.FetchTotals(context.Background(), testStatsURL); err != nil {
		t.Fatalf("fetch totals: %v", err)
	}

	stored, exists, err := repo.GetByStatsURL(context.Background(), testStatsURL)
	if err != nil || !exists {
		t.Fatalf("expected persisted totals, exists=%v err=%v", exists, err)
	}
	for _, totals := range stored {
		if totals.Metrics == nil {
			t.Fatalf("expected resolved metrics for %q before persisting", totals.TeamName)
		}
		if totals.TotalsLine == "" {
			t.Fatalf("expected raw totals line for %q", totals.TeamName)
		}
	}
}
