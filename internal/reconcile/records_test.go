package reconcile

import (
	"testing"
	"time"

	"github.com/riskibarqy/volleystats/internal/domain/match"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

func intPtr(v int) *int { return &v }

func sampleMatch() match.Match {
	return match.Match{
		MatchID:     "4021",
		MatchNumber: "12",
		Kickoff:     time.Date(2025, 10, 18, 17, 0, 0, 0, time.UTC),
		HomeTeam:    "USC Münster",
		AwayTeam:    "Dresdner SC",
		Location:    "Sporthalle Berg Fidel",
		StatsURL:    "https://example.com/4021.pdf",
		CSVPaths:    map[string]string{"USC Münster": "csv/4021_usc.csv"},
		Finished:    true,
	}
}

func TestCanonicalNames(t *testing.T) {
	t.Parallel()

	players := map[string]string{
		"JORDAN EMILIA (L)":   "Jordan Emilia",
		"schaefer lara-marie": "Schaefer Lara-Marie",
		"  von   meyenn  ":    "Von Meyenn",
		"":                    UnknownPlayer,
	}
	for in, want := range players {
		if got := CanonicalPlayerName(in); got != want {
			t.Fatalf("unexpected player name for %q: got=%q want=%q", in, got, want)
		}
	}

	teams := map[string]string{
		"usc münster":              "USC Münster",
		"VFB SUHL LOTTO THÜRINGEN": "VfB Suhl LOTTO Thüringen",
		"dresdner sc":              "Dresdner SC",
		"":                         UnknownTeam,
	}
	for in, want := range teams {
		if got := CanonicalTeamName(in); got != want {
			t.Fatalf("unexpected team name for %q: got=%q want=%q", in, got, want)
		}
	}

	if got := ShortTeamLabel("usc münster"); got != "Münster" {
		t.Fatalf("unexpected short label: got=%q want=%q", got, "Münster")
	}
}

func TestRecordsFromCSV(t *testing.T) {
	t.Parallel()

	ctx := ContextFor(sampleMatch(), "USC Münster")
	rows := []map[string]string{
		{
			"Name":                               "Jordan Emilia (C)",
			"Number":                             "9",
			"Total Points":                       "12",
			"Break Points":                       "2",
			"Total Serves":                       "15",
			"Serve Errors":                       "3",
			"Aces":                               "1",
			"Total Receptions":                   "30",
			"Reception Errors":                   "2",
			"Positive Pass Percentage (Pos%)":    "27%",
			"Excellent/ Perfect Pass Percentage": "13",
			"Total Attacks":                      "25",
			"Attack Erros":                       "5",
			"Blocked Attack":                     "2",
			"Attack Points (Exc.)":               "10",
			"Attack Points Percentage (Exc.%)":   "40%",
			"Block Points":                       "-",
		},
		{"Name": "Totals", "Total Points": "75"},
		{"Name": ""},
	}

	records := RecordsFromCSV(ctx, rows)
	if len(records) != 1 {
		t.Fatalf("unexpected record count: got=%d want=1", len(records))
	}
	rec := records[0]
	if rec.Source != mergedrow.SourceCSV {
		t.Fatalf("unexpected source: got=%s", rec.Source)
	}

	want := map[string]string{
		mergedrow.FieldMatchID:               "4021",
		mergedrow.FieldMatchNumber:           "12",
		mergedrow.FieldKickoff:               "2025-10-18T17:00:00Z",
		mergedrow.FieldIsHome:                "true",
		mergedrow.FieldTeam:                  "USC Münster",
		mergedrow.FieldOpponent:              "Dresdner SC",
		mergedrow.FieldHost:                  "USC Münster",
		mergedrow.FieldLocation:              "Sporthalle Berg Fidel",
		mergedrow.FieldPlayerName:            "Jordan Emilia",
		mergedrow.FieldJerseyNumber:          "9",
		mergedrow.FieldTotalPoints:           "12",
		mergedrow.FieldServesAttempts:        "15",
		mergedrow.FieldServesPoints:          "1",
		mergedrow.FieldReceptionsErrors:      "2",
		mergedrow.FieldReceptionsPositive:    "8",
		mergedrow.FieldReceptionsPerfect:     "4",
		mergedrow.FieldReceptionsPositivePct: "0.27",
		mergedrow.FieldReceptionsPerfectPct:  "0.13",
		mergedrow.FieldAttacksErrors:         "5",
		mergedrow.FieldAttacksSuccessPct:     "0.4",
		mergedrow.FieldCSVPath:               "csv/4021_usc.csv",
	}
	for field, value := range want {
		if got := rec.Values[field]; got != value {
			t.Fatalf("unexpected %s: got=%q want=%q", field, got, value)
		}
	}
	for _, field := range []string{mergedrow.FieldBlocksPoints, mergedrow.FieldPlusMinus, mergedrow.FieldStatsURL} {
		if _, ok := rec.Values[field]; ok {
			t.Fatalf("expected %s to be absent, got=%q", field, rec.Values[field])
		}
	}
}

func TestRecordsFromTotals(t *testing.T) {
	t.Parallel()

	ctx := ContextFor(sampleMatch(), "Dresdner SC")
	metrics := matchstats.Metrics{
		ReceptionsAttempts:    30,
		ReceptionsErrors:      2,
		ReceptionsPositivePct: "27%",
		ReceptionsPerfectPct:  "13%",
		AttacksSuccessPct:     "0%",
	}.WithDerivedCounts()

	totals := matchstats.Totals{
		TeamName: "Dresdner SC",
		Players:  []matchstats.PlayerStats{{
			TeamName:     "Dresdner SC",
			PlayerName:   "Molenaar Pippa",
			JerseyNumber: intPtr(1),
			Metrics:      metrics,
			TotalPoints:  intPtr(0),
			BreakPoints:  intPtr(0),
			PlusMinus:    intPtr(-2),
		}},
	}

	records := RecordsFromTotals(ctx, totals)
	if len(records) != 1 {
		t.Fatalf("unexpected record count: got=%d want=1", len(records))
	}
	rec := records[0]
	if rec.Source != mergedrow.SourcePDF {
		t.Fatalf("unexpected source: got=%s", rec.Source)
	}
	want := map[string]string{
		mergedrow.FieldTeam:                  "Dresdner SC",
		mergedrow.FieldOpponent:              "USC Münster",
		mergedrow.FieldIsHome:                "false",
		mergedrow.FieldHost:                  "USC Münster",
		mergedrow.FieldOpponentShort:         "Münster",
		mergedrow.FieldPlayerName:            "Molenaar Pippa",
		mergedrow.FieldPlusMinus:             "-2",
		mergedrow.FieldReceptionsPositive:    "8",
		mergedrow.FieldReceptionsPositivePct: "0.27",
		mergedrow.FieldStatsURL:              "https://example.com/4021.pdf",
	}
	for field, value := range want {
		if got := rec.Values[field]; got != value {
			t.Fatalf("unexpected %s: got=%q want=%q", field, got, value)
		}
	}
	if _, ok := rec.Values[mergedrow.FieldCSVPath]; ok {
		t.Fatalf("expected csv path to be absent for pdf records")
	}

	manual := ManualRecords(ctx, totals)
	if len(manual) != 1 || manual[0].Source != mergedrow.SourceManual {
		t.Fatalf("unexpected manual records: got=%+v", manual)
	}
}

func TestPDFAndCSVRecordsMergeIntoOneRow(t *testing.T) {
	t.Parallel()

	m := sampleMatch()
	ctx := ContextFor(m, "USC Münster")
	metrics := matchstats.Metrics{
		ServesAttempts:        15,
		ReceptionsAttempts:    30,
		ReceptionsPositivePct: "27%",
		ReceptionsPerfectPct:  "13%",
		AttacksSuccessPct:     "40%",
	}.WithDerivedCounts()
	pdf := RecordsFromTotals(ctx, matchstats.Totals{
		TeamName: "USC Münster",
		Players:  []matchstats.PlayerStats{{
			TeamName:   "USC Münster",
			PlayerName: "JORDAN EMILIA",
			Metrics:    metrics,
		}},
	})
	csv := RecordsFromCSV(ctx, []map[string]string{{
		"Name":             "Jordan Emilia",
		"Total Serve":      "16",
		"Total Receptions": "30",
	}})

	engine := NewEngine()
	engine.AddAll(pdf)
	engine.AddAll(csv)

	rows := engine.Rows()
	if len(rows) != 1 {
		t.Fatalf("unexpected row count: got=%d want=1", len(rows))
	}
	row := rows[0]
	if got := row.Get(mergedrow.FieldServesAttempts); got != "16" {
		t.Fatalf("unexpected serves: got=%s want=16", got)
	}
	if got := row.Get(mergedrow.FieldDataSources); got != "csv;pdf" {
		t.Fatalf("unexpected data sources: got=%q", got)
	}
	if got := row.Get(mergedrow.FieldKickoffComparison); got != "PDF, CSV: 18.10.2025" {
		t.Fatalf("unexpected kickoff comparison: got=%q", got)
	}
	if got := row.Get(mergedrow.FieldStatsURL); got != m.StatsURL {
		t.Fatalf("unexpected stats url: got=%q", got)
	}
}

func TestAggregatePlayers(t *testing.T) {
	t.Parallel()

	first := matchstats.Metrics{ReceptionsAttempts: 10, ReceptionsPositive: 5, AttacksAttempts: 10, AttacksPoints: 4}
	second := matchstats.Metrics{ReceptionsAttempts: 10, ReceptionsPositive: 3, AttacksAttempts: 10, AttacksPoints: 6}

	got := AggregatePlayers([]matchstats.PlayerStats{
		{TeamName: "USC Münster", PlayerName: "Jordan, Emilia", JerseyNumber: intPtr(9), Metrics: first, TotalPoints: intPtr(12)},
		{TeamName: "USC Muenster", PlayerName: "jordan emilia", Metrics: second, TotalPoints: intPtr(8)},
		{TeamName: "Dresdner SC", PlayerName: "Ford, Brianna", Metrics: first},
	})
	if len(got) != 2 {
		t.Fatalf("unexpected aggregate count: got=%d want=2", len(got))
	}
	if got[0].PlayerName != "Ford, Brianna" {
		t.Fatalf("unexpected order: got=%q first", got[0].PlayerName)
	}
	jordan := got[1]
	if jordan.Metrics.Matches != 2 || jordan.TotalPoints != 20 || *jordan.JerseyNumber != 9 {
		t.Fatalf("unexpected aggregate: got=%+v", jordan)
	}
	if jordan.Metrics.ReceptionsPositivePct != "40%" || jordan.Metrics.AttacksSuccessPct != "50%" {
		t.Fatalf("unexpected percentages: got=%s/%s", jordan.Metrics.ReceptionsPositivePct, jordan.Metrics.AttacksSuccessPct)
	}
}

func TestScheduleTeam(t *testing.T) {
	t.Parallel()

	m := sampleMatch()
	m.AwayTeam = "ETV Hamburger Volksbank Volleys"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "exact", in: "USC Münster", want: "USC Münster"},
		{name: "folded umlaut", in: "USC MUENSTER", want: "USC Münster"},
		{name: "truncated caption", in: "ETV Hamburger Volksbank V.", want: "ETV Hamburger Volksbank Volleys"},
		{name: "unknown", in: "Dresdner SC", want: "Dresdner SC"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range tests {
		if got := ScheduleTeam(m, tc.in); got != tc.want {
			t.Fatalf("%s: unexpected team: got=%q want=%q", tc.name, got, tc.want)
		}
	}
}
