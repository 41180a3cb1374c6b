package override

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
	"github.com/riskibarqy/volleystats/internal/platform/logging"
	"github.com/riskibarqy/volleystats/internal/platform/textnorm"
)

// Set holds the loaded overrides keyed by stats URL.
type Set map[string][]matchstats.Override

func (s Set) OverridesFor(statsURL string) []matchstats.Override {
	return s[strings.TrimSpace(statsURL)]
}

// Len returns the number of team overrides across all stats URLs.
func (s Set) Len() int {
	total := 0
	for _, items := range s {
		total += len(items)
	}
	return total
}

type document struct {
	Team    string            `json:"team"`
	Aliases aliasList         `json:"aliases"`
	Matches []json.RawMessage `json:"matches"`
}

// entry is either a match of a team document or a team of a match document.
type entry struct {
	StatsURL  string            `json:"stats_url"`
	Name      string            `json:"name"`
	Aliases   aliasList         `json:"aliases"`
	Serve     *serveBlock       `json:"serve"`
	Reception *receptionBlock   `json:"reception"`
	Attack    *attackBlock      `json:"attack"`
	Block     *blockBlock       `json:"block"`
	Players   []json.RawMessage `json:"players"`
	Teams     []json.RawMessage `json:"teams"`
}

type serveBlock struct {
	Attempts flexInt `json:"attempts"`
	Errors   flexInt `json:"errors"`
	Points   flexInt `json:"points"`
}

type receptionBlock struct {
	Attempts    flexInt     `json:"attempts"`
	Errors      flexInt     `json:"errors"`
	PositivePct flexPercent `json:"positive_pct"`
	PerfectPct  flexPercent `json:"perfect_pct"`
}

type attackBlock struct {
	Attempts   flexInt     `json:"attempts"`
	Errors     flexInt     `json:"errors"`
	Blocked    flexInt     `json:"blocked"`
	Points     flexInt     `json:"points"`
	SuccessPct flexPercent `json:"success_pct"`
}

type blockBlock struct {
	Points flexInt `json:"points"`
}

type playerEntry struct {
	Name         string        `json:"name"`
	JerseyNumber flexInt       `json:"jersey_number"`
	TotalPoints  flexInt       `json:"total_points"`
	BreakPoints  flexInt       `json:"break_points"`
	PlusMinus    flexInt       `json:"plus_minus"`
	Metrics      playerMetrics `json:"metrics"`
}

type playerMetrics struct {
	ServesAttempts        flexInt     `json:"serves_attempts"`
	ServesErrors          flexInt     `json:"serves_errors"`
	ServesPoints          flexInt     `json:"serves_points"`
	ReceptionsAttempts    flexInt     `json:"receptions_attempts"`
	ReceptionsErrors      flexInt     `json:"receptions_errors"`
	ReceptionsPositivePct flexPercent `json:"receptions_positive_pct"`
	ReceptionsPerfectPct  flexPercent `json:"receptions_perfect_pct"`
	AttacksAttempts       flexInt     `json:"attacks_attempts"`
	AttacksErrors         flexInt     `json:"attacks_errors"`
	AttacksBlocked        flexInt     `json:"attacks_blocked"`
	AttacksPoints         flexInt     `json:"attacks_points"`
	AttacksSuccessPct     flexPercent `json:"attacks_success_pct"`
	BlocksPoints          flexInt     `json:"blocks_points"`
	BreakPoints           flexInt     `json:"break_points"`
	PlusMinus             flexInt     `json:"plus_minus"`
}

// teamTotalsInput is the validated form of one team's match totals.
type teamTotalsInput struct {
	StatsURL           string `validate:"required"`
	TeamName           string `validate:"required"`
	ServesAttempts     *int   `validate:"required,gte=0"`
	ServesErrors       *int   `validate:"required,gte=0"`
	ServesPoints       *int   `validate:"required,gte=0"`
	ReceptionsAttempts *int   `validate:"required,gte=0"`
	ReceptionsErrors   *int   `validate:"required,gte=0"`
	AttacksAttempts    *int   `validate:"required,gte=0"`
	AttacksErrors      *int   `validate:"required,gte=0"`
	AttacksBlocked     *int   `validate:"required,gte=0"`
	AttacksPoints      *int   `validate:"required,gte=0"`
	BlocksPoints       *int   `validate:"required,gte=0"`
}

type playerInput struct {
	Name               string `validate:"required"`
	ServesAttempts     int    `validate:"gte=0"`
	ServesErrors       int    `validate:"gte=0"`
	ServesPoints       int    `validate:"gte=0"`
	ReceptionsAttempts int    `validate:"gte=0"`
	ReceptionsErrors   int    `validate:"gte=0"`
	AttacksAttempts    int    `validate:"gte=0"`
	AttacksErrors      int    `validate:"gte=0"`
	AttacksBlocked     int    `validate:"gte=0"`
	AttacksPoints      int    `validate:"gte=0"`
	BlocksPoints       int    `validate:"gte=0"`
}

// Loader reads manual override files. Malformed entries are skipped with a
// warning; only unreadable files fail the load.
type Loader struct {
	logger   *logging.Logger
	validate *validator.Validate
}

func NewLoader(logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{
		logger:   logger,
		validate: validator.New(),
	}
}

// LoadPath loads a single JSON file or every *.json file of a directory. A
// missing path yields an empty set.
func (l *Loader) LoadPath(ctx context.Context, path string) (Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Set{}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.InfoContext(ctx, "override path not found, continuing without overrides", "path", path)
			return Set{}, nil
		}
		return nil, crerr.Wrapf(err, "stat override path %s", path)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, crerr.Wrapf(err, "list override files in %s", path)
		}
		sort.Strings(files)
	}

	set := Set{}
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, crerr.Wrapf(err, "read override file %s", file)
		}
		if err := l.merge(ctx, set, raw, file); err != nil {
			return nil, err
		}
	}

	l.logger.InfoContext(ctx, "overrides loaded", "files", len(files), "stats_urls", len(set), "teams", set.Len())
	return set, nil
}

// Parse decodes one payload holding a document or a list of documents.
func (l *Loader) Parse(ctx context.Context, raw []byte) (Set, error) {
	set := Set{}
	if err := l.merge(ctx, set, raw, "inline"); err != nil {
		return nil, err
	}
	return set, nil
}

func (l *Loader) merge(ctx context.Context, set Set, raw []byte, origin string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var documents []json.RawMessage
	if trimmed[0] == '[' {
		if err := sonic.Unmarshal(trimmed, &documents); err != nil {
			return crerr.Wrapf(err, "decode override list %s", origin)
		}
	} else {
		documents = []json.RawMessage{json.RawMessage(trimmed)}
	}

	for i, rawDoc := range documents {
		var doc document
		if err := sonic.Unmarshal(rawDoc, &doc); err != nil {
			l.logger.WarnContext(ctx, "skip malformed override document", "origin", origin, "index", i, "error", err)
			continue
		}
		l.addDocument(ctx, set, doc, origin)
	}
	return nil
}

func (l *Loader) addDocument(ctx context.Context, set Set, doc document, origin string) {
	team := strings.TrimSpace(doc.Team)
	for i, rawMatch := range doc.Matches {
		var match entry
		if err := sonic.Unmarshal(rawMatch, &match); err != nil {
			l.logger.WarnContext(ctx, "skip malformed override match", "origin", origin, "team", team, "index", i, "error", err)
			continue
		}

		if team != "" {
			l.addEntry(ctx, set, match.StatsURL, team, doc.Aliases, match)
			continue
		}

		// Match documents list both teams under "teams".
		for j, rawTeam := range match.Teams {
			var teamEntry entry
			if err := sonic.Unmarshal(rawTeam, &teamEntry); err != nil {
				l.logger.WarnContext(ctx, "skip malformed override team", "origin", origin, "stats_url", match.StatsURL, "index", j, "error", err)
				continue
			}
			l.addEntry(ctx, set, match.StatsURL, teamEntry.Name, teamEntry.Aliases, teamEntry)
		}
	}
}

func (l *Loader) addEntry(ctx context.Context, set Set, statsURL, team string, aliases []string, e entry) {
	item, err := l.buildOverride(ctx, strings.TrimSpace(statsURL), strings.TrimSpace(team), aliases, e)
	if err != nil {
		l.logger.WarnContext(ctx, "skip invalid override entry", "stats_url", statsURL, "team", team, "error", err)
		return
	}
	set[strings.TrimSpace(statsURL)] = append(set[strings.TrimSpace(statsURL)], item)
}

func (l *Loader) buildOverride(ctx context.Context, statsURL, team string, aliases []string, e entry) (matchstats.Override, error) {
	serve, reception, attack, block := e.Serve, e.Reception, e.Attack, e.Block
	if serve == nil || reception == nil || attack == nil || block == nil {
		return matchstats.Override{}, crerr.New("serve, reception, attack and block are required")
	}

	input := teamTotalsInput{
		StatsURL:           statsURL,
		TeamName:           team,
		ServesAttempts:     serve.Attempts.Ptr(),
		ServesErrors:       serve.Errors.Ptr(),
		ServesPoints:       serve.Points.Ptr(),
		ReceptionsAttempts: reception.Attempts.Ptr(),
		ReceptionsErrors:   reception.Errors.Ptr(),
		AttacksAttempts:    attack.Attempts.Ptr(),
		AttacksErrors:      attack.Errors.Ptr(),
		AttacksBlocked:     attack.Blocked.Ptr(),
		AttacksPoints:      attack.Points.Ptr(),
		BlocksPoints:       block.Points.Ptr(),
	}
	if err := l.validate.StructCtx(ctx, input); err != nil {
		return matchstats.Override{}, crerr.Wrap(err, "validate team totals")
	}

	metrics := matchstats.Metrics{
		ServesAttempts:        *input.ServesAttempts,
		ServesErrors:          *input.ServesErrors,
		ServesPoints:          *input.ServesPoints,
		ReceptionsAttempts:    *input.ReceptionsAttempts,
		ReceptionsErrors:      *input.ReceptionsErrors,
		ReceptionsPositivePct: reception.PositivePct.OrZero(),
		ReceptionsPerfectPct:  reception.PerfectPct.OrZero(),
		AttacksAttempts:       *input.AttacksAttempts,
		AttacksErrors:         *input.AttacksErrors,
		AttacksBlocked:        *input.AttacksBlocked,
		AttacksPoints:         *input.AttacksPoints,
		AttacksSuccessPct:     attack.SuccessPct.OrZero(),
		BlocksPoints:          *input.BlocksPoints,
	}.WithDerivedCounts()

	return matchstats.Override{
		Keys:     overrideKeys(team, aliases),
		TeamName: team,
		Metrics:  metrics,
		Players:  l.buildPlayers(ctx, statsURL, team, e.Players),
	}, nil
}

func (l *Loader) buildPlayers(ctx context.Context, statsURL, team string, raws []json.RawMessage) []matchstats.PlayerStats {
	players := make([]matchstats.PlayerStats, 0, len(raws))
	for i, raw := range raws {
		var p playerEntry
		if err := sonic.Unmarshal(raw, &p); err != nil {
			l.logger.WarnContext(ctx, "skip malformed override player", "stats_url", statsURL, "team", team, "index", i, "error", err)
			continue
		}

		m := p.Metrics
		input := playerInput{
			Name:               strings.Join(strings.Fields(p.Name), " "),
			ServesAttempts:     m.ServesAttempts.OrZero(),
			ServesErrors:       m.ServesErrors.OrZero(),
			ServesPoints:       m.ServesPoints.OrZero(),
			ReceptionsAttempts: m.ReceptionsAttempts.OrZero(),
			ReceptionsErrors:   m.ReceptionsErrors.OrZero(),
			AttacksAttempts:    m.AttacksAttempts.OrZero(),
			AttacksErrors:      m.AttacksErrors.OrZero(),
			AttacksBlocked:     m.AttacksBlocked.OrZero(),
			AttacksPoints:      m.AttacksPoints.OrZero(),
			BlocksPoints:       m.BlocksPoints.OrZero(),
		}
		if err := l.validate.StructCtx(ctx, input); err != nil {
			l.logger.WarnContext(ctx, "skip invalid override player", "stats_url", statsURL, "team", team, "index", i, "error", err)
			continue
		}

		breakPoints := p.BreakPoints.Ptr()
		if breakPoints == nil {
			breakPoints = m.BreakPoints.Ptr()
		}
		plusMinus := p.PlusMinus.Ptr()
		if plusMinus == nil {
			plusMinus = m.PlusMinus.Ptr()
		}

		players = append(players, matchstats.PlayerStats{
			TeamName:     team,
			PlayerName:   input.Name,
			JerseyNumber: p.JerseyNumber.Ptr(),
			TotalPoints:  p.TotalPoints.Ptr(),
			BreakPoints:  breakPoints,
			PlusMinus:    plusMinus,
			Metrics: matchstats.Metrics{
				ServesAttempts:        input.ServesAttempts,
				ServesErrors:          input.ServesErrors,
				ServesPoints:          input.ServesPoints,
				ReceptionsAttempts:    input.ReceptionsAttempts,
				ReceptionsErrors:      input.ReceptionsErrors,
				ReceptionsPositivePct: m.ReceptionsPositivePct.OrZero(),
				ReceptionsPerfectPct:  m.ReceptionsPerfectPct.OrZero(),
				AttacksAttempts:       input.AttacksAttempts,
				AttacksErrors:         input.AttacksErrors,
				AttacksBlocked:        input.AttacksBlocked,
				AttacksPoints:         input.AttacksPoints,
				AttacksSuccessPct:     m.AttacksSuccessPct.OrZero(),
				BlocksPoints:          input.BlocksPoints,
			}.WithDerivedCounts(),
		})
	}
	return players
}

func overrideKeys(team string, aliases []string) []string {
	keys := []string{textnorm.NormalizeName(team)}
	for _, alias := range aliases {
		key := textnorm.NormalizeName(alias)
		if key == "" {
			continue
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys
}
