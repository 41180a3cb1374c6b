package reconcile

import (
	"sort"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/mergedrow"
)

// rowKey identifies one player in one match. Kickoff only takes part when the
// record carries neither a match id nor a match number.
type rowKey struct {
	matchID     string
	matchNumber string
	kickoff     string
	team        string
	player      string
}

func keyOf(values map[string]string) rowKey {
	key := rowKey{
		matchID:     values[mergedrow.FieldMatchID],
		matchNumber: values[mergedrow.FieldMatchNumber],
		team:        strings.ToLower(values[mergedrow.FieldTeam]),
		player:      strings.ToLower(values[mergedrow.FieldPlayerName]),
	}
	if key.matchID == "" && key.matchNumber == "" {
		key.kickoff = values[mergedrow.FieldKickoff]
	}
	return key
}

type rowState struct {
	values     map[string]string
	priorities map[string]int
	sources    map[mergedrow.Source]struct{}
	bySource   map[string]map[mergedrow.Source]string
}

// Engine folds records from several sources into one row per player and
// match. A field takes the incoming value when it is still absent or when the
// incoming source has a strictly higher priority than the one that set it, so
// among sources of equal priority the first one added wins. Callers control
// precedence through the order of Add calls; the usual order is PDF, then CSV,
// then manual corrections.
//
// Engine is not safe for concurrent use.
type Engine struct {
	rows  map[rowKey]*rowState
	order []rowKey
}

func NewEngine() *Engine {
	return &Engine{rows: make(map[rowKey]*rowState)}
}

// Add folds one record into the engine.
func (e *Engine) Add(record mergedrow.Record) {
	priority := record.Source.Priority()
	key := keyOf(record.Values)

	state, ok := e.rows[key]
	if !ok {
		state = &rowState{
			values:     make(map[string]string, len(mergedrow.FieldOrder)),
			priorities: make(map[string]int, len(record.Values)),
			sources:    make(map[mergedrow.Source]struct{}, 2),
			bySource:   make(map[string]map[mergedrow.Source]string, len(record.Values)),
		}
		e.rows[key] = state
		e.order = append(e.order, key)
	}
	state.sources[record.Source] = struct{}{}

	for field, value := range record.Values {
		if field == mergedrow.FieldDataSources {
			continue
		}
		perSource, ok := state.bySource[field]
		if !ok {
			perSource = make(map[mergedrow.Source]string, 2)
			state.bySource[field] = perSource
		}
		perSource[record.Source] = value

		_, present := state.values[field]
		if !present || priority > state.priorities[field] {
			state.values[field] = value
			state.priorities[field] = priority
		}
	}
}

// AddAll folds records in slice order.
func (e *Engine) AddAll(records []mergedrow.Record) {
	for _, record := range records {
		e.Add(record)
	}
}

// Len returns the number of distinct rows folded so far.
func (e *Engine) Len() int {
	return len(e.order)
}

// Rows emits the merged rows sorted by kickoff, match number, team and player
// name. Missing sort keys sort first.
func (e *Engine) Rows() []mergedrow.Row {
	rows := make([]mergedrow.Row, 0, len(e.order))
	for _, key := range e.order {
		state := e.rows[key]
		values := make(map[string]string, len(state.values)+4)
		for field, value := range state.values {
			values[field] = value
		}
		values[mergedrow.FieldDataSources] = formatDataSources(state)
		values[mergedrow.FieldKickoffComparison] = formatComparison(state, mergedrow.FieldKickoff, FormatKickoffDate)
		values[mergedrow.FieldHostComparison] = formatComparison(state, mergedrow.FieldHost, nil)
		values[mergedrow.FieldOpponentComparison] = formatComparison(state, mergedrow.FieldOpponent, nil)
		rows = append(rows, mergedrow.Row{Values: values})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		for _, field := range []string{
			mergedrow.FieldKickoff,
			mergedrow.FieldMatchNumber,
			mergedrow.FieldTeam,
			mergedrow.FieldPlayerName,
		} {
			if a.Get(field) != b.Get(field) {
				return a.Get(field) < b.Get(field)
			}
		}
		return false
	})

	return rows
}

func formatDataSources(state *rowState) string {
	names := make([]string, 0, len(state.sources)+1)
	for source := range state.sources {
		names = append(names, string(source))
	}
	sort.Strings(names)
	if sourcesAgree(state) {
		names = append(names, "match")
	}
	return strings.Join(names, ";")
}

// sourcesAgree reports whether PDF and CSV both contributed and every field
// they both supplied carries the same value.
func sourcesAgree(state *rowState) bool {
	if _, ok := state.sources[mergedrow.SourceCSV]; !ok {
		return false
	}
	if _, ok := state.sources[mergedrow.SourcePDF]; !ok {
		return false
	}

	shared := false
	for _, perSource := range state.bySource {
		csvValue, hasCSV := perSource[mergedrow.SourceCSV]
		pdfValue, hasPDF := perSource[mergedrow.SourcePDF]
		if !hasCSV || !hasPDF {
			continue
		}
		shared = true
		if csvValue != pdfValue {
			return false
		}
	}
	return shared
}
