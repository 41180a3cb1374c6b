package reconcile

import (
	"sort"
	"strings"
	"time"
	_ "time/tzdata"
)

var berlin = loadBerlin()

func loadBerlin() *time.Location {
	location, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return location
}

// FormatKickoffDate renders an RFC 3339 kickoff as dd.mm.yyyy in Berlin time.
// Values that do not parse are returned trimmed.
func FormatKickoffDate(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	kickoff, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return text
	}
	return kickoff.In(berlin).Format("02.01.2006")
}

type comparisonItem struct {
	priority int
	label    string
	value    string
}

// formatComparison renders every source's value of field. Agreeing sources
// collapse to "PDF, CSV: value"; otherwise each source is listed as
// "Label: value", separated by " / ".
func formatComparison(state *rowState, field string, formatter func(string) string) string {
	format := func(value string) string {
		if formatter != nil {
			return formatter(value)
		}
		return strings.TrimSpace(value)
	}

	perSource := state.bySource[field]
	if len(perSource) == 0 {
		return format(state.values[field])
	}

	items := make([]comparisonItem, 0, len(perSource))
	for source, raw := range perSource {
		items = append(items, comparisonItem{
			priority: source.Priority(),
			label:    source.Label(),
			value:    format(raw),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].priority < items[j].priority
	})

	distinct := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.value != "" {
			distinct[item.value] = struct{}{}
		}
	}

	if len(distinct) == 1 {
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item.label
		}
		var shared string
		for value := range distinct {
			shared = value
		}
		return strings.Join(labels, ", ") + ": " + shared
	}

	parts := make([]string, len(items))
	for i, item := range items {
		if item.value == "" {
			parts[i] = item.label
			continue
		}
		parts[i] = item.label + ": " + item.value
	}
	return strings.Join(parts, " / ")
}
