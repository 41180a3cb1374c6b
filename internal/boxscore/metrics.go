package boxscore

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
)

// Default limits for splitting a glued pair of numbers.
const (
	DefaultServeErrorsMax   = 60
	DefaultServePointsMax   = 60
	DefaultAttackBlockedMax = 40
	DefaultAttackPointsMax  = 150
)

// GlueBounds caps both halves of a glued number, "1914" or "852", when it is
// split back into two values.
type GlueBounds struct {
	ServeErrorsMax   int
	ServePointsMax   int
	AttackBlockedMax int
	AttackPointsMax  int
}

func DefaultGlueBounds() GlueBounds {
	return GlueBounds{
		ServeErrorsMax:   DefaultServeErrorsMax,
		ServePointsMax:   DefaultServePointsMax,
		AttackBlockedMax: DefaultAttackBlockedMax,
		AttackPointsMax:  DefaultAttackPointsMax,
	}
}

func (b GlueBounds) orDefault() GlueBounds {
	def := DefaultGlueBounds()
	if b.ServeErrorsMax <= 0 {
		b.ServeErrorsMax = def.ServeErrorsMax
	}
	if b.ServePointsMax <= 0 {
		b.ServePointsMax = def.ServePointsMax
	}
	if b.AttackBlockedMax <= 0 {
		b.AttackBlockedMax = def.AttackBlockedMax
	}
	if b.AttackPointsMax <= 0 {
		b.AttackPointsMax = def.AttackPointsMax
	}
	return b
}

// SplitGlued splits a run of digits into two values. The right half takes one
// to three digits, shortest first, and an empty left half reads as 0. It
// reports false when no split stays within the bounds.
func SplitGlued(value string, firstMax, secondMax int) (int, int, bool) {
	digits := nonDigitPattern.ReplaceAllString(value, "")
	if digits == "" {
		return 0, 0, false
	}

	for secondLen := 1; secondLen <= min(3, len(digits)); secondLen++ {
		cut := len(digits) - secondLen
		first := 0
		if cut > 0 {
			parsed, err := strconv.Atoi(digits[:cut])
			if err != nil {
				continue
			}
			first = parsed
		}
		second, err := strconv.Atoi(digits[cut:])
		if err != nil {
			continue
		}
		if first <= firstMax && second <= secondMax {
			return first, second, true
		}
	}

	return 0, 0, false
}

// MetricsFromTokens maps a TokenCount-wide run to Metrics.
func MetricsFromTokens(tokens []string) matchstats.Metrics {
	get := func(i int) string {
		if i < len(tokens) {
			return tokens[i]
		}
		return MissingToken
	}

	metrics := matchstats.Metrics{
		ServesAttempts:        ParseIntToken(get(idxServesAttempts)),
		ServesErrors:          ParseIntToken(get(idxServesErrors)),
		ServesPoints:          ParseIntToken(get(idxServesPoints)),
		ReceptionsAttempts:    ParseIntToken(get(idxReceptionsAttempts)),
		ReceptionsErrors:      ParseIntToken(get(idxReceptionsErrors)),
		ReceptionsPositivePct: ParsePercentToken(get(idxReceptionsPositivePct)),
		ReceptionsPerfectPct:  ParsePercentToken(get(idxReceptionsPerfectPct)),
		AttacksAttempts:       ParseIntToken(get(idxAttacksAttempts)),
		AttacksErrors:         ParseIntToken(get(idxAttacksErrors)),
		AttacksBlocked:        ParseIntToken(get(idxAttacksBlocked)),
		AttacksPoints:         ParseIntToken(get(idxAttacksPoints)),
		AttacksSuccessPct:     ParsePercentToken(get(idxAttacksSuccessPct)),
		BlocksPoints:          ParseIntToken(get(idxBlocksPoints)),
	}
	return metrics.WithDerivedCounts()
}

var (
	labelPattern         = regexp.MustCompile(`(?i)\b(aufschlag|serve|annahme|reception|angriff|attack|block|punkte|points)\b`)
	labelNumberPattern   = regexp.MustCompile(`[+-]?\d+(?:[.,]\d+)?%?`)
	gluedTokenPattern    = regexp.MustCompile(`\d+%|\d+\+\d+|\d+`)
	gluedPlusMinusTail   = regexp.MustCompile(`^\d+\+\d$`)
	allDigitsPattern     = regexp.MustCompile(`^\d+$`)
	nonDigitPattern      = regexp.MustCompile(`\D+`)
	dashSpacePattern     = regexp.MustCompile(`-\s+`)
	openParenPattern     = regexp.MustCompile(`\(\s*`)
	closeParenPattern    = regexp.MustCompile(`\s*\)`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
	plusMinusGluePattern = regexp.MustCompile(`\d+\+\d{3,}`)
	percentParenPattern  = regexp.MustCompile(`%\(`)
	percentDigitPattern  = regexp.MustCompile(`%(\d)`)
)

// NormalizeTotalsLine undoes the spacing damage PDF extraction does to a totals
// row. It is idempotent.
func NormalizeTotalsLine(line string) string {
	normalized := sanitizeReplacer.Replace(line)
	normalized = dashSpacePattern.ReplaceAllString(normalized, "-")
	normalized = openParenPattern.ReplaceAllString(normalized, "(")
	normalized = closeParenPattern.ReplaceAllString(normalized, ")")
	normalized = strings.TrimSpace(whitespacePattern.ReplaceAllString(normalized, " "))
	normalized = plusMinusGluePattern.ReplaceAllStringFunc(normalized, splitPlusMinusGlue)
	normalized = percentParenPattern.ReplaceAllString(normalized, "% (")
	normalized = percentDigitPattern.ReplaceAllString(normalized, "% $1")
	return normalized
}

// splitPlusMinusGlue separates a plus/minus value from the serve attempts
// glued to it: "33+23105" becomes "33+23 105".
func splitPlusMinusGlue(token string) string {
	plus := strings.IndexByte(token, '+')
	tail := token[plus+1:]
	return token[:plus+1] + tail[:2] + " " + tail[2:]
}

// ParseTotalsMetrics reads team metrics from a totals row. The labeled layout
// is tried first, then the compact 16-value layout, then the glued layout.
func (p *Parser) ParseTotalsMetrics(line string) (matchstats.Metrics, bool) {
	normalized := NormalizeTotalsLine(line)
	if normalized == "" {
		return matchstats.Metrics{}, false
	}

	if metrics, ok := p.parseLabeledTotals(normalized); ok {
		return metrics, true
	}
	if metrics, ok := parseCompactTotals(normalized); ok {
		return metrics, true
	}
	return p.parseGluedTotals(normalized)
}

// ResolveMetrics returns the metrics carried by totals, parsing its totals line
// when none were supplied. It returns nil when nothing can be resolved.
func (p *Parser) ResolveMetrics(totals matchstats.Totals) *matchstats.Metrics {
	if totals.Metrics != nil {
		resolved := *totals.Metrics
		return &resolved
	}
	if strings.TrimSpace(totals.TotalsLine) == "" {
		return nil
	}
	metrics, ok := p.ParseTotalsMetrics(totals.TotalsLine)
	if !ok {
		return nil
	}
	return &metrics
}

func (p *Parser) parseLabeledTotals(line string) (matchstats.Metrics, bool) {
	locations := labelPattern.FindAllStringSubmatchIndex(line, -1)
	if len(locations) == 0 {
		return matchstats.Metrics{}, false
	}

	sections := make(map[string][]string, len(locations))
	for i, loc := range locations {
		label := canonicalLabel(line[loc[2]:loc[3]])
		end := len(line)
		if i+1 < len(locations) {
			end = locations[i+1][0]
		}
		sections[label] = labelNumberPattern.FindAllString(line[loc[1]:end], -1)
	}

	serve, hasServe := sections["serve"]
	reception, hasReception := sections["reception"]
	attack, hasAttack := sections["attack"]
	block, hasBlock := sections["block"]
	if !hasServe || !hasReception || !hasAttack || !hasBlock {
		return matchstats.Metrics{}, false
	}

	metrics := matchstats.Metrics{}
	switch len(serve) {
	case 3:
		metrics.ServesAttempts = ParseIntToken(serve[0])
		metrics.ServesErrors = ParseIntToken(serve[1])
		metrics.ServesPoints = ParseIntToken(serve[2])
	case 2:
		metrics.ServesAttempts = ParseIntToken(serve[0])
		serveErrors, servePoints, ok := SplitGlued(serve[1], p.bounds.ServeErrorsMax, p.bounds.ServePointsMax)
		if !ok {
			return matchstats.Metrics{}, false
		}
		metrics.ServesErrors, metrics.ServesPoints = serveErrors, servePoints
	default:
		return matchstats.Metrics{}, false
	}

	if len(reception) != 4 {
		return matchstats.Metrics{}, false
	}
	metrics.ReceptionsAttempts = ParseIntToken(reception[0])
	metrics.ReceptionsErrors = ParseIntToken(reception[1])
	metrics.ReceptionsPositivePct = ParsePercentToken(reception[2])
	metrics.ReceptionsPerfectPct = ParsePercentToken(reception[3])

	switch len(attack) {
	case 5:
		metrics.AttacksAttempts = ParseIntToken(attack[0])
		metrics.AttacksErrors = ParseIntToken(attack[1])
		metrics.AttacksBlocked = ParseIntToken(attack[2])
		metrics.AttacksPoints = ParseIntToken(attack[3])
		metrics.AttacksSuccessPct = ParsePercentToken(attack[4])
	case 4:
		metrics.AttacksAttempts = ParseIntToken(attack[0])
		metrics.AttacksErrors = ParseIntToken(attack[1])
		blocked, points, ok := SplitGlued(attack[2], p.bounds.AttackBlockedMax, p.bounds.AttackPointsMax)
		if !ok {
			return matchstats.Metrics{}, false
		}
		metrics.AttacksBlocked, metrics.AttacksPoints = blocked, points
		metrics.AttacksSuccessPct = ParsePercentToken(attack[3])
	default:
		return matchstats.Metrics{}, false
	}

	if len(block) == 0 {
		return matchstats.Metrics{}, false
	}
	metrics.BlocksPoints = ParseIntToken(block[0])

	return metrics.WithDerivedCounts(), true
}

func canonicalLabel(label string) string {
	switch strings.ToLower(label) {
	case "aufschlag", "serve":
		return "serve"
	case "annahme", "reception":
		return "reception"
	case "angriff", "attack":
		return "attack"
	case "block":
		return "block"
	default:
		return "points"
	}
}

func parseCompactTotals(line string) (matchstats.Metrics, bool) {
	withoutLabels := labelPattern.ReplaceAllString(line, " ")
	run, ok := ExtractTokens(Tokenize(withoutLabels))
	if !ok || run.Found != TokenCount {
		return matchstats.Metrics{}, false
	}
	return MetricsFromTokens(run.Tokens), true
}

// parseGluedTotals handles rows where neighbouring columns lost their spacing:
//
//	75 33+23 105 1914 88 15 30% (15%) 132 10 852 39% 9
func (p *Parser) parseGluedTotals(line string) (matchstats.Metrics, bool) {
	tokens := gluedTokenPattern.FindAllString(line, -1)
	if len(tokens) > 13 && gluedPlusMinusTail.MatchString(tokens[1]) && allDigitsPattern.MatchString(tokens[2]) {
		merged := append([]string{tokens[0], tokens[1] + tokens[2]}, tokens[3:]...)
		tokens = merged
	}
	if len(tokens) < 13 || !strings.Contains(tokens[1], "+") {
		return matchstats.Metrics{}, false
	}

	serveErrors, servePoints, ok := SplitGlued(tokens[3], p.bounds.ServeErrorsMax, p.bounds.ServePointsMax)
	if !ok {
		return matchstats.Metrics{}, false
	}
	attackBlocked, attackPoints, ok := SplitGlued(tokens[10], p.bounds.AttackBlockedMax, p.bounds.AttackPointsMax)
	if !ok {
		return matchstats.Metrics{}, false
	}

	metrics := matchstats.Metrics{
		ServesAttempts:        ParseIntToken(tokens[2]),
		ServesErrors:          serveErrors,
		ServesPoints:          servePoints,
		ReceptionsAttempts:    ParseIntToken(tokens[4]),
		ReceptionsErrors:      ParseIntToken(tokens[5]),
		ReceptionsPositivePct: ParsePercentToken(tokens[6]),
		ReceptionsPerfectPct:  ParsePercentToken(tokens[7]),
		AttacksAttempts:       ParseIntToken(tokens[8]),
		AttacksErrors:         ParseIntToken(tokens[9]),
		AttacksBlocked:        attackBlocked,
		AttacksPoints:         attackPoints,
		AttacksSuccessPct:     ParsePercentToken(tokens[11]),
		BlocksPoints:          ParseIntToken(tokens[12]),
	}
	return metrics.WithDerivedCounts(), true
}

func roundHalfEven(value float64) int {
	return int(math.RoundToEven(value))
}
