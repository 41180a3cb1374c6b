package boxscore

import (
	"regexp"
	"strconv"
	"strings"
)

// Positions of the compact value run, in report column order.
const (
	idxTotalPoints = iota
	idxBreakPoints
	idxPlusMinus
	idxServesAttempts
	idxServesErrors
	idxServesPoints
	idxReceptionsAttempts
	idxReceptionsErrors
	idxReceptionsPositivePct
	idxReceptionsPerfectPct
	idxAttacksAttempts
	idxAttacksErrors
	idxAttacksBlocked
	idxAttacksPoints
	idxAttacksSuccessPct
	idxBlocksPoints

	// TokenCount is the width of a compact statistics run.
	TokenCount
)

// MinTokens is the smallest trailing value run still treated as a stats line.
const MinTokens = 3

// MissingToken marks a value the report left empty.
const MissingToken = "."

var (
	compactValuePattern = regexp.MustCompile(`^(?:[+-]?\d+(?:[.,]\d+)?%?|\.)$`)
	signedValuePattern  = regexp.MustCompile(`^\d+(?:[.,]\d+)?%?$`)
	singleDigitPattern  = regexp.MustCompile(`^\d$`)
	parenPattern        = regexp.MustCompile(`[()]+`)

	sanitizeReplacer = strings.NewReplacer(
		"\u00a0", " ",
		"\u00b7", " ",
		"\u2212", "-",
		"\u2013", "-",
	)
)

// TokenRun is the result of scanning a line for its trailing value run.
type TokenRun struct {
	// Tokens always holds TokenCount entries; missing trailing values are
	// padded with MissingToken.
	Tokens []string
	// Found is the number of real values taken from the line.
	Found int
	// Prefix holds the parts before the value run, usually the player name.
	Prefix []string
}

// Tokenize splits a statistics fragment into parts. Lone signs are joined to the
// following number and percentages split character by character are rejoined.
func Tokenize(text string) []string {
	sanitized := sanitizeReplacer.Replace(text)
	sanitized = parenPattern.ReplaceAllString(sanitized, " ")

	raw := strings.Fields(sanitized)
	parts := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		part := raw[i]
		if part == "*" {
			continue
		}
		if (part == "+" || part == "-") && i+1 < len(raw) && signedValuePattern.MatchString(raw[i+1]) {
			parts = append(parts, part+raw[i+1])
			i++
			continue
		}
		if part == "%" {
			parts = rejoinSplitPercent(parts)
			continue
		}
		parts = append(parts, part)
	}

	return parts
}

// rejoinSplitPercent merges the single digits in front of a lone "%" into one
// percentage. The longest run of at most three digits that stays within 100
// wins; a lone "%" with no digits in front is dropped.
func rejoinSplitPercent(parts []string) []string {
	run := 0
	for i := len(parts) - 1; i >= 0 && run < 3; i-- {
		if !singleDigitPattern.MatchString(parts[i]) {
			break
		}
		run++
	}

	for size := run; size >= 1; size-- {
		digits := strings.Join(parts[len(parts)-size:], "")
		value, err := strconv.Atoi(digits)
		if err != nil || value > 100 {
			continue
		}
		out := parts[:len(parts)-size]
		return append(out, strconv.Itoa(value)+"%")
	}

	return parts
}

// ExtractTokens walks parts from the end and collects the trailing value run.
// It reports false when fewer than MinTokens values trail the line.
func ExtractTokens(parts []string) (TokenRun, bool) {
	values := make([]string, 0, TokenCount)
	for i := len(parts) - 1; i >= 0; i-- {
		token := strings.TrimSpace(parts[i])
		if !compactValuePattern.MatchString(token) {
			break
		}
		values = append(values, token)
		if len(values) == TokenCount {
			break
		}
	}
	if len(values) < MinTokens {
		return TokenRun{}, false
	}

	found := len(values)
	tokens := make([]string, TokenCount)
	for i := range values {
		tokens[i] = values[found-1-i]
	}
	for i := found; i < TokenCount; i++ {
		tokens[i] = MissingToken
	}

	return TokenRun{
		Tokens: tokens,
		Found:  found,
		Prefix: append([]string(nil), parts[:len(parts)-found]...),
	}, true
}

// ParseIntToken reads a count; placeholders and garbage read as 0.
func ParseIntToken(token string) int {
	value, ok := parseOptionalIntToken(token)
	if !ok {
		return 0
	}
	return value
}

func parseOptionalIntToken(token string) (int, bool) {
	stripped := strings.TrimSpace(strings.ReplaceAll(token, " ", ""))
	if stripped == "" || stripped == "-" || stripped == "\u2013" {
		return 0, false
	}
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(stripped)
	if cleaned == "" {
		return 0, true
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParsePercentToken normalizes a percentage token to "<int>%".
func ParsePercentToken(token string) string {
	stripped := strings.TrimSpace(strings.ReplaceAll(token, " ", ""))
	if stripped == "" || stripped == "-" || stripped == "\u2013" {
		return "0%"
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(stripped, "%", ""), ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return "0%"
	}
	return strconv.Itoa(roundHalfEven(value)) + "%"
}
