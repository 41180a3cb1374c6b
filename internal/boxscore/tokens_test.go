package boxscore

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "drops stars and parens",
			in:   "10 . 40% ( 20%) * 12",
			want: []string{"10", ".", "40%", "20%", "12"},
		},
		{
			name: "joins lone signs",
			in:   "9 + 10 1 - 5",
			want: []string{"9", "+10", "1", "-5"},
		},
		{
			name: "unicode minus",
			in:   "3 − 2",
			want: []string{"3", "-2"},
		},
		{
			name: "rejoins split percentages",
			in:   "6 . 3 1 % ( 6 % ) 1 5",
			want: []string{"6", ".", "31%", "6%", "1", "5"},
		},
		{
			name: "keeps leading digits outside the percentage",
			in:   "1 2 2 4 % ( 7 % ) 7",
			want: []string{"1", "2", "24%", "7%", "7"},
		},
		{
			name: "three digit percentage",
			in:   ". 1 0 0 %",
			want: []string{".", "100%"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Tokenize(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected tokens: got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestTokenize_SpacedOutPercentages(t *testing.T) {
	t.Parallel()

	got := Tokenize("Kuipers Jette 5 5 6 6 1 2 7 1 1 1 1 1 1 1 6 . 3 1 % ( 6 % ) 1 5 . . 6 4 0 % 5 1 0")
	joined := strings.Join(got, " ")
	if !strings.Contains(joined, ". 31% 6% 1 5") {
		t.Fatalf("expected rejoined 31%% and 6%%, got=%q", joined)
	}
	if !strings.Contains(joined, "6 40% 5 1 0") {
		t.Fatalf("expected 640 to split as 6 and 40%%, got=%q", joined)
	}
}

func TestExtractTokens(t *testing.T) {
	t.Parallel()

	run, ok := ExtractTokens(Tokenize("Jordan, Emilia 12 2 1 15 3 40% 20% 25 5 2 10 45% 3 18"))
	if !ok {
		t.Fatalf("expected value run")
	}
	if run.Found != 14 {
		t.Fatalf("unexpected found count: got=%d want=14", run.Found)
	}
	if len(run.Tokens) != TokenCount {
		t.Fatalf("unexpected token width: got=%d want=%d", len(run.Tokens), TokenCount)
	}
	if run.Tokens[0] != "12" || run.Tokens[13] != "18" || run.Tokens[14] != MissingToken || run.Tokens[15] != MissingToken {
		t.Fatalf("expected right padding, got=%q", run.Tokens)
	}
	if strings.Join(run.Prefix, " ") != "Jordan, Emilia" {
		t.Fatalf("unexpected prefix: got=%q", run.Prefix)
	}

	if _, ok := ExtractTokens(Tokenize("Weber Anna 3 4")); ok {
		t.Fatalf("expected short run to be rejected")
	}

	run, ok = ExtractTokens(Tokenize("Name 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17"))
	if !ok || run.Found != TokenCount {
		t.Fatalf("expected run capped at %d, got=%d", TokenCount, run.Found)
	}
	if strings.Join(run.Prefix, " ") != "Name 1" {
		t.Fatalf("unexpected prefix: got=%q", run.Prefix)
	}
}

func TestParseIntToken(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"12":  12,
		"+2":  2,
		"-5":  -5,
		".":   0,
		"-":   0,
		"":    0,
		"1.2": 12,
		"40%": 0,
		"abc": 0,
	}
	for in, want := range tests {
		if got := ParseIntToken(in); got != want {
			t.Fatalf("unexpected value for %q: got=%d want=%d", in, got, want)
		}
	}
}

func TestParsePercentToken(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"27%":   "27%",
		"27,5%": "28%",
		"26.5":  "26%",
		"-":     "0%",
		"":      "0%",
		"x%":    "0%",
	}
	for in, want := range tests {
		if got := ParsePercentToken(in); got != want {
			t.Fatalf("unexpected percent for %q: got=%s want=%s", in, got, want)
		}
	}
}
