package util

import (
	"regexp"
	"strings"
)

// B3 tickers: a four-character root starting with a letter (PETR, B3SA),
// a one or two digit share class and an optional fractional-market F
// (PETR4, TAEE11, B3SA3, VALE3F).
var tickerRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{3}[0-9]{1,2}F?$`)

// IsTicker reports whether s is a well-formed B3 ticker after normalization.
func IsTicker(s string) bool {
	return tickerRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeSymbols upper-cases, trims and de-duplicates, keeping first-seen order.
// Blank entries are dropped.
func NormalizeSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// SplitSymbols parses a comma separated ticker list.
func SplitSymbols(s string) []string {
	return NormalizeSymbols(strings.Split(s, ","))
}
