package service

import (
	"strings"
	"unicode/utf8"
)

// Persian function words carrying no matching signal.
var stopWords = map[string]struct{}{
	"و": {}, "در": {}, "با": {}, "به": {}, "از": {}, "برای": {},
	"که": {}, "این": {}, "آن": {}, "تا": {}, "را": {}, "های": {},
}

// MeaningfulWords splits a title into its deduplicated meaningful tokens:
// normalized, at least two characters, not a stop word. Input order is kept.
func MeaningfulWords(title string) []string {
	fields := strings.Fields(Normalize(title))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// wordOverlap counts the words of a that also occur in b.
func wordOverlap(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, w := range b {
		set[w] = struct{}{}
	}
	n := 0
	for _, w := range a {
		if _, ok := set[w]; ok {
			n++
		}
	}
	return n
}
