package service

import (
	"regexp"
	"strings"
)

// Arabic-variant comma and decimal marks → one canonical comma.
var commaVariants = strings.NewReplacer("،", ",", "؍", ",", "٫", ",")

// Allowed after normalization: the Arabic/Persian block, its joining
// controls, Latin letters, digits, whitespace, comma, period, hyphen.
var disallowed = regexp.MustCompile(`[^\x{0600}-\x{06FF}\x{200C}\x{200D}a-zA-Z0-9\s,.\-]`)

// Normalize canonicalizes raw text for comparison: comma variants unified,
// the zero-width non-joiner turned into a plain space, lowercased, stripped
// to the allowed character set, whitespace collapsed. Pure and idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = commaVariants.Replace(s)
	s = strings.ReplaceAll(s, "‌", " ")
	s = strings.ToLower(s)
	s = disallowed.ReplaceAllString(s, "")
	// collapse last so stripped characters cannot leave double spaces
	return strings.Join(strings.Fields(s), " ")
}
