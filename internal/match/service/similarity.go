package service

import "strings"

// Score computes a similarity percentage in [0,100] between two normalized
// strings: a character-level similar-text percentage plus a word-overlap
// bonus of up to 10, clamped at 100. Symmetric; 100 for identical non-empty
// inputs.
func Score(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	pct := float64(2*similarChars(ra, rb)) / float64(total) * 100
	pct += wordBonus(a, b)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// similarChars sums matched characters the similar-text way: take the
// longest common substring, then recurse on the pieces left and right of it.
func similarChars(a, b []rune) int {
	p1, p2, n := longestCommon(a, b)
	if n == 0 {
		return 0
	}
	return n + similarChars(a[:p1], b[:p2]) + similarChars(a[p1+n:], b[p2+n:])
}

// longestCommon returns the start positions and length of the first longest
// common substring of a and b.
func longestCommon(a, b []rune) (p1, p2, max int) {
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > max {
				p1, p2, max = i, j, k
			}
		}
	}
	return p1, p2, max
}

// wordBonus rewards shared tokens even when character alignment is poor,
// e.g. reordered word sequences.
func wordBonus(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	wa := wordSet(a)
	wb := wordSet(b)
	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}
	if common == 0 {
		return 0
	}
	denom := len(wa)
	if len(wb) > denom {
		denom = len(wb)
	}
	return float64(common) / float64(denom) * 10
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Split(s, " ") {
		set[w] = struct{}{}
	}
	return set
}
