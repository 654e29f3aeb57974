package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugSeparators = strings.NewReplacer(" ", "-", ",", "-")
	slugDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\x{0600}-\x{06FF}\-]`)
	slugDashRuns   = regexp.MustCompile(`-+`)
)

// BaseSlug derives a URL-safe identifier from a display name. Falls back to
// a timestamped placeholder when nothing survives the stripping.
func BaseSlug(name string) string {
	s := Normalize(name)
	s = slugSeparators.Replace(s)
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugDashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fmt.Sprintf("category-%d", time.Now().Unix())
	}
	return s
}

// UniqueSlug derives the base slug for name and appends -1, -2, … until
// exists reports the candidate free. The check-then-create sequence is not
// atomic; concurrent creators are handled at the store level via the
// uniqueness constraint (see Resolver).
func UniqueSlug(name string, exists func(string) (bool, error)) (string, error) {
	base := BaseSlug(name)
	slug := base
	for n := 1; ; n++ {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}
