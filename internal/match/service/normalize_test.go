package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "سلام دنیا", Normalize("  سلام   دنیا  "))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalizeZeroWidthNonJoiner(t *testing.T) {
	assert.Equal(t, "گوشی موبایل", Normalize("گوشی‌موبایل"))
}

func TestNormalizeCommaVariants(t *testing.T) {
	assert.Equal(t, "الف, ب", Normalize("الف، ب"))
	assert.Equal(t, "۱,۵", Normalize("۱٫۵"))
}

func TestNormalizeLowercase(t *testing.T) {
	assert.Equal(t, "samsung galaxy", Normalize("Samsung GALAXY"))
}

func TestNormalizeStripsDisallowed(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("hello! @world#"))
	assert.Equal(t, "x-200 v1.2", Normalize("x-200 v1.2"))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  گوشی‌موبایل سامسونگ  ",
		"Product Alpha X200!",
		"الف، ب٫ ج",
		"a @ b",
		"",
		"کیف چرم زنانه",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
