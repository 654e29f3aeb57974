package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloatFa(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"۲", 2, true},
		{"۱۲٫۵", 12.5, true},
		{"٣", 3, true},
		{"1 234,5", 1234.5, true},
		{"  7  ", 7, true},
		{"", 0, false},
		{"-", 0, false},
		{"سطح", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFloatFa(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, "input %q", c.in)
		}
	}
}
