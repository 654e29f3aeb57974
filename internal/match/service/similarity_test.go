package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdentity(t *testing.T) {
	for _, s := range []string{"hello world", "گوشی موبایل سامسونگ", "x"} {
		assert.Equal(t, 100.0, Score(s, s), "input %q", s)
	}
}

func TestScoreSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"hello world", "world hello"},
		{"abcd", "ab"},
		{"کیف چرم", "کیف چرمی"},
		{"", "abc"},
	}
	for _, p := range pairs {
		assert.Equal(t, Score(p[0], p[1]), Score(p[1], p[0]), "pair %v", p)
	}
}

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"hello world", "world hello"},
		{"abcd", "wxyz"},
		{"a", "a"},
		{"", ""},
		{"long common prefix here", "long common prefix there"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}

func TestScoreDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Score("abcd", "wxyz"))
	assert.Equal(t, 0.0, Score("", ""))
	assert.Equal(t, 0.0, Score("", "abc"))
}

func TestScoreCharacterSimilarity(t *testing.T) {
	// longest common substring "ab", no shared words
	assert.InDelta(t, 66.67, Score("abcd", "ab"), 0.01)
}

func TestScoreWordBonusOnReorderedWords(t *testing.T) {
	// character alignment finds only "hello"; both words shared gives +10
	assert.InDelta(t, 55.45, Score("hello world", "world hello"), 0.01)
}

func TestScoreRanksCloserTitlesHigher(t *testing.T) {
	base := "گوشی موبایل سامسونگ"
	near := "گوشی موبایل سامسونک"
	far := "یخچال فریزر دوقلو"
	assert.Greater(t, Score(base, near), Score(base, far))
}
