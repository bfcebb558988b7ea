package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"black wallet", "black leather wallet"},
		{"iphone 13 pro", "samsung galaxy"},
		{"blue umbrella left on bus", "umbrella blue"},
		{"", "anything"},
		{"short", "short"},
	}

	for _, pair := range pairs {
		assert.InDelta(t, Similarity(pair[0], pair[1]), Similarity(pair[1], pair[0]), 1e-9, "%q vs %q", pair[0], pair[1])
	}
}

func TestSimilarityStaysInRange(t *testing.T) {
	pairs := [][2]string{
		{"abc", "abc"},
		{"ab", "abab"}, // substring bonus on near-identical short strings
		{"black wallet", "black wallet"},
		{"x", "y"},
		{"", ""},
	}

	for _, pair := range pairs {
		score := Similarity(pair[0], pair[1])
		assert.GreaterOrEqual(t, score, 0.0, "%q vs %q", pair[0], pair[1])
		assert.LessOrEqual(t, score, 1.0, "%q vs %q", pair[0], pair[1])
	}
}

func TestSimilarityIdenticalTextScoresOne(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("black leather wallet", "black leather wallet"), 1e-9)
}

func TestSimilarityEmptyInputIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarityNormalizesCaseAndWhitespace(t *testing.T) {
	assert.InDelta(t,
		Similarity("Black   Wallet", "black wallet"),
		Similarity("black wallet", "black wallet"),
		1e-9)
}

func TestSimilarityIgnoresShortTokensInWordComponent(t *testing.T) {
	// "on", "in", "a" contribute nothing to the word sets.
	withNoise := Similarity("wallet on a bench", "wallet in a park")
	plain := Similarity("wallet bench", "wallet park")
	assert.InDelta(t, withNoise, plain, 0.15)
}

func TestSimilarityRelatedTextScoresHigherThanUnrelated(t *testing.T) {
	related := Similarity("black wallet", "black leather wallet")
	unrelated := Similarity("black wallet", "orange tabby cat")

	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.5)
}

func TestSimilaritySubstringBonusApplies(t *testing.T) {
	// Same character set either way; containment is what differs.
	contained := Similarity("abc", "abcabc")
	assert.Greater(t, contained, Similarity("abc", "bca"))
}
