package usecase

import (
	"math"
	"strings"
)

// Similarity blends word-level and character-level overlap between two free
// texts into a score in [0, 1]. It is symmetric and has no state, so it is
// safe to call concurrently.
//
// The character component carries a +0.2 bonus when one text contains the
// other, which can push it past 1.0 on near-identical short strings; the
// component is capped at 1.2 and the final blend is clamped to 1.0 so
// downstream point conversion stays in range.
func Similarity(a, b string) float64 {
	a = normalizeText(a)
	b = normalizeText(b)

	blended := 0.7*wordSimilarity(a, b) + 0.3*charSimilarity(a, b)
	return math.Min(blended, 1.0)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// wordSimilarity is the Jaccard index over word sets, ignoring tokens of
// length 2 or less.
func wordSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		if len(word) > 2 {
			set[word] = true
		}
	}
	return set
}

// charSimilarity is the Jaccard index over character sets with whitespace
// stripped, plus a flat 0.2 bonus when one string contains the other.
// Capped at 1.2; the blend in Similarity brings the result back to [0, 1].
func charSimilarity(a, b string) float64 {
	strippedA := strings.ReplaceAll(a, " ", "")
	strippedB := strings.ReplaceAll(b, " ", "")

	setA := charSet(strippedA)
	setB := charSet(strippedB)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for ch := range setA {
		if setB[ch] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	var sim float64
	if union > 0 {
		sim = float64(intersection) / float64(union)
	}

	if strippedA != "" && strippedB != "" &&
		(strings.Contains(strippedA, strippedB) || strings.Contains(strippedB, strippedA)) {
		sim += 0.2
	}

	return math.Min(sim, 1.2)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool)
	for _, ch := range s {
		set[ch] = true
	}
	return set
}
