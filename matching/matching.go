// Package matching implements the text matching policy shared by wake word
// detection and command dispatch. All functions are pure so the policy can be
// tested without any audio I/O.
package matching

import "strings"

// Normalize lowercases s and strips everything but letters, digits and
// single spaces. Recognition engines decorate output with punctuation and
// casing that must not affect matching.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Similarity scores how well candidate matches pattern, in [0,1].
// Exact normalized equality scores 1.0, whole-phrase containment 0.9, and
// anything else the fraction of pattern tokens present in the candidate
// scaled below containment. Scores are deterministic for a given input pair.
func Similarity(candidate, pattern string) float64 {
	c := Normalize(candidate)
	p := Normalize(pattern)
	if c == "" || p == "" {
		return 0
	}
	if c == p {
		return 1
	}
	if strings.Contains(" "+c+" ", " "+p+" ") {
		return 0.9
	}
	have := make(map[string]bool)
	for _, tok := range strings.Fields(c) {
		have[tok] = true
	}
	ptoks := strings.Fields(p)
	matched := 0
	for _, tok := range ptoks {
		if have[tok] {
			matched++
		}
	}
	return 0.8 * float64(matched) / float64(len(ptoks))
}

// Best returns the index of the pattern that best matches candidate and its
// score, or (-1, 0) when no pattern scores above zero. Exact matches beat
// fuzzy ones; ties are broken by registration order, first registered wins.
func Best(candidate string, patterns []string) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for i, p := range patterns {
		score := Similarity(candidate, p)
		if score == 1 {
			return i, score
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore
}
