package vectorstore

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFuzzyThreshold is the score below which a fuzzy match is rejected.
const DefaultFuzzyThreshold = 0.55

// normalizeName lowercases, strips diacritics and collapses whitespace so
// "García" and "garcia" compare equal.
func normalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// FuzzyScore scores how well candidate matches query as a patient name.
// 1.0 on exact (normalized) match, otherwise a weighted Jaccard over name
// tokens with bonuses for token-order agreement and completeness and a
// penalty for extra tokens in candidate.
func FuzzyScore(query, candidate string) float64 {
	nq := normalizeName(query)
	nc := normalizeName(candidate)
	if nq == nc {
		return 1.0
	}
	qTokens := strings.Fields(nq)
	cTokens := strings.Fields(nc)
	if len(qTokens) == 0 || len(cTokens) == 0 {
		return 0
	}

	qSet := make(map[string]bool, len(qTokens))
	for _, t := range qTokens {
		qSet[t] = true
	}
	cSet := make(map[string]bool, len(cTokens))
	for _, t := range cTokens {
		cSet[t] = true
	}

	intersection := 0
	for t := range qSet {
		if cSet[t] {
			intersection++
		}
	}
	union := len(qSet) + len(cSet) - intersection
	if union == 0 {
		return 0
	}
	jaccard := float64(intersection) / float64(union)

	orderBonus := 0.0
	if intersection > 1 && sameRelativeOrder(qTokens, cTokens) {
		orderBonus = 0.1
	}

	completeness := float64(intersection) / float64(len(qSet))
	completenessBonus := 0.1 * completeness

	extra := len(cSet) - intersection
	penalty := 0.0
	if extra > 0 {
		penalty = 0.05 * float64(extra)
	}

	score := jaccard + orderBonus + completenessBonus - penalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// sameRelativeOrder reports whether the tokens shared between a and b appear
// in the same relative order in both slices.
func sameRelativeOrder(a, b []string) bool {
	var aShared, bShared []string
	inB := make(map[string]bool, len(b))
	for _, t := range b {
		inB[t] = true
	}
	for _, t := range a {
		if inB[t] {
			aShared = append(aShared, t)
		}
	}
	inA := make(map[string]bool, len(a))
	for _, t := range a {
		inA[t] = true
	}
	for _, t := range b {
		if inA[t] {
			bShared = append(bShared, t)
		}
	}
	if len(aShared) != len(bShared) {
		return false
	}
	for i := range aShared {
		if aShared[i] != bShared[i] {
			return false
		}
	}
	return true
}
