package search

import (
	"strings"
	"unicode"
)

// Name-channel strategy caps. Each strategy's output is bounded so a
// weaker kind of evidence can never outrank a stronger one: exact beats
// substring beats single-token beats token-set beats raw character
// overlap.
const (
	substringBoost = 1.3
	substringCap   = 0.95
	tokenCap       = 0.9
	tokenSetCap    = 0.8
	charFuzzyCap   = 0.6

	prefixBonusPerChar = 0.05
	prefixBonusChars   = 4
)

// nameSimilarity scores a query string against a record's name-like value
// in [0,1]. Both inputs must be lower-cased and trimmed. The best of five
// strategies wins.
func nameSimilarity(query, value string) float64 {
	if query == "" || value == "" {
		return 0
	}
	if query == value {
		return 1
	}

	best := 0.0

	// Substring containment in either direction, scaled by relative
	// length so "sydney" inside "hmas sydney" scores high but "s" inside
	// anything does not.
	if strings.Contains(value, query) || strings.Contains(query, value) {
		if s := containmentScore(query, value, substringCap); s > best {
			best = s
		}
	}

	// Best single token of the record's value against the whole query.
	for _, token := range nameTokens(value) {
		raw := charRatio(query, token)
		if strings.Contains(token, query) || strings.Contains(query, token) {
			if c := containmentScore(query, token, 1); c > raw {
				raw = c
			}
		}
		if s := raw * tokenCap; s > best {
			best = s
		}
	}

	// Token-set overlap for multi-word queries.
	if s := tokenSetScore(query, value); s > best {
		best = s
	}

	// Whole-string character overlap as the weakest fallback.
	if s := charRatio(query, value) * charFuzzyCap; s > best {
		best = s
	}
	return best
}

// containmentScore rates one string contained in the other by relative
// length, boosted and capped.
func containmentScore(a, b string, limit float64) float64 {
	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	short, long := la, lb
	if short > long {
		short, long = long, short
	}
	s := short / long * substringBoost
	if s > limit {
		s = limit
	}
	return s
}

// tokenSetScore is the shared-token ratio of the two strings.
func tokenSetScore(a, b string) float64 {
	ta, tb := nameTokens(a), nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	common := 0
	seen := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			common++
		}
	}
	max := len(set)
	if len(seen) > max {
		max = len(seen)
	}
	return float64(common) / float64(max) * tokenSetCap
}

// charRatio is a bag-of-characters similarity: twice the number of
// shared characters over the total length, each character of the longer
// string consumed at most once, plus a bonus for a shared leading prefix.
// Result is in [0,1].
func charRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}

	avail := make(map[rune]int, len(long))
	for _, r := range long {
		avail[r]++
	}
	matches := 0
	for _, r := range short {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	score := 2 * float64(matches) / float64(len(ra)+len(rb))

	prefix := 0
	for prefix < len(short) && prefix < prefixBonusChars && ra[prefix] == rb[prefix] {
		prefix++
	}
	score += prefixBonusPerChar * float64(prefix)
	if score > 1 {
		score = 1
	}
	return score
}

// nameTokens splits a name on whitespace and punctuation, keeping
// single-character tokens (hull numbers can be that short).
func nameTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
