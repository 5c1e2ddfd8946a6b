package search

import (
	"strings"
)

// Similarity computes a trigram overlap ratio between two strings in [0, 1],
// compatible with the scoring the registry's legacy database functions
// produced: each word is padded with two leading and one trailing blank, the
// distinct trigrams of both sides are collected, and the score is the size of
// the intersection over the size of the union. Exact equality of two
// non-empty strings scores 1.0, and the comparison is symmetric.
func Similarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for t := range ta {
		if tb[t] {
			shared++
		}
	}

	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// trigrams returns the distinct padded trigrams of every word in s.
func trigrams(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		padded := "  " + word + " "
		for i := 0; i+3 <= len(padded); i++ {
			set[padded[i:i+3]] = true
		}
	}
	return set
}
