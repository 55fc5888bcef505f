package jdelta

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// stringSimilarity returns 1 - d/L where d is the Levenshtein distance
// between a and b in runes and L the rune length of the longer string.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if la == 0 || lb == 0 {
		return 0
	}
	d := max(editDistance(a, b), 1) // invalid UTF-8 can collapse distinct bytes
	return 1 - float64(min(d, longest))/float64(longest)
}

func editDistance(a, b string) int {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // no deadline: results must not depend on wall clock
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffLevenshtein(diffs)
}
