package nameproc

import (
	"strings"
	"unicode"
)

// noCaps is the list of short connector words that stay lower-case
// wherever they appear, a name's first word included. Borrowed from common U.S.
// road-atlas style guides rather than any single source.
var noCaps = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true,
	"de": true, "del": true, "des": true, "for": true, "in": true,
	"la": true, "las": true, "los": true, "n": true, "nd": true,
	"near": true, "o": true, "on": true, "of": true, "our": true,
	"rd": true, "s": true, "st": true, "t": true, "th": true,
	"the": true, "to": true, "via": true, "with": true, "y": true,
}

// capitalizeWord upper-cases word's first letter and lower-cases the
// rest, unless word (case-folded) is in the no-caps list, in which case
// it is returned entirely lower-case. A word that already arrives as a
// multi-letter all-caps acronym (e.g. "CR", "US", "MUP" from a rewrite
// rule) is left untouched rather than down-cased to "Cr"/"Us"/"Mup".
func capitalizeWord(word string) string {
	if word == "" {
		return word
	}
	if isAcronym(word) {
		return word
	}
	lower := strings.ToLower(word)
	if noCaps[lower] {
		return lower
	}
	r := []rune(lower)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isAcronym(word string) bool {
	r := []rune(word)
	if len(r) < 2 {
		return false
	}
	for _, c := range r {
		if !unicode.IsUpper(c) {
			return false
		}
	}
	return true
}

// capitalize applies capitalizeWord to every word token in s, leaving
// separators untouched.
func capitalize(s string) string {
	toks := tokenize(s)
	for i := range toks {
		toks[i].word = capitalizeWord(toks[i].word)
	}
	return join(toks)
}
