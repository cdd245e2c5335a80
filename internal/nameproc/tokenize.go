// Package nameproc normalises OSM name tags into the display form the
// tile builder emits: Unicode already folded to ASCII by the caller,
// words capitalised, a handful of highway/trail compounds rewritten to
// their conventional short forms, and an optional further-abbreviated
// variant for styles that opt into it.
package nameproc

import "unicode"

// maxWords bounds how many words a tokeniser walk considers; names with
// more words than this keep their trailing text untouched by
// capitalisation and abbreviation, since tokenize folds it verbatim into
// the last token's separator (such names are rare, and bounding the walk
// keeps those passes O(1) per name instead of unbounded).
const maxWords = 16

// token is one (word, trailing separator) pair as read off a name
// string. sep is the run of non-alphabetic characters — punctuation,
// digits, whitespace — that followed the word, verbatim.
type token struct {
	word string
	sep  string
}

// tokenize splits s into up to maxWords (word, separator) pairs. A
// "word" is a maximal run of alphabetic runes; everything between the
// end of one word and the start of the next (digits, punctuation,
// whitespace) is that word's separator. A leading separator, if any, is
// returned in a token with an empty word.
func tokenize(s string) []token {
	var toks []token
	r := []rune(s)
	i := 0
	for i < len(r) && len(toks) < maxWords {
		wordStart := i
		for i < len(r) && unicode.IsLetter(r[i]) {
			i++
		}
		word := string(r[wordStart:i])

		sepStart := i
		for i < len(r) && !unicode.IsLetter(r[i]) {
			i++
		}
		sep := string(r[sepStart:i])

		if word == "" && sep == "" {
			break
		}
		toks = append(toks, token{word: word, sep: sep})
	}
	if i < len(r) && len(toks) > 0 {
		toks[len(toks)-1].sep += string(r[i:])
	}
	return toks
}

// join reassembles tokens back into a string, word then separator, in
// order.
func join(toks []token) string {
	var out []byte
	for _, t := range toks {
		out = append(out, t.word...)
		out = append(out, t.sep...)
	}
	return string(out)
}
