package translit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default is the package's default Transliterator: NFD-decompose, strip
// combining marks, then drop anything left that isn't printable ASCII.
// This is the "ASCII-fold" step the data model calls for; it is
// deliberately lossy (e.g. "Ångström" -> "Angstrom", "北京" -> "") rather
// than attempting a phonetic transliteration, matching the "|" → space
// and '"' → stripped rules the data model specifies for the same reason:
// names must be safe to pack into a 0-terminated ASCII blob tail.
var Default Transliterator = FoldFunc(foldASCII)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldASCII(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r == '|':
			b.WriteByte(' ')
		case r == '"':
			// stripped entirely, per the data model's reserved-character rule
		case r < 0x80 && unicode.IsPrint(r):
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
