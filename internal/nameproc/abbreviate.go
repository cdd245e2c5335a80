package nameproc

// abbrevTable maps a capitalised word to its conventional road-atlas
// abbreviation. Deliberately small and road/trail oriented, matching the
// domain this package's caller (the import pipeline) actually normalises
// names for.
var abbrevTable = map[string]string{
	"North":     "N",
	"South":     "S",
	"East":      "E",
	"West":      "W",
	"Northeast": "NE",
	"Northwest": "NW",
	"Southeast": "SE",
	"Southwest": "SW",
	"Avenue":    "Ave",
	"Boulevard": "Blvd",
	"Street":    "St",
	"Drive":     "Dr",
	"Lane":      "Ln",
	"Road":      "Rd",
	"Trail":     "Tr",
	"Mountain":  "Mtn",
	"Mountains": "Mtns",
	"Canyon":    "Cyn",
	"Creek":     "Crk",
	"Lake":      "Lk",
	"River":     "Riv",
	"Park":      "Pk",
	"Peak":      "Pk",
	"Fork":      "Fk",
	"Summit":    "Smt",
	"Junction":  "Jct",
	"Point":     "Pt",
	"Spring":    "Spg",
	"Springs":   "Spgs",
}

// abbreviate applies abbrevTable word-by-word to s (already
// capitalised). It returns the abbreviated string and whether any word
// actually changed — the data model requires an empty `abrev` field
// when no word has an abbreviation.
func abbreviate(s string) (string, bool) {
	toks := tokenize(s)
	changed := false
	for i, t := range toks {
		if short, ok := abbrevTable[t.word]; ok {
			toks[i].word = short
			changed = true
		}
	}
	if !changed {
		return "", false
	}
	return join(toks), true
}

// hasAnyAbbreviation reports whether s contains a word that would be
// abbreviated, without constructing the abbreviated string. It has no
// callers in this module.
func hasAnyAbbreviation(s string) bool {
	for _, t := range tokenize(s) {
		if _, ok := abbrevTable[t.word]; ok {
			return true
		}
	}
	return false
}
