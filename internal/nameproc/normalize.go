package nameproc

// Result is the outcome of normalising a single name tag.
type Result struct {
	// Name is the capitalised, rewrite-applied display name.
	Name string
	// Abbrev is the further-abbreviated alternate form, or "" if no
	// word in Name has an entry in the abbreviation table.
	Abbrev string
	// PreferRef is set when a fixed rewrite (State Highway/Route N)
	// fired, signalling that a `ref` tag should be preferred over this
	// textual name if one is present.
	PreferRef bool
}

// Normalise applies the fixed word-window rewrites, then capitalises
// every remaining word, then computes the alternate abbreviated form.
// It is idempotent: Normalise(Normalise(s).Name).Name == Normalise(s).Name,
// since every transformation it applies maps already-canonical input to
// itself.
func Normalise(s string) Result {
	rewritten, preferRef := applyRewrites(s)
	name := capitalize(rewritten)
	abbrev, changed := abbreviate(name)
	if !changed {
		abbrev = ""
	}
	return Result{Name: name, Abbrev: abbrev, PreferRef: preferRef}
}
