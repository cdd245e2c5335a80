package nameproc

import "regexp"

// rewriteRule replaces phrase-level matches with a fixed short form.
// setHighway marks rules whose effect means a later `ref` tag should be
// preferred over the textual name (data model: "State Highway N" and
// "State Route N" rewrites set tag_highway).
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
	setHighway  bool
}

// Each pattern is matched case-insensitively against the whole name
// before word capitalisation runs, since the rewrite phrases are
// recognised regardless of the input's original casing. "$1" refers to
// the captured route number where the rule keeps one.
var rewriteRules = []rewriteRule{
	{regexp.MustCompile(`(?i)multi[- ]?use path`), "MUP", false},
	{regexp.MustCompile(`(?i)\bunited states highway\s+(\w+)\b`), "US $1", false},
	{regexp.MustCompile(`(?i)\bstate (?:highway|hwy)\s+(\w+)\b`), "Hwy $1", true},
	{regexp.MustCompile(`(?i)\bstate (?:route|rte)\s+(\w+)\b`), "Rte $1", true},
	{regexp.MustCompile(`(?i)\bcounty (?:road|rd|highway|hwy)\s+(\w+)\b`), "CR $1", false},
	{regexp.MustCompile(`(?i)\bUS (?:highway|hwy)\s+(\w+)\b`), "US $1", false},
	{regexp.MustCompile(`(?i)\btrail head\b`), "TH", false},
}

// elevationSuffix strips trailing elevation noise such as "13,870 ft" or
// "14,115 feet" that sometimes rides along on a peak or pass name.
var elevationSuffix = regexp.MustCompile(`(?i)[\s,]*[\d][\d,]*\s*(?:ft|feet)\s*$`)

// applyRewrites runs the fixed word-window rewrites over s, returning
// the rewritten string and whether any highway-preferring rule fired.
func applyRewrites(s string) (string, bool) {
	s = elevationSuffix.ReplaceAllString(s, "")
	highway := false
	for _, rule := range rewriteRules {
		if rule.pattern.MatchString(s) {
			s = rule.pattern.ReplaceAllString(s, rule.replacement)
			highway = highway || rule.setHighway
		}
	}
	return s, highway
}
