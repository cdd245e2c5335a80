package nameproc

import (
	"strconv"
	"strings"
)

// metersToFeet is the metre -> foot conversion factor the data model
// specifies (3937/1200), rather than the more common 3.28084
// approximation, so that `ele` and `ele:ft` round-trip consistently with
// the original tool's output.
const metersToFeet = 3937.0 / 1200.0

// ParseElevationMeters parses an `ele` tag value (metres, optionally
// suffixed with "ft"/"feet" in which case it is treated as already
// being in feet) and returns the elevation in feet.
func ParseElevationMeters(raw string) (feet float64, ok bool) {
	value, isFeet := stripFeetSuffix(raw)
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	if isFeet {
		return n, true
	}
	return n * metersToFeet, true
}

// ParseElevationFeet parses an `ele:ft` tag value directly as feet,
// tolerating the same trailing "ft"/"feet" token.
func ParseElevationFeet(raw string) (feet float64, ok bool) {
	value, _ := stripFeetSuffix(raw)
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripFeetSuffix(raw string) (value string, isFeet bool) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, suffix := range []string{"feet", "ft"} {
		if strings.HasSuffix(lower, suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			return s, true
		}
	}
	return s, false
}
