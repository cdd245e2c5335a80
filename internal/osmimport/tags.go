package osmimport

import (
	"strconv"
	"strings"

	"github.com/jeffboody/osmdb/internal/nameproc"
	"github.com/jeffboody/osmdb/internal/record"
)

// tagAccum holds the running result of processing one entity's `<tag
// k=v/>` elements. The same recognised-key set and class-override policy
// apply to nodes, ways and relations alike.
type tagAccum struct {
	class uint32
	flags record.WayFlags32
	layer int32

	name      string
	sawNameEn bool
	ref       string
	junctionRef string

	capital      bool
	stateCapital bool

	eleRaw   string
	eleFtRaw string

	protectClass int
	ownership    string

	relType record.RelType
}

// applyTag processes one (key, value) pair already folded to ASCII by the
// caller, updating the accumulator's class, flags and recognised fields.
func (im *Importer) applyTag(t *tagAccum, key, value string) {
	if key == "building" {
		t.flags |= record.WayFlags32(record.FlagBuilding)
	}

	if code, ok := im.classes.Code(key, value); ok {
		t.class = im.overrideClass(t.class, code)
	}

	switch key {
	case "name":
		if !t.sawNameEn {
			t.name = value
		}
	case "name:en":
		t.name = value
		t.sawNameEn = true
	case "ref":
		t.ref = value
	case "junction:ref":
		t.junctionRef = value
	case "capital":
		t.capital = isTruthyTag(value)
	case "state_capital":
		t.stateCapital = isTruthyTag(value)
	case "ele":
		t.eleRaw = value
	case "ele:ft":
		t.eleFtRaw = value
	case "protect_id", "protect_class":
		if n, err := strconv.Atoi(value); err == nil {
			t.protectClass = n
		}
	case "ownership":
		t.ownership = value
	case "oneway":
		switch value {
		case "yes", "true", "1":
			t.flags |= record.WayFlags32(record.FlagForward)
		case "-1":
			t.flags |= record.WayFlags32(record.FlagReverse)
		}
	case "bridge":
		if isTruthyTag(value) {
			t.flags |= record.WayFlags32(record.FlagBridge)
		}
	case "tunnel":
		if isTruthyTag(value) {
			t.flags |= record.WayFlags32(record.FlagTunnel)
		}
	case "cutting", "embankment":
		if isTruthyTag(value) {
			t.flags |= record.WayFlags32(record.FlagCutting)
		}
	case "layer":
		if n, err := strconv.Atoi(value); err == nil {
			t.layer = int32(n)
		}
	case "type":
		t.relType = parseRelType(value)
	}
}

// overrideClass applies the class-override policy: national park and
// protected area always win; once a protected class is set it is never
// overwritten; otherwise a new code only wins if the current class is a
// "generic yes" (none, a *:yes class, or any building subclass).
func (im *Importer) overrideClass(current, candidate uint32) uint32 {
	if candidate == im.policy.NationalPark || candidate == im.policy.ProtectedArea {
		return candidate
	}
	if im.policy.IsProtectedClass(current) {
		return current
	}
	if im.policy.IsGenericYes(current) {
		return candidate
	}
	return current
}

func isTruthyTag(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

func parseRelType(v string) record.RelType {
	switch v {
	case "boundary":
		return record.RelBoundary
	case "multipolygon":
		return record.RelMultipolygon
	default:
		return record.RelNone
	}
}

// resolvedElevationFeet resolves the accumulated ele/ele:ft tags to a
// feet value. ele:ft is used directly when present; otherwise ele
// (metres) is converted. Malformed values are tallied and ignored
// rather than aborting the import, per the failure model.
func (im *Importer) resolvedElevationFeet(t *tagAccum) float32 {
	if t.eleFtRaw != "" {
		if feet, ok := nameproc.ParseElevationFeet(t.eleFtRaw); ok {
			return float32(feet)
		}
		im.countMalformed()
		return 0
	}
	if t.eleRaw != "" {
		if feet, ok := nameproc.ParseElevationMeters(t.eleRaw); ok {
			return float32(feet)
		}
		im.countMalformed()
	}
	return 0
}

// resolvedProtectClass remaps a national-park/protected-area class using
// the tag model's protect_class convention (2 -> np2, 3 -> nm3), unless
// ownership is "national", in which case the original class is kept.
func (im *Importer) resolvedProtectClass(t *tagAccum) uint32 {
	if !im.policy.IsProtectedClass(t.class) || t.ownership == "national" {
		return t.class
	}
	switch t.protectClass {
	case 2:
		return im.policy.NP2
	case 3:
		return im.policy.NM3
	default:
		return t.class
	}
}
