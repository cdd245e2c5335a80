package osmimport

import (
	"github.com/jeffboody/osmdb/internal/nameproc"
	"github.com/jeffboody/osmdb/internal/record"
)

// selectName applies the normalisation and name-source policy shared by
// nodes, ways and relations: normalise the textual name, prefer its
// abbreviated form when the style opts in and it differs, then prefer
// ref over the resulting text when either a fixed rewrite flagged it
// (State Highway/Route N) or the caller identifies this as a
// highway/motorway-junction node. Returns the chosen text and whether
// the NAMEREF flag should be set.
func (im *Importer) selectName(class uint32, rawName, ref string, preferRefNode bool) (text string, nameRef bool) {
	norm := nameproc.Normalise(rawName)
	text = norm.Name
	if im.sty.Abbreviate(class) && norm.Abbrev != "" && norm.Abbrev != norm.Name {
		text = norm.Abbrev
	}
	if (norm.PreferRef || preferRefNode) && ref != "" {
		return ref, true
	}
	return text, false
}

// isHighwayRefPreferring reports whether a node's class is the
// motorway or motorway-junction class, the two node classes the data
// model says prefer `ref` over a textual name.
func (im *Importer) isHighwayRefPreferring(class uint32) bool {
	return class == im.policy.HighwayMotorway || class == im.policy.HighwayMotorwayJunction
}

func applyNameRef(flags record.WayFlags32, nameRef bool) record.WayFlags32 {
	if nameRef {
		return flags | record.WayFlags32(record.FlagNameRef)
	}
	return flags
}
