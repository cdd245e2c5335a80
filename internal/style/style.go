// Package style defines the out-of-scope "style file" collaborator: the
// policy table that tells the import pipeline and tile builder which
// classes are selected for which geometry kind, and which classes opt
// into the abbreviated name form. The parser for any particular style
// file format is external; this package defines the interface every
// stage of the pipeline programs against, plus one JSON-backed default
// implementation good enough to drive tests and a first real run.
package style

// Kind is the geometry kind a class is selected as.
type Kind int

const (
	// None means the class is not selected at all: nodes of this class
	// are dropped after NodeCoord is stored, ways/relations are
	// discarded unless referenced transitively by a selected relation.
	None Kind = iota
	Line
	Polygon
	// Point means the feature is emitted as a point, regardless of its
	// OSM geometry type; way/relation ranges collapse to their midpoint
	// when Center is also set.
	Point
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Polygon:
		return "polygon"
	case Point:
		return "point"
	default:
		return "none"
	}
}

// Selection is the style's verdict for one class code.
type Selection struct {
	Kind Kind
	// Center collapses the selected feature's range to its midpoint
	// before reverse tile indexing — used for "point" selections derived
	// from an areal or linear OSM geometry (e.g. a peak represented as a
	// tagged polygon).
	Center bool
}

// Table is the interface the rest of the pipeline programs against. A
// concrete style file format (JSON, the reference tool's native format,
// anything else) implements this by loading its file once at startup.
type Table interface {
	// Select returns how class should be rendered. The zero Selection
	// (Kind == None) means the class is not emitted.
	Select(class uint32) Selection
	// Abbreviate reports whether names of this class should prefer
	// their abbreviated form when one exists and differs from the
	// textual name.
	Abbreviate(class uint32) bool
}
