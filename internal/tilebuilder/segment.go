package tilebuilder

import "github.com/jeffboody/osmdb/internal/record"

// segment is a way being assembled for one tile: a mutable copy of its
// node ids plus its descriptive fields and working range, so joining can
// splice two segments together without touching the store. Relation
// member ways and standalone ways are both represented as segments; the
// member flag only changes the join-compatibility rule (§ joinable) and
// whether its endpoints are clip-exempt.
type segment struct {
	wid   int64
	class uint32
	flags record.WayFlags32
	layer int32
	name  string

	nds []int64

	latT, lonL, latB, lonR float64

	member   bool // part of a relation's MemberWay list, not a standalone way
	inner    bool // relation member only: inner ring of a multipolygon
	consumed bool // spliced into another segment; skip at gather/output time
}

func newSegment(info record.WayInfo, rng record.WayRange, nds []int64) *segment {
	return &segment{
		wid:   info.Wid,
		class: info.Class,
		flags: info.Flags,
		layer: info.Layer,
		name:  info.Name,
		nds:   nds,
		latT:  rng.LatT, lonL: rng.LonL, latB: rng.LatB, lonR: rng.LonR,
	}
}

func (s *segment) isLoop() bool {
	return len(s.nds) >= 2 && s.nds[0] == s.nds[len(s.nds)-1]
}

func (s *segment) headID() int64 { return s.nds[0] }
func (s *segment) tailID() int64 { return s.nds[len(s.nds)-1] }

func (s *segment) unionRange(o *segment) {
	s.latT, s.lonL, s.latB, s.lonR = record.UnionRange(
		s.latT, s.lonL, s.latB, s.lonR, o.latT, o.lonL, o.latB, o.lonR)
}
