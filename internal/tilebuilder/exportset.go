package tilebuilder

import "github.com/RoaringBitmap/roaring/roaring64"

// exportSet tracks entity ids already emitted into the tile currently
// being built, so a way gathered as a relation member, or a node used as
// a relation's label point, is not written again by the standalone
// ways or nodes pass. Backed by a
// Roaring bitmap rather than a map[int64]struct{}: OSM ids cluster
// densely within one tile's working set, which is Roaring's good case,
// and Clear reuses the same bitmap across tiles instead of reallocating
// a fresh map per BuildTile call.
type exportSet struct {
	bm *roaring64.Bitmap
}

func newExportSet() *exportSet {
	return &exportSet{bm: roaring64.New()}
}

func (s *exportSet) has(id int64) bool {
	return s.bm.Contains(uint64(id))
}

// markNew adds id to the set and reports whether it was not already
// present — the common "claim it if nobody else has" check.
func (s *exportSet) markNew(id int64) bool {
	return s.bm.CheckedAdd(uint64(id))
}

func (s *exportSet) clear() {
	s.bm.Clear()
}
