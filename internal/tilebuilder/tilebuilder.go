// Package tilebuilder implements the third core subsystem: for a
// requested tile it gathers relations, ways and nodes from a blobindex
// Index, joins adjacent way segments sharing a tag set, decimates
// over-dense geometry, clips against the tile rect and serialises the
// result into a self-describing binary tile blob.
package tilebuilder

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/record"
)

// Builder assembles tiles against a single blobindex.Index. A Builder is
// not safe for concurrent use by multiple goroutines — callers running a
// worker pool (see cmd/osmdb-prefetch) must give each worker thread its
// own Builder sharing the same tid they pass to the Index, mirroring the
// per-thread reusable working state the data model calls for.
type Builder struct {
	ix  *blobindex.Index
	tid int

	// exportedWays tracks way ids already gathered as a relation member,
	// so the standalone-ways pass does not emit them a second time.
	exportedWays *exportSet
	// exportedNodes tracks node ids already emitted as a NodeRecord (or
	// consumed as a relation's label node), deduplicating the gather-
	// nodes pass.
	exportedNodes *exportSet

	coords map[int64]coordEntry

	// lastJoinErr carries a store error out of the innermost join-pass
	// loop in joiner.go, which otherwise has no error return of its own.
	lastJoinErr error
}

type coordEntry struct {
	lat, lon float64
	ok       bool
}

// New returns a Builder reading through ix. tid must be the caller's
// reserved thread slot, matching Options.MaxThreads passed to
// blobindex.Open.
func New(ix *blobindex.Index, tid int) *Builder {
	return &Builder{
		ix:            ix,
		tid:           tid,
		exportedWays:  newExportSet(),
		exportedNodes: newExportSet(),
		coords:        make(map[int64]coordEntry),
	}
}

// reset clears per-tile working state between BuildTile calls so the
// Builder's allocations are reused rather than rebuilt from scratch.
func (b *Builder) reset() {
	b.exportedWays.clear()
	b.exportedNodes.clear()
	for k := range b.coords {
		delete(b.coords, k)
	}
}

// nodeCoord returns a node's stored position, caching the lookup for the
// lifetime of the current tile build since both joining and clipping
// repeatedly probe the same shared endpoints.
func (b *Builder) nodeCoord(nid int64) (record.NodeCoord, bool, error) {
	if e, ok := b.coords[nid]; ok {
		return record.NodeCoord{Nid: nid, Lat: e.lat, Lon: e.lon}, e.ok, nil
	}

	h, err := b.ix.Get(b.tid, record.TypeNodeCoord, nid)
	if err != nil {
		return record.NodeCoord{}, false, fmt.Errorf("tilebuilder: node %d coord: %w", nid, err)
	}
	if h == nil {
		b.coords[nid] = coordEntry{ok: false}
		return record.NodeCoord{}, false, nil
	}
	blob, off := h.Blob()
	nc := record.UnmarshalNodeCoord(blob, off)
	b.ix.Put(h)

	b.coords[nid] = coordEntry{lat: nc.Lat, lon: nc.Lon, ok: true}
	return nc, true, nil
}

// nodeXYZ returns a node's position projected onto the unit sphere, for
// the 3-D turning-angle test joining uses.
func (b *Builder) nodeXYZ(nid int64) (coord.Vec3, bool, error) {
	nc, ok, err := b.nodeCoord(nid)
	if err != nil || !ok {
		return coord.Vec3{}, ok, err
	}
	return coord.EarthXYZ(nc.Lat, nc.Lon), true, nil
}
