package osmimport

import (
	"fmt"
	"math"

	"github.com/jeffboody/osmdb/internal/record"
	"github.com/jeffboody/osmdb/internal/style"
)

// finishWay runs the post-processing §4.D describes for `/way`: always
// store WayNds (nodes missing from the store are skipped rather than
// aborting the range computation); if the style selects the resolved
// class at all (line, polygon or point), store WayRange, choose a name
// (preferring `ref` on a motorway/junction way, exactly as finishNode
// does for highway-class nodes), attach it to WayInfo, store it, and
// reverse-index the range at both precomputed zooms — collapsed to its
// midpoint with zero margin when the style selection asks to be
// centered. An unselected way stores neither WayRange nor WayInfo;
// WayRange is recomputed and memoized lazily from WayNds if a relation
// later needs it (see rel.go's wayRangeOrRecompute).
func (im *Importer) finishWay(st *walkState) error {
	im.trackChangeset(st.changeset)
	im.ways++
	im.progress.maybeLog(im.nodes, im.ways, im.rels, im.malformedTags)

	nds := record.WayNds{Wid: st.wayID, Nds: st.wayNds}
	if err := im.ix.Add(0, record.TypeWayNds, st.wayID, record.MarshalWayNds(nds)); err != nil {
		return fmt.Errorf("osmimport: storing way %d nds: %w", st.wayID, err)
	}

	latT, lonL, latB, lonR, found, err := im.computeRangeFromNds(st.wayNds)
	if err != nil {
		return fmt.Errorf("osmimport: computing way %d range: %w", st.wayID, err)
	}
	if !found {
		// No referenced node carried a coordinate: nothing to range or
		// index, and no style selection is meaningful without a position.
		return nil
	}
	class := im.resolvedProtectClass(&st.tags)
	sel := im.sty.Select(class)
	if sel.Kind == style.None {
		return nil
	}

	rng := record.WayRange{Wid: st.wayID, LatT: latT, LonL: lonL, LatB: latB, LonR: lonR}
	if err := im.ix.Add(0, record.TypeWayRange, st.wayID, record.MarshalWayRange(rng)); err != nil {
		return fmt.Errorf("osmimport: storing way %d range: %w", st.wayID, err)
	}

	preferRefNode := im.isHighwayRefPreferring(class)
	text, nameRef := im.selectName(class, st.tags.name, st.tags.ref, preferRefNode)
	flags := applyNameRef(st.tags.flags, nameRef)

	info := record.WayInfo{
		Wid:   st.wayID,
		Class: class,
		Flags: flags,
		Layer: st.tags.layer,
		Name:  text,
	}
	if err := im.ix.Add(0, record.TypeWayInfo, st.wayID, record.MarshalWayInfo(info)); err != nil {
		return fmt.Errorf("osmimport: storing way %d info: %w", st.wayID, err)
	}

	centered := sel.Center
	if centered {
		lat, lon := midpoint(latT, lonL, latB, lonR)
		return im.indexEntityTiles(record.EntityWay, st.wayID, lat, lon, lat, lon, 0)
	}
	return im.indexEntityTiles(record.EntityWay, st.wayID, latT, lonL, latB, lonR, reverseIndexMarginFrac)
}

// computeRangeFromNds looks up each referenced node's coordinate and
// folds it into a running bounding box. A node absent from the store
// (common in a truncated extract) is skipped, not an error; a genuine
// store failure is propagated rather than silently treated the same as
// "not found".
func (im *Importer) computeRangeFromNds(nds []int64) (latT, lonL, latB, lonR float64, found bool, err error) {
	latT, latB = -math.MaxFloat64, math.MaxFloat64
	lonL, lonR = math.MaxFloat64, -math.MaxFloat64

	for _, nid := range nds {
		h, err := im.ix.Get(0, record.TypeNodeCoord, nid)
		if err != nil {
			return 0, 0, 0, 0, false, fmt.Errorf("looking up node %d coord: %w", nid, err)
		}
		if h == nil {
			continue
		}
		blob, off := h.Blob()
		nc := record.UnmarshalNodeCoord(blob, off)
		im.ix.Put(h)

		if !found {
			latT, lonL, latB, lonR = nc.Lat, nc.Lon, nc.Lat, nc.Lon
			found = true
			continue
		}
		latT, lonL, latB, lonR = record.UnionRange(latT, lonL, latB, lonR, nc.Lat, nc.Lon, nc.Lat, nc.Lon)
	}
	return latT, lonL, latB, lonR, found, nil
}

// rangeAreaDegrees returns the crude planar area, in square degrees, of
// a [latT,lonL,latB,lonR] box — used only to decide whether a
// relation's footprint is large enough to suppress its RelMembers (see
// rel.go), not for any geometric accuracy requirement.
func rangeAreaDegrees(latT, lonL, latB, lonR float64) float64 {
	return (latT - latB) * (lonR - lonL)
}
