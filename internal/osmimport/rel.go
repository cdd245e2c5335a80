package osmimport

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/record"
	"github.com/jeffboody/osmdb/internal/style"
)

// largeRelationAreaDegrees is the area, in square degrees, above which a
// relation is treated like a centered one: its RelMembers array is not
// stored and it is reverse-indexed only at its midpoint rather than
// across every tile its range spans. A huge multipolygon (a state, a
// national forest) already has its constituent ways individually
// indexed.
const largeRelationAreaDegrees = 0.002

// finishRelation runs the post-processing §4.D describes for
// `/relation`: resolve each member way's range (recomputing and
// memoizing it from WayNds if a prior, range-less way was never
// selected on its own), union them into RelRange, and store RelInfo. A
// relation whose footprint is very large, or whose style selection asks
// to be centered, suppresses its RelMembers array and indexes only the
// tile containing its midpoint; everything else stores the full member
// list and indexes its whole range.
func (im *Importer) finishRelation(st *walkState) error {
	im.trackChangeset(st.changeset)
	im.rels++
	im.progress.maybeLog(im.nodes, im.ways, im.rels, im.malformedTags)

	latT, lonL, latB, lonR, found, err := im.computeRelRange(st.relMembers)
	if err != nil {
		return fmt.Errorf("osmimport: computing relation %d range: %w", st.relID, err)
	}
	if !found {
		return nil
	}

	rng := record.RelRange{Rid: st.relID, LatT: latT, LonL: lonL, LatB: latB, LonR: lonR}
	if err := im.ix.Add(0, record.TypeRelRange, st.relID, record.MarshalRelRange(rng)); err != nil {
		return fmt.Errorf("osmimport: storing relation %d range: %w", st.relID, err)
	}

	class := im.resolvedProtectClass(&st.tags)
	sel := im.sty.Select(class)
	centered := sel.Center || rangeAreaDegrees(latT, lonL, latB, lonR) > largeRelationAreaDegrees

	if !centered {
		members := record.RelMembers{Rid: st.relID, Members: st.relMembers}
		if err := im.ix.Add(0, record.TypeRelMembers, st.relID, record.MarshalRelMembers(members)); err != nil {
			return fmt.Errorf("osmimport: storing relation %d members: %w", st.relID, err)
		}
	}

	if sel.Kind == style.None || st.tags.relType == record.RelNone {
		return nil
	}

	text, nameRef := im.selectName(class, st.tags.name, st.tags.ref, false)
	flags := applyNameRef(st.tags.flags, nameRef)

	info := record.RelInfo{
		Rid:   st.relID,
		Nid:   st.relLabelNid,
		Class: class,
		Flags: flags,
		Type:  st.tags.relType,
		Name:  text,
	}
	if err := im.ix.Add(0, record.TypeRelInfo, st.relID, record.MarshalRelInfo(info)); err != nil {
		return fmt.Errorf("osmimport: storing relation %d info: %w", st.relID, err)
	}

	if centered {
		lat, lon := midpoint(latT, lonL, latB, lonR)
		return im.indexEntityTiles(record.EntityRel, st.relID, lat, lon, lat, lon, 0)
	}
	return im.indexEntityTiles(record.EntityRel, st.relID, latT, lonL, latB, lonR, reverseIndexMarginFrac)
}

// computeRelRange unions the WayRange of each member way, recomputing
// and memoizing a missing one from its stored WayNds (a way with no
// style selection of its own is never range-computed at /way time, but
// a relation consumer still needs its geometry).
func (im *Importer) computeRelRange(members []record.Member) (latT, lonL, latB, lonR float64, found bool, err error) {
	for _, m := range members {
		mLatT, mLonL, mLatB, mLonR, ok, err := im.wayRangeOrRecompute(m.Wid)
		if err != nil {
			return 0, 0, 0, 0, false, err
		}
		if !ok {
			continue
		}
		if !found {
			latT, lonL, latB, lonR = mLatT, mLonL, mLatB, mLonR
			found = true
			continue
		}
		latT, lonL, latB, lonR = record.UnionRange(latT, lonL, latB, lonR, mLatT, mLonL, mLatB, mLonR)
	}
	return latT, lonL, latB, lonR, found, nil
}

// wayRangeOrRecompute returns a member way's range, computing it from
// WayNds and writing it back to the store on a first encounter so later
// relations sharing the same way reuse the memoized result instead of
// re-walking its nodes.
func (im *Importer) wayRangeOrRecompute(wid int64) (latT, lonL, latB, lonR float64, found bool, err error) {
	h, err := im.ix.Get(0, record.TypeWayRange, wid)
	if err != nil {
		return 0, 0, 0, 0, false, fmt.Errorf("looking up way %d range: %w", wid, err)
	}
	if h != nil {
		blob, off := h.Blob()
		r := record.UnmarshalWayRange(blob, off)
		im.ix.Put(h)
		return r.LatT, r.LonL, r.LatB, r.LonR, true, nil
	}

	ndsH, err := im.ix.Get(0, record.TypeWayNds, wid)
	if err != nil {
		return 0, 0, 0, 0, false, fmt.Errorf("looking up way %d nds: %w", wid, err)
	}
	if ndsH == nil {
		return 0, 0, 0, 0, false, nil
	}
	blob, off := ndsH.Blob()
	nds := record.NdsOf(blob, off)
	im.ix.Put(ndsH)

	latT, lonL, latB, lonR, found, err = im.computeRangeFromNds(nds)
	if err != nil {
		return 0, 0, 0, 0, false, err
	}
	if !found {
		return 0, 0, 0, 0, false, nil
	}

	rng := record.WayRange{Wid: wid, LatT: latT, LonL: lonL, LatB: latB, LonR: lonR}
	if err := im.ix.Add(0, record.TypeWayRange, wid, record.MarshalWayRange(rng)); err != nil {
		return 0, 0, 0, 0, false, fmt.Errorf("memoizing way %d range: %w", wid, err)
	}
	return latT, lonL, latB, lonR, true, nil
}
