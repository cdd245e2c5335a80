package tilebuilder

import (
	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/record"
)

// tileMarginFrac enlarges the tile rect by this fraction on each side
// before clipping and coordinate transform, matching the margin the
// import pipeline reverse-indexes entities with.
const tileMarginFrac = 1.0 / 16.0

// tileBounds is a tile's WGS-84 bounding box already enlarged by
// tileMarginFrac — the coordinate space every clip and transform in one
// BuildTile call is expressed against.
type tileBounds struct {
	latT, lonL, latB, lonR float64
}

// BuildTile assembles the tile blob for (zoom, x, y) per the gather /
// join / sample / clip / export pipeline, returning the finished,
// length-correct byte buffer. The returned error is always a store I/O
// failure; missing references and empty geometry are tolerated and
// simply omit the affected record.
func (b *Builder) BuildTile(zoom, x, y int, changeset int64) ([]byte, error) {
	b.reset()

	latT, lonL, latB, lonR := coord.TileBounds(zoom, x, y)
	enlLatT, enlLonL, enlLatB, enlLonR := coord.EnlargeTileBounds(latT, lonL, latB, lonR, tileMarginFrac)
	bounds := tileBounds{enlLatT, enlLonL, enlLatB, enlLonR}
	minDist := minDistMeters(zoom, x, y)

	w := newTileWriter(zoom, x, y, changeset)

	if err := b.gatherRelations(w, bounds, minDist, zoom, x, y); err != nil {
		return nil, err
	}
	if err := b.gatherWays(w, bounds, minDist, zoom, x, y); err != nil {
		return nil, err
	}
	if err := b.gatherNodes(w, bounds, zoom, x, y); err != nil {
		return nil, err
	}

	return w.finish(), nil
}

func (b *Builder) gatherRelations(w *tileWriter, bounds tileBounds, minDist float64, zoom, x, y int) error {
	rids, err := b.entityRefs(record.EntityRel, zoom, x, y)
	if err != nil {
		return err
	}

	for _, rid := range rids {
		info, ok, err := b.lookupRelInfo(rid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		rng, hasRange, err := b.lookupRelRange(rid)
		if err != nil {
			return err
		}

		labelLat, labelLon, haveLabel := 0.0, 0.0, false
		if info.Nid != 0 {
			nc, ok, err := b.nodeCoord(info.Nid)
			if err != nil {
				return err
			}
			if ok {
				labelLat, labelLon, haveLabel = nc.Lat, nc.Lon, true
				b.exportedNodes.markNew(info.Nid)
			}
		}
		if !haveLabel && hasRange {
			labelLat, labelLon = (rng.LatT+rng.LatB)/2, (rng.LonL+rng.LonR)/2
		}
		cx, cy := coord.ToTileLocal(labelLat, labelLon, bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)

		var rt, rl, rb, rr int16
		if hasRange {
			rt, rl, rb, rr = tileLocalRange(rng.LatT, rng.LonL, rng.LatB, rng.LonR, bounds)
		}

		members, hasMembers, err := b.lookupRelMembers(rid)
		if err != nil {
			return err
		}

		var memberRecs []memberWayRecord
		if hasMembers {
			memberRecs, err = b.gatherRelationMembers(members, bounds, minDist)
			if err != nil {
				return err
			}
		}

		w.putI32(int32(info.Type))
		w.putU32(info.Class)
		w.putPoint(cx, cy)
		w.putPoint(rl, rt)
		w.putPoint(rr, rb)
		w.putI32(sizeName(info.Name))
		w.putI32(int32(len(memberRecs)))
		w.putNameBytes(info.Name)
		for _, m := range memberRecs {
			w.putU32(uint32(m.flags))
			w.putI32(m.layer)
			w.putI32(int32(len(m.points)))
			for _, p := range m.points {
				w.putPoint(p.x, p.y)
			}
		}
		w.countRels++
	}
	return nil
}

type point struct{ x, y int16 }

type memberWayRecord struct {
	flags  record.WayFlags32
	layer  int32
	points []point
}

func (b *Builder) gatherRelationMembers(members []record.Member, bounds tileBounds, minDist float64) ([]memberWayRecord, error) {
	segs := make([]*segment, 0, len(members))
	flagsByWid := make(map[int64]record.WayFlags32, len(members))
	layerByWid := make(map[int64]int32, len(members))

	for _, m := range members {
		nds, ok, err := b.lookupWayNds(m.Wid)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rng, _, err := b.lookupWayRange(m.Wid)
		if err != nil {
			return nil, err
		}
		info, hasInfo, err := b.lookupWayInfo(m.Wid)
		if err != nil {
			return nil, err
		}

		s := newSegment(record.WayInfo{Wid: m.Wid}, rng, nds)
		s.member = true
		s.inner = m.Inner
		if hasInfo {
			flagsByWid[m.Wid] = info.Flags
			layerByWid[m.Wid] = info.Layer
		}
		segs = append(segs, s)
		b.exportedWays.markNew(m.Wid)
	}

	joined, err := b.joinWays(segs, false)
	if err != nil {
		return nil, err
	}

	var out []memberWayRecord
	for _, s := range joined {
		pts, err := b.sampleClipToPoints(s, bounds, minDist)
		if err != nil {
			return nil, err
		}
		if len(pts) < 2 {
			continue
		}
		flags := flagsByWid[s.wid]
		if s.inner {
			flags |= record.WayFlags32(record.FlagInner)
		}
		out = append(out, memberWayRecord{flags: flags, layer: layerByWid[s.wid], points: pts})
	}
	return out, nil
}

func (b *Builder) gatherWays(w *tileWriter, bounds tileBounds, minDist float64, zoom, x, y int) error {
	wids, err := b.entityRefs(record.EntityWay, zoom, x, y)
	if err != nil {
		return err
	}

	segs := make([]*segment, 0, len(wids))
	infoByWid := make(map[int64]record.WayInfo, len(wids))
	for _, wid := range wids {
		if b.exportedWays.has(wid) {
			continue
		}
		info, ok, err := b.lookupWayInfo(wid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		nds, ok, err := b.lookupWayNds(wid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		rng, _, err := b.lookupWayRange(wid)
		if err != nil {
			return err
		}
		s := newSegment(info, rng, nds)
		segs = append(segs, s)
		infoByWid[wid] = info
	}

	joined, err := b.joinWays(segs, true)
	if err != nil {
		return err
	}

	for _, s := range joined {
		pts, err := b.sampleClipToPoints(s, bounds, minDist)
		if err != nil {
			return err
		}
		if len(pts) < 2 {
			continue
		}
		info := infoByWid[s.wid]
		cx, cy := coord.ToTileLocal((s.latT+s.latB)/2, (s.lonL+s.lonR)/2,
			bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)
		rt, rl, rb, rr := tileLocalRange(s.latT, s.lonL, s.latB, s.lonR, bounds)

		w.putU32(info.Class)
		w.putI32(info.Layer)
		w.putU32(uint32(info.Flags))
		w.putPoint(cx, cy)
		w.putPoint(rl, rt)
		w.putPoint(rr, rb)
		w.putI32(sizeName(info.Name))
		w.putI32(int32(len(pts)))
		w.putNameBytes(info.Name)
		for _, p := range pts {
			w.putPoint(p.x, p.y)
		}
		w.countWays++
	}
	return nil
}

func (b *Builder) gatherNodes(w *tileWriter, bounds tileBounds, zoom, x, y int) error {
	nids, err := b.entityRefs(record.EntityNode, zoom, x, y)
	if err != nil {
		return err
	}

	for _, nid := range nids {
		if b.exportedNodes.has(nid) {
			continue
		}
		info, ok, err := b.lookupNodeInfo(nid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		nc, ok, err := b.nodeCoord(nid)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		b.exportedNodes.markNew(nid)

		px, py := coord.ToTileLocal(nc.Lat, nc.Lon, bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)
		w.putU32(info.Class)
		w.putFloat32(info.Ele)
		w.putPoint(px, py)
		w.putI32(sizeName(info.Name))
		w.putNameBytes(info.Name)
		w.countNodes++
	}
	return nil
}

// sampleClipToPoints runs the sample-then-clip stages on s and projects
// the surviving node ids to tile-local points, silently dropping any
// node with no stored coordinate.
func (b *Builder) sampleClipToPoints(s *segment, bounds tileBounds, minDist float64) ([]point, error) {
	sampled, err := b.sampleSegment(s, minDist)
	if err != nil {
		return nil, err
	}
	tmp := &segment{nds: sampled, member: s.member}
	clipped, err := b.clipSegment(tmp, bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)
	if err != nil {
		return nil, err
	}

	pts := make([]point, 0, len(clipped))
	for _, id := range clipped {
		nc, ok, err := b.nodeCoord(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		x, y := coord.ToTileLocal(nc.Lat, nc.Lon, bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)
		pts = append(pts, point{x, y})
	}
	return pts, nil
}

func tileLocalRange(latT, lonL, latB, lonR float64, bounds tileBounds) (t, l, bVal, r int16) {
	l, t = coordToTileLocal(latT, lonL, bounds)
	r, bVal = coordToTileLocal(latB, lonR, bounds)
	return
}

func coordToTileLocal(lat, lon float64, bounds tileBounds) (x, y int16) {
	return coord.ToTileLocal(lat, lon, bounds.latT, bounds.lonL, bounds.latB, bounds.lonR)
}
