package tilebuilder

// quadrant is one of the four regions a clipped-and-outside node falls
// into relative to the tile's centre, used to decide whether three
// consecutive out-of-rect nodes are collinearly irrelevant (all on the
// same side) or actually cut across the rect.
type quadrant int

const (
	quadNone quadrant = iota
	quadTop
	quadBottom
	quadLeft
	quadRight
)

// classifyQuadrant dots (lon, lat) offset from the tile centre against
// the two diagonal unit vectors (1,1) and (1,-1) — equivalently, the
// sign of (x+y) and (x-y) where y grows southward, matching the
// tile-local coordinate convention internal/coord.ToTileLocal uses.
func classifyQuadrant(lat, lon, centerLat, centerLon float64) quadrant {
	x := lon - centerLon
	y := centerLat - lat
	a := x + y
	b := x - y
	switch {
	case a > 0 && b > 0:
		return quadRight
	case a > 0 && b <= 0:
		return quadBottom
	case a <= 0 && b > 0:
		return quadTop
	default:
		return quadLeft
	}
}

type clipNode struct {
	id            int64
	lat, lon      float64
	outside       bool
	quad          quadrant
}

// clipSegment drops s's nds that lie outside [latT,lonL,latB,lonR] (the
// tile rect already enlarged by the caller) and whose neighbours share
// its quadrant, per the data model's clipping rule. Nodes with no
// stored coordinate are silently dropped from consideration — a missing
// NodeCoord is tolerated everywhere in this pipeline, not an error.
func (b *Builder) clipSegment(s *segment, latT, lonL, latB, lonR float64) ([]int64, error) {
	centerLat := (latT + latB) / 2
	centerLon := (lonL + lonR) / 2

	nodes := make([]clipNode, 0, len(s.nds))
	for _, id := range s.nds {
		nc, ok, err := b.nodeCoord(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		outside := nc.Lat > latT || nc.Lat < latB || nc.Lon < lonL || nc.Lon > lonR
		n := clipNode{id: id, lat: nc.Lat, lon: nc.Lon, outside: outside}
		if outside {
			n.quad = classifyQuadrant(nc.Lat, nc.Lon, centerLat, centerLon)
		}
		nodes = append(nodes, n)
	}
	if len(nodes) < 2 {
		return nil, nil
	}

	loop := nodes[0].id == nodes[len(nodes)-1].id
	keep := make([]bool, len(nodes))
	for i := range nodes {
		keep[i] = true
	}

	for i := 1; i < len(nodes)-1; i++ {
		if nodes[i].outside && nodes[i].quad == nodes[i-1].quad && nodes[i].quad == nodes[i+1].quad {
			keep[i] = false
		}
	}

	if !loop && !s.member {
		if n := len(nodes); n >= 2 {
			if nodes[0].outside && nodes[0].quad == nodes[1].quad {
				keep[0] = false
			}
			if nodes[n-1].outside && nodes[n-1].quad == nodes[n-2].quad {
				keep[n-1] = false
			}
		}
	}

	out := make([]int64, 0, len(nodes))
	for i, n := range nodes {
		if keep[i] {
			out = append(out, n.id)
		}
	}
	return out, nil
}
