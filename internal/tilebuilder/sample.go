package tilebuilder

import (
	"math"

	"github.com/jeffboody/osmdb/internal/coord"
)

// minDistMeters is the decimation threshold for a tile at (zoom, x, y):
// an eighth of the tile's ground diagonal, normalised by the diagonal of
// a 256x256 pixel tile so min_dist scales with zoom the way a rendered
// tile's effective resolution does.
func minDistMeters(zoom, x, y int) float64 {
	diag := coord.TileDiagonalMeters(zoom, x, y)
	return (diag / 8) / math.Sqrt(2*256*256)
}

// sampleSegment keeps s's first and last node unconditionally and every
// interior node whose 3-D straight-line distance from the previously
// kept node is at least minDist, decimating dense geometry before
// clipping and serialisation. A node with no stored coordinate can't be
// measured against its neighbour and is kept rather than silently
// dropped.
func (b *Builder) sampleSegment(s *segment, minDist float64) ([]int64, error) {
	if len(s.nds) == 0 {
		return nil, nil
	}
	if len(s.nds) <= 2 {
		out := make([]int64, len(s.nds))
		copy(out, s.nds)
		return out, nil
	}

	kept := make([]int64, 0, len(s.nds))
	kept = append(kept, s.nds[0])

	lastXYZ, lastOK, err := b.nodeXYZ(s.nds[0])
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(s.nds)-1; i++ {
		p, ok, err := b.nodeXYZ(s.nds[i])
		if err != nil {
			return nil, err
		}
		if !ok || !lastOK {
			kept = append(kept, s.nds[i])
			lastXYZ, lastOK = p, ok
			continue
		}
		if p.Sub(lastXYZ).Length() >= minDist {
			kept = append(kept, s.nds[i])
			lastXYZ = p
		}
	}

	kept = append(kept, s.nds[len(s.nds)-1])
	return kept, nil
}
