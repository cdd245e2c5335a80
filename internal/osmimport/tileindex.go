package osmimport

import (
	"fmt"
	"math"

	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/record"
)

// indexEntityTiles reverse-indexes id into every tile at both
// precomputed zoom tiers whose enlarged bounding box overlaps
// [latT,lonL,latB,lonR]. marginFrac is 1/16 for normal entities and 0
// for "centered" selections, per the data model.
func (im *Importer) indexEntityTiles(class record.EntityClass, id int64, latT, lonL, latB, lonR float64, marginFrac float64) error {
	for _, tier := range []struct {
		zoom int
		z    record.ZoomTier
	}{{ZoomLo, record.ZoomLo}, {ZoomHi, record.ZoomHi}} {
		typ := record.TileRefsType(class, tier.z)
		for _, t := range candidateTiles(tier.zoom, latT, lonL, latB, lonR, marginFrac) {
			z, x, y := t[0], t[1], t[2]
			if !coord.RangeOverlapsTile(latT, lonL, latB, lonR, z, x, y, marginFrac) {
				continue
			}
			tileID := coord.TileID(x, y)
			if err := im.ix.AddTile(0, typ, tileID, id); err != nil {
				return fmt.Errorf("osmimport: reverse-indexing %v id %d into tile z%d/%d/%d: %w", class, id, z, x, y, err)
			}
		}
	}
	return nil
}

// candidateTiles enumerates the tiles a margin-enlarged bounding box
// might overlap at zoom. The exact overlap test (coord.RangeOverlapsTile)
// is re-applied by the caller; this only needs to be a superset.
func candidateTiles(zoom int, latT, lonL, latB, lonR float64, marginFrac float64) [][3]int {
	n := math.Pow(2, float64(zoom))
	lonSpan := 360.0 / n
	margin := lonSpan * marginFrac
	return coord.TilesInBounds(zoom, lonL-margin, latB-margin, lonR+margin, latT+margin)
}

// midpoint collapses a bounding box to its center point, used for
// "centered" style selections.
func midpoint(latT, lonL, latB, lonR float64) (lat, lon float64) {
	return (latT + latB) / 2, (lonL + lonR) / 2
}
