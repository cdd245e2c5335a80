package tilebuilder

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/osmimport"
	"github.com/jeffboody/osmdb/internal/record"
)

// entityRefs returns the ids of every entity of class class whose
// reverse index overlaps tile (zoom, x, y), reading from whichever
// precomputed zoom tier covers the requested tile:
//   - zoom >= ZoomHi: the ZoomHi ancestor-or-self tile.
//   - ZoomLo <= zoom < ZoomHi: the ZoomLo ancestor tile.
//   - zoom < ZoomLo: no single precomputed tier is an ancestor, so every
//     ZoomLo descendant tile covering the requested bounds is unioned.
func (b *Builder) entityRefs(class record.EntityClass, zoom, x, y int) ([]int64, error) {
	switch {
	case zoom >= osmimport.ZoomHi:
		return b.ancestorRefs(class, record.ZoomHi, osmimport.ZoomHi, zoom, x, y)
	case zoom >= osmimport.ZoomLo:
		return b.ancestorRefs(class, record.ZoomLo, osmimport.ZoomLo, zoom, x, y)
	default:
		return b.descendantRefs(class, zoom, x, y)
	}
}

func (b *Builder) ancestorRefs(class record.EntityClass, tier record.ZoomTier, tierZoom, zoom, x, y int) ([]int64, error) {
	shift := uint(zoom - tierZoom)
	ax, ay := x>>shift, y>>shift
	return b.readTileRefs(record.TileRefsType(class, tier), coord.TileID(ax, ay))
}

func (b *Builder) descendantRefs(class record.EntityClass, zoom, x, y int) ([]int64, error) {
	latT, lonL, latB, lonR := coord.TileBounds(zoom, x, y)
	seen := make(map[int64]struct{})
	var out []int64
	for _, t := range coord.TilesInBounds(osmimport.ZoomLo, lonL, latB, lonR, latT) {
		tileID := coord.TileID(t[1], t[2])
		refs, err := b.readTileRefs(record.TileRefsType(class, record.ZoomLo), tileID)
		if err != nil {
			return nil, err
		}
		for _, id := range refs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

func (b *Builder) readTileRefs(t record.Type, tileID int64) ([]int64, error) {
	h, err := b.ix.Get(b.tid, t, tileID)
	if err != nil {
		return nil, fmt.Errorf("tilebuilder: reading tile refs: %w", err)
	}
	if h == nil {
		return nil, nil
	}
	blob, off := h.Blob()
	refs := record.RefsOf(blob, off)
	b.ix.Put(h)
	return refs, nil
}
