package coord

// TileID packs a tile's (x, y) coordinate at a known zoom level into the
// int64 major_id the TileRefs storage types key on. Zoom itself is not
// part of the id: each zoom tier already has its own storage Type
// (node/way/rel TileRefs Lo/Hi), so two tiles at different zooms never
// collide even though their packed ids may coincide. Adapted from the
// Hilbert-ordered global tile id the reference archive format uses
// (internal/archive), simplified to a flat raster index since a single
// zoom tier's tiles never need cross-zoom ordering.
func TileID(x, y int) int64 {
	return int64(y)<<32 | int64(uint32(x))
}

// TileXY unpacks the (x, y) coordinate TileID packed.
func TileXY(id int64) (x, y int) {
	return int(int32(uint32(id))), int(id >> 32)
}
