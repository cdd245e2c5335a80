package coord

import "math"

// Tile-local output coordinates are signed 16-bit integers spanning
// [-16384, 16383] on each axis, matching the tile blob's on-disk
// encoding (see internal/tilebuilder/serialize.go). Longitude increases
// with x (west to east); latitude decreases with y (north to south),
// the conventional raster-style orientation.
const (
	TileLocalMin int16 = -16384
	TileLocalMax int16 = 16383
	tileLocalSpan       = int(TileLocalMax) - int(TileLocalMin) // 32767
)

// ToTileLocal maps a WGS-84 coordinate into a tile's signed-16-bit local
// coordinate space given the tile's enlarged bounding box
// (latT, lonL, latB, lonR). Coordinates outside the box saturate to the
// 16-bit endpoints rather than wrapping, so a clipped-but-retained
// endpoint still serializes to a sane value.
func ToTileLocal(lat, lon, latT, lonL, latB, lonR float64) (x, y int16) {
	var u, v float64
	if lonR != lonL {
		u = (lon - lonL) / (lonR - lonL)
	}
	if latT != latB {
		v = (latT - lat) / (latT - latB)
	}
	x = saturate16(float64(TileLocalMin) + u*float64(tileLocalSpan))
	y = saturate16(float64(TileLocalMin) + v*float64(tileLocalSpan))
	return
}

func saturate16(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < float64(TileLocalMin) {
		return TileLocalMin
	}
	if r > float64(TileLocalMax) {
		return TileLocalMax
	}
	return int16(r)
}
