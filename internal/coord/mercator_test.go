package coord

import (
	"math"
	"testing"
)

func TestLonLatToTile(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		zoom     int
		wantX    int
		wantY    int
	}{
		{"origin z0", 0, 0, 0, 0, 0},
		{"london z10", -0.1278, 51.5074, 10, 511, 340},
		{"nyc z10", -74.0060, 40.7128, 10, 301, 385},
		{"south pole clamped", 0, -89.9, 1, 1, 1},
		{"north pole clamped", 0, 89.9, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := LonLatToTile(tt.lon, tt.lat, tt.zoom)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("LonLatToTile(%.4f, %.4f, %d) = (%d, %d), want (%d, %d)",
					tt.lon, tt.lat, tt.zoom, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestTileBounds_AdjacentTilesShare(t *testing.T) {
	_, _, _, lonR0 := TileBounds(2, 0, 0)
	_, lonL1, _, _ := TileBounds(2, 1, 0)
	if math.Abs(lonR0-lonL1) > 1e-10 {
		t.Errorf("adjacent tile edge mismatch: lonR(0)=%v lonL(1)=%v", lonR0, lonL1)
	}

	latTop, _, latBot, _ := TileBounds(2, 0, 0)
	if latTop <= latBot {
		t.Errorf("tile 0 should have latT > latB, got %v <= %v", latTop, latBot)
	}
	nextTop, _, _, _ := TileBounds(2, 0, 1)
	if math.Abs(latBot-nextTop) > 1e-10 {
		t.Errorf("row seam mismatch: latB(row0)=%v latT(row1)=%v", latBot, nextTop)
	}
}

func TestRangeOverlapsTile_MarginCatchesEdgeCase(t *testing.T) {
	z, x, y := 10, 511, 340
	latT, lonL, latB, lonR := TileBounds(z, x, y)

	// An entity entirely inside the tile overlaps.
	if !RangeOverlapsTile(latT-0.0001, lonL+0.0001, latB+0.0001, lonR-0.0001, z, x, y, 1.0/16) {
		t.Error("entity inside tile should overlap")
	}

	// An entity just outside the unenlarged tile, but within the 1/16
	// margin, must still overlap.
	dLon := (lonR - lonL) / 32
	justOutside := lonL - dLon
	if !RangeOverlapsTile(latT, justOutside, latB, justOutside, z, x, y, 1.0/16) {
		t.Error("entity within margin should overlap")
	}

	// An entity far outside does not overlap.
	if RangeOverlapsTile(latT, lonL-10, latB, lonL-10, z, x, y, 1.0/16) {
		t.Error("entity far outside should not overlap")
	}
}

func TestTilesInBounds(t *testing.T) {
	tiles := TilesInBounds(10, 8.4, 47.3, 8.6, 47.5)
	if len(tiles) == 0 {
		t.Fatal("TilesInBounds returned no tiles")
	}
	for _, tl := range tiles {
		if tl[0] != 10 {
			t.Errorf("expected zoom 10, got %d", tl[0])
		}
	}
}

func TestEarthXYZ_TurningCosine(t *testing.T) {
	p0 := EarthXYZ(0, 0)
	p1 := EarthXYZ(0, 0.01)
	p2 := EarthXYZ(0, 0.02)

	cos := TurningCosine(p0, p1, p2)
	if cos < 0.999 {
		t.Errorf("straight path should have cos ~= 1, got %v", cos)
	}

	p2sharp := EarthXYZ(0.02, 0.01) // turns ~90 degrees at p1
	cosSharp := TurningCosine(p0, p1, p2sharp)
	if cosSharp > MaxJoinCosine {
		t.Errorf("sharp turn should be rejected by the 30-degree threshold, cos=%v threshold=%v", cosSharp, MaxJoinCosine)
	}
}

func TestToTileLocal_Saturates(t *testing.T) {
	latT, lonL, latB, lonR := 1.0, -1.0, -1.0, 1.0

	x, y := ToTileLocal(0, 0, latT, lonL, latB, lonR)
	if x < TileLocalMin || x > TileLocalMax || y < TileLocalMin || y > TileLocalMax {
		t.Errorf("center coordinate out of range: (%d, %d)", x, y)
	}

	// Far outside the box saturates rather than wrapping.
	xOut, yOut := ToTileLocal(1000, 1000, latT, lonL, latB, lonR)
	if xOut != TileLocalMax || yOut != TileLocalMin {
		t.Errorf("expected saturation to (%d, %d), got (%d, %d)", TileLocalMax, TileLocalMin, xOut, yOut)
	}
}
