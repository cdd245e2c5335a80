package coord

import "testing"

func TestTileIDRoundTrip(t *testing.T) {
	cases := [][2]int{{0, 0}, {511, 511}, {16383, 16383}, {1, 0}, {0, 1}}
	for _, c := range cases {
		id := TileID(c[0], c[1])
		x, y := TileXY(id)
		if x != c[0] || y != c[1] {
			t.Fatalf("TileXY(TileID(%d,%d)) = (%d,%d)", c[0], c[1], x, y)
		}
	}
}
