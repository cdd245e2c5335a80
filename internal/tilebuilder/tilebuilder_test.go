package tilebuilder

import (
	"path/filepath"
	"testing"

	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/osmimport"
	"github.com/jeffboody/osmdb/internal/record"
)

func newTestIndex(t *testing.T) *blobindex.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	ix, err := blobindex.Open(blobindex.Options{Path: path, Mode: blobindex.Create, SmemGB: 1})
	if err != nil {
		t.Fatalf("blobindex.Open: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func putNodeCoord(t *testing.T, ix *blobindex.Index, nid int64, lat, lon float64) {
	t.Helper()
	if err := ix.Add(0, record.TypeNodeCoord, nid, record.MarshalNodeCoord(record.NodeCoord{Nid: nid, Lat: lat, Lon: lon})); err != nil {
		t.Fatalf("Add NodeCoord %d: %v", nid, err)
	}
}

func putWay(t *testing.T, ix *blobindex.Index, wid int64, nds []int64, info record.WayInfo) {
	t.Helper()
	if err := ix.Add(0, record.TypeWayNds, wid, record.MarshalWayNds(record.WayNds{Wid: wid, Nds: nds})); err != nil {
		t.Fatalf("Add WayNds %d: %v", wid, err)
	}
	latT, lonL, latB, lonR := -90.0, 180.0, 90.0, -180.0
	for _, nid := range nds {
		h, err := ix.Get(0, record.TypeNodeCoord, nid)
		if err != nil || h == nil {
			t.Fatalf("node %d coord missing while computing range", nid)
		}
		blob, off := h.Blob()
		nc := record.UnmarshalNodeCoord(blob, off)
		ix.Put(h)
		latT, lonL, latB, lonR = record.UnionRange(latT, lonL, latB, lonR, nc.Lat, nc.Lon, nc.Lat, nc.Lon)
	}
	rng := record.WayRange{Wid: wid, LatT: latT, LonL: lonL, LatB: latB, LonR: lonR}
	if err := ix.Add(0, record.TypeWayRange, wid, record.MarshalWayRange(rng)); err != nil {
		t.Fatalf("Add WayRange %d: %v", wid, err)
	}
	info.Wid = wid
	if err := ix.Add(0, record.TypeWayInfo, wid, record.MarshalWayInfo(info)); err != nil {
		t.Fatalf("Add WayInfo %d: %v", wid, err)
	}
}

// indexWayAtZoomHi reverse-indexes wid into the ZoomHi tile containing
// (lat, lon), the minimal fixture a test tile's way-TileRefs needs.
func indexWayAtZoomHi(t *testing.T, ix *blobindex.Index, wid int64, lat, lon float64) (zoom, x, y int) {
	t.Helper()
	x, y = coord.LonLatToTile(lon, lat, osmimport.ZoomHi)
	tileID := coord.TileID(x, y)
	if err := ix.AddTile(0, record.TileRefsType(record.EntityWay, record.ZoomHi), tileID, wid); err != nil {
		t.Fatalf("AddTile way %d: %v", wid, err)
	}
	return osmimport.ZoomHi, x, y
}

func TestBuildTileNullTile(t *testing.T) {
	ix := newTestIndex(t)
	b := New(ix, 0)

	blob, err := b.BuildTile(3, 0, 0, 0)
	if err != nil {
		t.Fatalf("BuildTile: %v", err)
	}
	if len(blob) != tileHeaderSize {
		t.Fatalf("len(blob) = %d, want %d (sizeof TileHeader)", len(blob), tileHeaderSize)
	}

	tile, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tile.Rels) != 0 || len(tile.Ways) != 0 || len(tile.Nodes) != 0 {
		t.Fatalf("Tile = %+v, want all-empty", tile)
	}
}

func TestBuildTileSingleWay(t *testing.T) {
	ix := newTestIndex(t)
	putNodeCoord(t, ix, 1, 40.000, -105.270)
	putNodeCoord(t, ix, 2, 40.001, -105.269)
	putNodeCoord(t, ix, 3, 40.002, -105.268)
	putWay(t, ix, 10, []int64{1, 2, 3}, record.WayInfo{Class: 90, Name: "Test"})
	zoom, x, y := indexWayAtZoomHi(t, ix, 10, 40.001, -105.269)

	b := New(ix, 0)
	blob, err := b.BuildTile(zoom, x, y, 0)
	if err != nil {
		t.Fatalf("BuildTile: %v", err)
	}
	tile, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tile.Ways) != 1 {
		t.Fatalf("len(tile.Ways) = %d, want 1", len(tile.Ways))
	}
	way := tile.Ways[0]
	if way.Name != "Test" {
		t.Fatalf("way.Name = %q, want %q", way.Name, "Test")
	}
	if len(way.Points) != 3 {
		t.Fatalf("len(way.Points) = %d, want 3", len(way.Points))
	}
}

func TestBuildTileJoinsCompatibleWays(t *testing.T) {
	ix := newTestIndex(t)
	// A near-straight chain 1-2-3-4-5 split into two ways meeting at node
	// 3, with matching class/flags/layer/name so they are join candidates.
	putNodeCoord(t, ix, 1, 40.0000, -105.270)
	putNodeCoord(t, ix, 2, 40.0005, -105.270)
	putNodeCoord(t, ix, 3, 40.0010, -105.270)
	putNodeCoord(t, ix, 4, 40.0015, -105.270)
	putNodeCoord(t, ix, 5, 40.0020, -105.270)
	info := record.WayInfo{Class: 90, Name: "Through Street"}
	putWay(t, ix, 10, []int64{1, 2, 3}, info)
	putWay(t, ix, 11, []int64{3, 4, 5}, info)
	zoom, x, y := indexWayAtZoomHi(t, ix, 10, 40.0010, -105.270)
	indexWayAtZoomHi(t, ix, 11, 40.0010, -105.270)

	b := New(ix, 0)
	blob, err := b.BuildTile(zoom, x, y, 0)
	if err != nil {
		t.Fatalf("BuildTile: %v", err)
	}
	tile, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tile.Ways) != 1 {
		t.Fatalf("len(tile.Ways) = %d, want 1 (ways should have joined)", len(tile.Ways))
	}
}

func TestBuildTileRejectsSharpAngleJoin(t *testing.T) {
	ix := newTestIndex(t)
	// Same shared node 3, but way B turns sharply back on itself so the
	// turning angle at the junction exceeds 30 degrees.
	putNodeCoord(t, ix, 1, 40.0000, -105.2700)
	putNodeCoord(t, ix, 2, 40.0005, -105.2700)
	putNodeCoord(t, ix, 3, 40.0010, -105.2700)
	putNodeCoord(t, ix, 4, 40.0005, -105.2695)
	putNodeCoord(t, ix, 5, 40.0000, -105.2695)
	info := record.WayInfo{Class: 90, Name: "Sharp Turn"}
	putWay(t, ix, 10, []int64{1, 2, 3}, info)
	putWay(t, ix, 11, []int64{3, 4, 5}, info)
	zoom, x, y := indexWayAtZoomHi(t, ix, 10, 40.0010, -105.2700)
	indexWayAtZoomHi(t, ix, 11, 40.0010, -105.2700)

	b := New(ix, 0)
	blob, err := b.BuildTile(zoom, x, y, 0)
	if err != nil {
		t.Fatalf("BuildTile: %v", err)
	}
	tile, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tile.Ways) != 2 {
		t.Fatalf("len(tile.Ways) = %d, want 2 (sharp angle should block the join)", len(tile.Ways))
	}
}
