package archive

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestHeaderSerialize_MagicAndVersion(t *testing.T) {
	h := Header{MinZoom: 3, MaxZoom: 15, TileType: TypeOSMDB}
	buf := h.Serialize()

	if len(buf) != HeaderSize {
		t.Fatalf("header size = %d, want %d", len(buf), HeaderSize)
	}
	if string(buf[0:7]) != magic {
		t.Errorf("magic = %q, want %q", buf[0:7], magic)
	}
	if buf[7] != archiveVersion {
		t.Errorf("version = %d, want %d", buf[7], archiveVersion)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		RootDirOffset:       127,
		RootDirLength:       500,
		MetadataOffset:      627,
		MetadataLength:      100,
		TileDataOffset:      727,
		TileDataLength:      50000,
		NumAddressedTiles:   100,
		NumTileEntries:      80,
		NumTileContents:     80,
		Clustered:           true,
		InternalCompression: CompressionGzip,
		TileCompression:     CompressionNone,
		TileType:            TypeOSMDB,
		MinZoom:             9,
		MaxZoom:             14,
		MinLon:              -105.3,
		MinLat:              39.9,
		MaxLon:              -105.2,
		MaxLat:              40.1,
		Changeset:           123456789,
	}

	got, err := DeserializeHeader(h.Serialize())
	if err != nil {
		t.Fatalf("DeserializeHeader: %v", err)
	}
	if got.RootDirOffset != h.RootDirOffset || got.TileDataLength != h.TileDataLength {
		t.Fatalf("offsets/lengths did not round-trip: got %+v", got)
	}
	if got.NumAddressedTiles != h.NumAddressedTiles || got.NumTileEntries != h.NumTileEntries {
		t.Fatalf("counts did not round-trip: got %+v", got)
	}
	if got.MinZoom != h.MinZoom || got.MaxZoom != h.MaxZoom {
		t.Fatalf("zoom range did not round-trip: got %+v", got)
	}
	if got.Changeset != h.Changeset {
		t.Fatalf("Changeset = %d, want %d", got.Changeset, h.Changeset)
	}
	if !got.Clustered || got.TileType != TypeOSMDB {
		t.Fatalf("flags did not round-trip: got %+v", got)
	}

	tol := float32(1e-4)
	if abs32(got.MinLon-h.MinLon) > tol || abs32(got.MaxLat-h.MaxLat) > tol {
		t.Fatalf("bounds did not round-trip within tolerance: got %+v", got)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestGlobalTileIDRoundTrip(t *testing.T) {
	cases := []struct{ zoom, x, y int }{
		{0, 0, 0},
		{3, 0, 0},
		{3, 7, 5},
		{9, 100, 200},
		{14, 5000, 6000},
	}
	for _, c := range cases {
		id := GlobalTileID(c.zoom, c.x, c.y)
		gz, gx, gy := GlobalTileIDToZXY(id)
		if gz != c.zoom || gx != c.x || gy != c.y {
			t.Errorf("GlobalTileIDToZXY(GlobalTileID(%d,%d,%d)) = (%d,%d,%d), want (%d,%d,%d)",
				c.zoom, c.x, c.y, gz, gx, gy, c.zoom, c.x, c.y)
		}
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "test.osmdb")

	opts := WriterOptions{
		Name:      "osmdbv6",
		Pattern:   "zoom/x/y",
		Ext:       "osmdb",
		MinZoom:   3,
		MaxZoom:   15,
		Bounds:    Bounds{LatT: 41, LonL: -106, LatB: 39, LonR: -104},
		Changeset: 99,
	}
	w, err := NewWriter(outPath, opts)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	tiles := [][3]int{
		{3, 0, 0},
		{3, 1, 0},
		{5, 0, 0},
		{5, 1, 1},
		{9, 100, 200},
	}
	for i, tile := range tiles {
		data := []byte{byte(i), byte(i + 1), byte(i + 2)}
		if err := w.WriteTile(tile[0], tile[1], tile[2], data); err != nil {
			t.Fatalf("WriteTile(%d,%d,%d): %v", tile[0], tile[1], tile[2], err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r, err := OpenReader(outPath)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.NumTiles() != len(tiles) {
		t.Fatalf("NumTiles() = %d, want %d", r.NumTiles(), len(tiles))
	}
	for i, tile := range tiles {
		got, err := r.ReadTile(tile[0], tile[1], tile[2])
		if err != nil {
			t.Fatalf("ReadTile(%d,%d,%d): %v", tile[0], tile[1], tile[2], err)
		}
		want := []byte{byte(i), byte(i + 1), byte(i + 2)}
		if string(got) != string(want) {
			t.Errorf("ReadTile(%d,%d,%d) = %v, want %v", tile[0], tile[1], tile[2], got, want)
		}
	}

	missing, err := r.ReadTile(3, 5, 5)
	if err != nil {
		t.Fatalf("ReadTile(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("ReadTile(missing) = %v, want nil", missing)
	}

	meta, err := r.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta["name"] != "osmdbv6" || meta["pattern"] != "zoom/x/y" || meta["ext"] != "osmdb" {
		t.Fatalf("Metadata = %+v, want name/pattern/ext set", meta)
	}
	if int64(meta["changeset"].(float64)) != 99 {
		t.Errorf("Metadata changeset = %v, want 99", meta["changeset"])
	}
}

func TestWriterDeduplicatesIdenticalTiles(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "dedup.osmdb")

	w, err := NewWriter(outPath, WriterOptions{MinZoom: 3, MaxZoom: 3})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	same := []byte("identical-tile-blob")
	tiles := [][3]int{{3, 0, 0}, {3, 1, 0}, {3, 2, 0}}
	for _, tile := range tiles {
		if err := w.WriteTile(tile[0], tile[1], tile[2], same); err != nil {
			t.Fatalf("WriteTile: %v", err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	numAddressed := binary.LittleEndian.Uint64(data[72:80])
	numContents := binary.LittleEndian.Uint64(data[88:96])
	if numAddressed != 3 {
		t.Errorf("NumAddressedTiles = %d, want 3", numAddressed)
	}
	if numContents != 1 {
		t.Errorf("NumTileContents = %d, want 1 (all three tiles are identical)", numContents)
	}
}

func TestWriterSkipsEmptyTile(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "empty.osmdb")

	w, err := NewWriter(outPath, WriterOptions{MinZoom: 3, MaxZoom: 3})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteTile(3, 0, 0, nil); err != nil {
		t.Fatalf("WriteTile(nil): %v", err)
	}
	if err := w.WriteTile(3, 1, 0, []byte("data")); err != nil {
		t.Fatalf("WriteTile: %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r, err := OpenReader(outPath)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if r.NumTiles() != 1 {
		t.Errorf("NumTiles() = %d, want 1 (the nil tile should have been skipped)", r.NumTiles())
	}
}

func TestWriterDoubleFinalize(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "double.osmdb")

	w, err := NewWriter(outPath, WriterOptions{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.WriteTile(3, 0, 0, []byte("data"))
	if err := w.Finalize(); err != nil {
		t.Fatalf("first Finalize: %v", err)
	}
	if err := w.Finalize(); err == nil {
		t.Error("second Finalize should return an error")
	}
}

func TestWriterAbort(t *testing.T) {
	tmpDir := t.TempDir()
	outPath := filepath.Join(tmpDir, "aborted.osmdb")

	w, err := NewWriter(outPath, WriterOptions{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.WriteTile(3, 0, 0, []byte("data"))
	w.Abort()

	if _, err := os.Stat(outPath); err == nil {
		t.Error("output file should not exist after Abort")
	}
}
