package blobindex

import (
	"path/filepath"
	"testing"

	"github.com/jeffboody/osmdb/internal/record"
)

func openTestIndex(t *testing.T, mode Mode, smemGB float64) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	ix, err := Open(Options{Path: path, Mode: mode, SmemGB: smemGB})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = ix.Close()
	})
	return ix
}

func TestAddGetRoundTrip(t *testing.T) {
	ix := openTestIndex(t, Create, 1)
	blob := record.MarshalNodeCoord(record.NodeCoord{Nid: 7, Lat: 40.0, Lon: -105.0})
	if err := ix.Add(0, record.TypeNodeCoord, 7, blob); err != nil {
		t.Fatalf("Add: %v", err)
	}
	h, err := ix.Get(0, record.TypeNodeCoord, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h == nil {
		t.Fatalf("Get returned nil handle")
	}
	defer ix.Put(h)
	b, off := h.Blob()
	nc := record.UnmarshalNodeCoord(b, off)
	if nc.Nid != 7 || nc.Lat != 40.0 || nc.Lon != -105.0 {
		t.Fatalf("NodeCoord = %+v", nc)
	}
}

func TestGetMissingReturnsNilNotError(t *testing.T) {
	ix := openTestIndex(t, Create, 1)
	h, err := ix.Get(0, record.TypeNodeCoord, 999)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil handle for missing record")
	}
}

func TestAddTileAccumulatesRefs(t *testing.T) {
	ix := openTestIndex(t, Create, 1)
	for i := int64(0); i < 12; i++ {
		if err := ix.AddTile(0, record.TypeWayTileRefsLo, 5, i); err != nil {
			t.Fatalf("AddTile(%d): %v", i, err)
		}
	}
	h, err := ix.Get(0, record.TypeWayTileRefsLo, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if h == nil {
		t.Fatalf("expected TileRefs handle")
	}
	defer ix.Put(h)
	b, off := h.Blob()
	refs := record.RefsOf(b, off)
	if len(refs) != 12 {
		t.Fatalf("len(refs) = %d, want 12", len(refs))
	}
}

func TestChangesetRoundTrip(t *testing.T) {
	ix := openTestIndex(t, Create, 1)
	if err := ix.SetChangeset(42); err != nil {
		t.Fatalf("SetChangeset: %v", err)
	}
	if got := ix.Changeset(); got != 42 {
		t.Fatalf("Changeset = %d, want 42", got)
	}
	// Lower values are ignored; the store tracks a running maximum.
	if err := ix.SetChangeset(10); err != nil {
		t.Fatalf("SetChangeset: %v", err)
	}
	if got := ix.Changeset(); got != 42 {
		t.Fatalf("Changeset = %d, want 42 after lower SetChangeset", got)
	}
}

func TestEvictionPreservesBytes(t *testing.T) {
	// A tiny cache target forces eviction on nearly every Add.
	ix := openTestIndex(t, Create, 0)
	ix.cache.targetBytes = 1

	const n = 500
	for i := int64(0); i < n; i++ {
		blob := record.MarshalNodeCoord(record.NodeCoord{Nid: i, Lat: float64(i), Lon: -float64(i)})
		if err := ix.Add(0, record.TypeNodeCoord, i, blob); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	for i := int64(0); i < n; i++ {
		h, err := ix.Get(0, record.TypeNodeCoord, i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if h == nil {
			t.Fatalf("Get(%d) returned nil after eviction", i)
		}
		b, off := h.Blob()
		nc := record.UnmarshalNodeCoord(b, off)
		ix.Put(h)
		if nc.Nid != i || nc.Lat != float64(i) {
			t.Fatalf("NodeCoord(%d) = %+v, corrupted by eviction round-trip", i, nc)
		}
	}
}
