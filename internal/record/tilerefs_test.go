package record

import "testing"

func TestTileRefsRoundTrip(t *testing.T) {
	tr := TileRefs{TileID: 42, Refs: []int64{1, 2, 3}}
	blob := MarshalTileRefs(tr)
	count, capacity := CountAndCapacityOf(blob, 0)
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if capacity != 3+tileRefsInitialCapacity {
		t.Fatalf("capacity = %d, want %d", capacity, 3+tileRefsInitialCapacity)
	}
	got := UnmarshalTileRefs(blob, 0)
	if got.TileID != tr.TileID || len(got.Refs) != len(tr.Refs) {
		t.Fatalf("UnmarshalTileRefs = %+v, want %+v", got, tr)
	}
	for i := range tr.Refs {
		if got.Refs[i] != tr.Refs[i] {
			t.Fatalf("ref %d = %d, want %d", i, got.Refs[i], tr.Refs[i])
		}
	}
}

func TestAppendTileRefInPlace(t *testing.T) {
	blob := MarshalTileRefs(TileRefs{TileID: 1, Refs: []int64{100}})
	for i := int64(0); i < tileRefsInitialCapacity; i++ {
		if !AppendTileRef(blob, 0, 200+i) {
			t.Fatalf("AppendTileRef failed at i=%d before reaching capacity", i)
		}
	}
	if AppendTileRef(blob, 0, 999) {
		t.Fatalf("AppendTileRef succeeded past capacity")
	}
	refs := RefsOf(blob, 0)
	if len(refs) != 1+tileRefsInitialCapacity {
		t.Fatalf("len(refs) = %d, want %d", len(refs), 1+tileRefsInitialCapacity)
	}
}

func TestGrowTileRefs(t *testing.T) {
	blob := MarshalTileRefs(TileRefs{TileID: 7, Refs: []int64{1, 2}})
	_, capBefore := CountAndCapacityOf(blob, 0)
	grown := GrowTileRefs(blob, 0)
	count, capAfter := CountAndCapacityOf(grown, 0)
	if capAfter != capBefore*2 {
		t.Fatalf("capAfter = %d, want %d", capAfter, capBefore*2)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if !AppendTileRef(grown, 0, 3) {
		t.Fatalf("AppendTileRef failed on grown blob")
	}
	refs := RefsOf(grown, 0)
	if len(refs) != 3 || refs[2] != 3 {
		t.Fatalf("refs = %v, want [.., .., 3]", refs)
	}
}

func TestSizeOfTileRefsIncludesCapacity(t *testing.T) {
	blob := MarshalTileRefs(TileRefs{TileID: 1, Refs: []int64{1, 2}})
	want := TileRefsHeaderSize + tileRefSize*(2+tileRefsInitialCapacity)
	if got := SizeOfTileRefs(blob, 0); got != want {
		t.Fatalf("SizeOfTileRefs = %d, want %d", got, want)
	}
}
