package record

import "testing"

func TestSizeOfMatchesMarshaledLength(t *testing.T) {
	cases := []struct {
		kind Kind
		blob []byte
	}{
		{KindNodeCoord, MarshalNodeCoord(NodeCoord{Nid: 1})},
		{KindNodeInfo, MarshalNodeInfo(NodeInfo{Nid: 1, Name: "Eldorado Springs"})},
		{KindWayInfo, MarshalWayInfo(WayInfo{Wid: 1, Name: "Flagstaff Rd"})},
		{KindWayRange, MarshalWayRange(WayRange{Wid: 1})},
		{KindWayNds, MarshalWayNds(WayNds{Wid: 1, Nds: []int64{1, 2, 3}})},
		{KindRelInfo, MarshalRelInfo(RelInfo{Rid: 1, Name: "Boulder"})},
		{KindRelMembers, MarshalRelMembers(RelMembers{Rid: 1, Members: []Member{{Wid: 9}}})},
		{KindRelRange, MarshalRelRange(RelRange{Rid: 1})},
		{KindTileRefs, MarshalTileRefs(TileRefs{TileID: 1, Refs: []int64{1, 2}})},
	}
	for _, c := range cases {
		if got := SizeOf(c.kind, c.blob, 0); got != len(c.blob) {
			t.Errorf("SizeOf(%v) = %d, want %d", c.kind, got, len(c.blob))
		}
	}
}

func TestMinorIDOfMatchesChunkSplit(t *testing.T) {
	blob := MarshalWayInfo(WayInfo{Wid: 4205, Name: "Sunshine Canyon"})
	_, wantMinor := MajorMinor(4205)
	if got := MinorIDOf(KindWayInfo, blob, 0); got != wantMinor {
		t.Fatalf("MinorIDOf = %d, want %d", got, wantMinor)
	}
}

func TestMinorIDOfTileRefsIsAlwaysZero(t *testing.T) {
	blob := MarshalTileRefs(TileRefs{TileID: 918273, Refs: []int64{1}})
	if got := MinorIDOf(KindTileRefs, blob, 0); got != 0 {
		t.Fatalf("MinorIDOf(TileRefs) = %d, want 0", got)
	}
}
