package record

import "testing"

func TestRelInfoRoundTrip(t *testing.T) {
	r := RelInfo{Rid: 77, Nid: 55, Class: 9, Flags: WayFlags32(FlagBuilding), Type: RelMultipolygon, Name: "Rocky Flats"}
	blob := MarshalRelInfo(r)
	if got := SizeOfRelInfo(blob, 0); got != len(blob) {
		t.Fatalf("SizeOfRelInfo = %d, want %d", got, len(blob))
	}
	got := UnmarshalRelInfo(blob, 0)
	if got != r {
		t.Fatalf("UnmarshalRelInfo = %+v, want %+v", got, r)
	}
}

func TestRelInfoNoName(t *testing.T) {
	r := RelInfo{Rid: 1, Type: RelBoundary}
	blob := MarshalRelInfo(r)
	if got := NameOfRelInfo(blob, 0); got != "" {
		t.Fatalf("NameOfRelInfo = %q, want empty", got)
	}
}

func TestRelMembersRoundTrip(t *testing.T) {
	m := RelMembers{
		Rid: 3,
		Members: []Member{
			{Wid: 10, Inner: false},
			{Wid: 11, Inner: true},
			{Wid: 12, Inner: true},
		},
	}
	blob := MarshalRelMembers(m)
	if got := SizeOfRelMembers(blob, 0); got != len(blob) {
		t.Fatalf("SizeOfRelMembers = %d, want %d", got, len(blob))
	}
	got := UnmarshalRelMembers(blob, 0)
	if got.Rid != m.Rid || len(got.Members) != len(m.Members) {
		t.Fatalf("UnmarshalRelMembers = %+v, want %+v", got, m)
	}
	for i := range m.Members {
		if got.Members[i] != m.Members[i] {
			t.Fatalf("member %d = %+v, want %+v", i, got.Members[i], m.Members[i])
		}
	}
}

func TestRelRangeRoundTrip(t *testing.T) {
	r := RelRange{Rid: 5, LatT: 40.1, LonL: -105.3, LatB: 39.9, LonR: -105.0}
	blob := MarshalRelRange(r)
	if len(blob) != RelRangeSize {
		t.Fatalf("len(blob) = %d, want %d", len(blob), RelRangeSize)
	}
	if got := UnmarshalRelRange(blob, 0); got != r {
		t.Fatalf("UnmarshalRelRange = %+v, want %+v", got, r)
	}
}

func TestUnionRange(t *testing.T) {
	latT, lonL, latB, lonR := UnionRange(40.0, -105.0, 39.0, -104.0, 41.0, -106.0, 38.5, -103.5)
	if latT != 41.0 || lonL != -106.0 || latB != 38.5 || lonR != -103.5 {
		t.Fatalf("UnionRange = (%v,%v,%v,%v)", latT, lonL, latB, lonR)
	}
}
