package record

import "encoding/binary"

// RelInfoHeaderSize is the fixed portion preceding the optional name tail.
const RelInfoHeaderSize = 32

// RelInfo carries a relation's label node (admin_centre/label member, or 0),
// class, flags, type and optional display name.
type RelInfo struct {
	Rid   int64
	Nid   int64 // label/admin_centre node id, or 0
	Class uint32
	Flags WayFlags32
	Type  RelType
	Name  string
}

// MarshalRelInfo encodes a RelInfo, padding the name to a multiple of
// four bytes.
func MarshalRelInfo(r RelInfo) []byte {
	nameBytes, sizeName := packName(r.Name)
	buf := make([]byte, RelInfoHeaderSize+sizeName)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Rid))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(r.Nid))
	binary.LittleEndian.PutUint32(buf[16:20], r.Class)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(r.Flags))
	buf[24] = byte(r.Type)
	// buf[25:28] reserved padding.
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sizeName))
	copy(buf[RelInfoHeaderSize:], nameBytes)
	return buf
}

// SizeOfRelInfo returns the byte size of the RelInfo record at blob[offset:].
func SizeOfRelInfo(blob []byte, offset int) int {
	sizeName := binary.LittleEndian.Uint32(blob[offset+28 : offset+32])
	return RelInfoHeaderSize + int(sizeName)
}

// UnmarshalRelInfo decodes a RelInfo from blob[offset:].
func UnmarshalRelInfo(blob []byte, offset int) RelInfo {
	b := blob[offset:]
	sizeName := binary.LittleEndian.Uint32(b[28:32])
	return RelInfo{
		Rid:   int64(binary.LittleEndian.Uint64(b[0:8])),
		Nid:   int64(binary.LittleEndian.Uint64(b[8:16])),
		Class: binary.LittleEndian.Uint32(b[16:20]),
		Flags: WayFlags32(binary.LittleEndian.Uint32(b[20:24])),
		Type:  RelType(b[24]),
		Name:  unpackName(b[RelInfoHeaderSize : RelInfoHeaderSize+int(sizeName)]),
	}
}

// NameOfRelInfo returns the name stored at blob[offset:], or "" if absent.
func NameOfRelInfo(blob []byte, offset int) string {
	sizeName := binary.LittleEndian.Uint32(blob[offset+28 : offset+32])
	if sizeName == 0 {
		return ""
	}
	start := offset + RelInfoHeaderSize
	return unpackName(blob[start : start+int(sizeName)])
}

// RelMembersHeaderSize is the fixed portion preceding the member array.
const RelMembersHeaderSize = 16

// relMemberSize is the packed size of one Member: wid (8) + inner flag (1)
// padded to 8 bytes for uniform alignment of the array.
const relMemberSize = 16

// Member is one way reference inside a RelMembers record.
type Member struct {
	Wid   int64
	Inner bool
}

// RelMembers is the ordered list of way members of a relation. An
// optional admin_centre/label node member is not stored here — it lives
// in RelInfo.Nid instead.
type RelMembers struct {
	Rid     int64
	Members []Member
}

// MarshalRelMembers encodes a RelMembers into a fresh byte slice.
func MarshalRelMembers(m RelMembers) []byte {
	buf := make([]byte, RelMembersHeaderSize+relMemberSize*len(m.Members))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.Rid))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(m.Members)))
	for i, mem := range m.Members {
		off := RelMembersHeaderSize + relMemberSize*i
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(mem.Wid))
		if mem.Inner {
			buf[off+8] = 1
		}
	}
	return buf
}

// SizeOfRelMembers returns the byte size of the RelMembers record at
// blob[offset:].
func SizeOfRelMembers(blob []byte, offset int) int {
	count := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	return RelMembersHeaderSize + relMemberSize*int(count)
}

// UnmarshalRelMembers decodes a RelMembers from blob[offset:].
func UnmarshalRelMembers(blob []byte, offset int) RelMembers {
	b := blob[offset:]
	return RelMembers{
		Rid:     int64(binary.LittleEndian.Uint64(b[0:8])),
		Members: MembersOf(blob, offset),
	}
}

// MembersOf decodes the member slice of a RelMembers record at
// blob[offset:].
func MembersOf(blob []byte, offset int) []Member {
	count := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	members := make([]Member, count)
	base := offset + RelMembersHeaderSize
	for i := range members {
		off := base + relMemberSize*i
		members[i] = Member{
			Wid:   int64(binary.LittleEndian.Uint64(blob[off : off+8])),
			Inner: blob[off+8] != 0,
		}
	}
	return members
}

// RelRangeSize is the fixed byte size of a RelRange record.
const RelRangeSize = 40

// RelRange is the union of a relation's member WayRanges.
type RelRange struct {
	Rid  int64
	LatT float64
	LonL float64
	LatB float64
	LonR float64
}

// MarshalRelRange encodes a RelRange into a fresh byte slice.
func MarshalRelRange(r RelRange) []byte {
	buf := make([]byte, RelRangeSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Rid))
	binary.LittleEndian.PutUint64(buf[8:16], float64bits(r.LatT))
	binary.LittleEndian.PutUint64(buf[16:24], float64bits(r.LonL))
	binary.LittleEndian.PutUint64(buf[24:32], float64bits(r.LatB))
	binary.LittleEndian.PutUint64(buf[32:40], float64bits(r.LonR))
	return buf
}

// UnmarshalRelRange decodes a RelRange from blob[offset:].
func UnmarshalRelRange(blob []byte, offset int) RelRange {
	b := blob[offset:]
	return RelRange{
		Rid:  int64(binary.LittleEndian.Uint64(b[0:8])),
		LatT: float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		LonL: float64frombits(binary.LittleEndian.Uint64(b[16:24])),
		LatB: float64frombits(binary.LittleEndian.Uint64(b[24:32])),
		LonR: float64frombits(binary.LittleEndian.Uint64(b[32:40])),
	}
}

// UnionRange grows r to include o. Used when computing a RelRange from its
// member WayRanges and when folding a newly-discovered WayRange into an
// already-computed parent.
func UnionRange(latT, lonL, latB, lonR, oLatT, oLonL, oLatB, oLonR float64) (nLatT, nLonL, nLatB, nLonR float64) {
	nLatT = maxF(latT, oLatT)
	nLonL = minF(lonL, oLonL)
	nLatB = minF(latB, oLatB)
	nLonR = maxF(lonR, oLonR)
	return
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
