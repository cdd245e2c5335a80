package record

import "encoding/binary"

// WayInfoHeaderSize is the fixed portion preceding the optional name tail.
const WayInfoHeaderSize = 24

// WayInfo carries a way's class, flags, layer (bridge/tunnel stacking
// order) and optional display name.
type WayInfo struct {
	Wid   int64
	Class uint32
	Flags WayFlags32
	Layer int32
	Name  string
}

// MarshalWayInfo encodes a WayInfo, padding the name to a multiple of
// four bytes.
func MarshalWayInfo(w WayInfo) []byte {
	nameBytes, sizeName := packName(w.Name)
	buf := make([]byte, WayInfoHeaderSize+sizeName)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(w.Wid))
	binary.LittleEndian.PutUint32(buf[8:12], w.Class)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(w.Flags))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(w.Layer))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(sizeName))
	copy(buf[WayInfoHeaderSize:], nameBytes)
	return buf
}

// SizeOfWayInfo returns the byte size of the WayInfo record at blob[offset:].
func SizeOfWayInfo(blob []byte, offset int) int {
	sizeName := binary.LittleEndian.Uint32(blob[offset+20 : offset+24])
	return WayInfoHeaderSize + int(sizeName)
}

// UnmarshalWayInfo decodes a WayInfo from blob[offset:].
func UnmarshalWayInfo(blob []byte, offset int) WayInfo {
	b := blob[offset:]
	sizeName := binary.LittleEndian.Uint32(b[20:24])
	return WayInfo{
		Wid:   int64(binary.LittleEndian.Uint64(b[0:8])),
		Class: binary.LittleEndian.Uint32(b[8:12]),
		Flags: WayFlags32(binary.LittleEndian.Uint32(b[12:16])),
		Layer: int32(binary.LittleEndian.Uint32(b[16:20])),
		Name:  unpackName(b[WayInfoHeaderSize : WayInfoHeaderSize+int(sizeName)]),
	}
}

// NameOfWayInfo returns the name stored at blob[offset:], or "" if absent.
func NameOfWayInfo(blob []byte, offset int) string {
	sizeName := binary.LittleEndian.Uint32(blob[offset+20 : offset+24])
	if sizeName == 0 {
		return ""
	}
	start := offset + WayInfoHeaderSize
	return unpackName(blob[start : start+int(sizeName)])
}

// WayRangeSize is the fixed byte size of a WayRange record.
const WayRangeSize = 40

// WayRange is the axis-aligned bounding box of a way's referenced nodes
// at import time.
type WayRange struct {
	Wid  int64
	LatT float64
	LonL float64
	LatB float64
	LonR float64
}

// MarshalWayRange encodes a WayRange into a fresh byte slice.
func MarshalWayRange(r WayRange) []byte {
	buf := make([]byte, WayRangeSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(r.Wid))
	binary.LittleEndian.PutUint64(buf[8:16], float64bits(r.LatT))
	binary.LittleEndian.PutUint64(buf[16:24], float64bits(r.LonL))
	binary.LittleEndian.PutUint64(buf[24:32], float64bits(r.LatB))
	binary.LittleEndian.PutUint64(buf[32:40], float64bits(r.LonR))
	return buf
}

// UnmarshalWayRange decodes a WayRange from blob[offset:].
func UnmarshalWayRange(blob []byte, offset int) WayRange {
	b := blob[offset:]
	return WayRange{
		Wid:  int64(binary.LittleEndian.Uint64(b[0:8])),
		LatT: float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		LonL: float64frombits(binary.LittleEndian.Uint64(b[16:24])),
		LatB: float64frombits(binary.LittleEndian.Uint64(b[24:32])),
		LonR: float64frombits(binary.LittleEndian.Uint64(b[32:40])),
	}
}

// WayNdsHeaderSize is the fixed portion preceding the nds array.
const WayNdsHeaderSize = 16

// WayNds is the ordered list of node ids forming a way.
type WayNds struct {
	Wid int64
	Nds []int64
}

// MarshalWayNds encodes a WayNds into a fresh byte slice.
func MarshalWayNds(w WayNds) []byte {
	buf := make([]byte, WayNdsHeaderSize+8*len(w.Nds))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(w.Wid))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(w.Nds)))
	// buf[12:16] is reserved padding, left zero.
	for i, nd := range w.Nds {
		off := WayNdsHeaderSize + 8*i
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(nd))
	}
	return buf
}

// SizeOfWayNds returns the byte size of the WayNds record at blob[offset:].
func SizeOfWayNds(blob []byte, offset int) int {
	count := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	return WayNdsHeaderSize + 8*int(count)
}

// UnmarshalWayNds decodes a WayNds from blob[offset:].
func UnmarshalWayNds(blob []byte, offset int) WayNds {
	b := blob[offset:]
	return WayNds{
		Wid: int64(binary.LittleEndian.Uint64(b[0:8])),
		Nds: NdsOf(blob, offset),
	}
}

// NdsOf decodes the node-id slice of a WayNds record at blob[offset:]
// without materializing the whole struct. The slice is a fresh copy
// decoded from the little-endian tail, not a zero-copy view: Go gives no
// safe, portable way to reinterpret an unaligned []byte region as []int64.
func NdsOf(blob []byte, offset int) []int64 {
	count := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	nds := make([]int64, count)
	base := offset + WayNdsHeaderSize
	for i := range nds {
		off := base + 8*i
		nds[i] = int64(binary.LittleEndian.Uint64(blob[off : off+8]))
	}
	return nds
}
