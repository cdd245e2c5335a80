package record

import "encoding/binary"

// NodeCoord is the fixed-size {nid, lat, lon} record. It is the most
// frequently stored record — one per referenced node — so it carries no
// optional tail.
const NodeCoordSize = 24

// NodeCoord holds a node's position. WayNds references may point at ids
// with no corresponding NodeCoord in truncated extracts; callers must
// tolerate a nil lookup result rather than treat it as an error.
type NodeCoord struct {
	Nid int64
	Lat float64
	Lon float64
}

// MarshalNodeCoord encodes a NodeCoord into a fresh byte slice.
func MarshalNodeCoord(n NodeCoord) []byte {
	buf := make([]byte, NodeCoordSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(n.Nid))
	binary.LittleEndian.PutUint64(buf[8:16], float64bits(n.Lat))
	binary.LittleEndian.PutUint64(buf[16:24], float64bits(n.Lon))
	return buf
}

// UnmarshalNodeCoord decodes a NodeCoord from blob[offset:].
func UnmarshalNodeCoord(blob []byte, offset int) NodeCoord {
	b := blob[offset:]
	return NodeCoord{
		Nid: int64(binary.LittleEndian.Uint64(b[0:8])),
		Lat: float64frombits(binary.LittleEndian.Uint64(b[8:16])),
		Lon: float64frombits(binary.LittleEndian.Uint64(b[16:24])),
	}
}

// NodeInfoHeaderSize is the fixed portion preceding the optional name tail.
const NodeInfoHeaderSize = 24

// NodeInfo carries a selected node's class, flags, elevation (feet) and
// optional display name.
type NodeInfo struct {
	Nid   int64
	Class uint32
	Flags WayFlags32
	Ele   float32 // feet; 0 when absent
	Name  string  // "" when absent
}

// WayFlags32 widens WayFlags to 32 bits for NodeInfo/WayInfo storage,
// where BUILDING/NAMEREF and friends share the bit space with class-
// specific flags assigned by the style.
type WayFlags32 uint32

// MarshalNodeInfo encodes a NodeInfo, padding the name to a multiple of
// four bytes as the data model requires.
func MarshalNodeInfo(n NodeInfo) []byte {
	nameBytes, sizeName := packName(n.Name)
	buf := make([]byte, NodeInfoHeaderSize+sizeName)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(n.Nid))
	binary.LittleEndian.PutUint32(buf[8:12], n.Class)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(n.Flags))
	binary.LittleEndian.PutUint32(buf[16:20], float32bits(n.Ele))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(sizeName))
	copy(buf[NodeInfoHeaderSize:], nameBytes)
	return buf
}

// SizeOfNodeInfo returns the total byte size of the NodeInfo record
// starting at blob[offset:], including its name tail.
func SizeOfNodeInfo(blob []byte, offset int) int {
	sizeName := binary.LittleEndian.Uint32(blob[offset+20 : offset+24])
	return NodeInfoHeaderSize + int(sizeName)
}

// UnmarshalNodeInfo decodes a NodeInfo from blob[offset:].
func UnmarshalNodeInfo(blob []byte, offset int) NodeInfo {
	b := blob[offset:]
	sizeName := binary.LittleEndian.Uint32(b[20:24])
	return NodeInfo{
		Nid:   int64(binary.LittleEndian.Uint64(b[0:8])),
		Class: binary.LittleEndian.Uint32(b[8:12]),
		Flags: WayFlags32(binary.LittleEndian.Uint32(b[12:16])),
		Ele:   float32frombits(binary.LittleEndian.Uint32(b[16:20])),
		Name:  unpackName(b[NodeInfoHeaderSize : NodeInfoHeaderSize+int(sizeName)]),
	}
}

// NameOfNodeInfo returns the name stored at blob[offset:], or "" if absent.
func NameOfNodeInfo(blob []byte, offset int) string {
	sizeName := binary.LittleEndian.Uint32(blob[offset+20 : offset+24])
	if sizeName == 0 {
		return ""
	}
	start := offset + NodeInfoHeaderSize
	return unpackName(blob[start : start+int(sizeName)])
}
