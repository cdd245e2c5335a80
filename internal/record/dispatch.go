package record

import (
	"encoding/binary"
	"fmt"
)

// SizeOf returns the byte size of the record of the given kind located at
// blob[offset:]. internal/chunk uses this to walk a chunk's blob without
// knowing the concrete record type, building its minor_id -> offset map
// lazily on first access.
func SizeOf(kind Kind, blob []byte, offset int) int {
	switch kind {
	case KindNodeCoord:
		return NodeCoordSize
	case KindNodeInfo:
		return SizeOfNodeInfo(blob, offset)
	case KindWayInfo:
		return SizeOfWayInfo(blob, offset)
	case KindWayRange:
		return WayRangeSize
	case KindWayNds:
		return SizeOfWayNds(blob, offset)
	case KindRelInfo:
		return SizeOfRelInfo(blob, offset)
	case KindRelMembers:
		return SizeOfRelMembers(blob, offset)
	case KindRelRange:
		return RelRangeSize
	case KindTileRefs:
		return SizeOfTileRefs(blob, offset)
	default:
		panic(fmt.Sprintf("record: SizeOf: unknown kind %v", kind))
	}
}

// MinorIDOf returns the minor_id a record at blob[offset:] belongs to.
// For every kind but TileRefs this is the record's own id modulo
// ChunkSize; TileRefs stores exactly one record per chunk, so its
// minor_id is always 0 and the caller should stop scanning the blob
// after the first record (there is nothing else to find).
func MinorIDOf(kind Kind, blob []byte, offset int) int64 {
	if kind == KindTileRefs {
		return 0
	}
	id := idOf(kind, blob, offset)
	_, minor := MajorMinor(id)
	return minor
}

// idOf reads the leading 8-byte id field common to every non-TileRefs
// record layout.
func idOf(kind Kind, blob []byte, offset int) int64 {
	switch kind {
	case KindNodeCoord:
		return UnmarshalNodeCoord(blob, offset).Nid
	case KindNodeInfo:
		return UnmarshalNodeInfo(blob, offset).Nid
	case KindWayInfo:
		return UnmarshalWayInfo(blob, offset).Wid
	case KindWayRange:
		return UnmarshalWayRange(blob, offset).Wid
	case KindWayNds:
		return int64(binary.LittleEndian.Uint64(blob[offset : offset+8]))
	case KindRelInfo:
		return UnmarshalRelInfo(blob, offset).Rid
	case KindRelMembers:
		return int64(binary.LittleEndian.Uint64(blob[offset : offset+8]))
	case KindRelRange:
		return UnmarshalRelRange(blob, offset).Rid
	default:
		panic(fmt.Sprintf("record: idOf: unknown kind %v", kind))
	}
}
