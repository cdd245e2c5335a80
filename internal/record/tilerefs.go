package record

import "encoding/binary"

// TileRefsHeaderSize is the fixed portion preceding the ref array. Unlike
// the other variable-length records, TileRefs carries both a count and a
// capacity so that appending a reference during import can grow the ref
// array in place (within the capacity already allocated) instead of
// forcing a full re-marshal on every hit.
const TileRefsHeaderSize = 16

// tileRefSize is the packed width of one reference: an 8-byte entity id.
const tileRefSize = 8

// tileRefsInitialCapacity is the number of ref slots reserved the first
// time a tile is touched during import.
const tileRefsInitialCapacity = 8

// TileRefs is the reverse index from one (tile, entity class, zoom tier)
// to the set of entity ids whose geometry overlaps that tile, enlarged by
// the reverse-index margin. Unlike the other record types, TileRefs
// stores exactly one logical record per chunk: major_id is the tile id
// itself and minor_id is always 0.
type TileRefs struct {
	TileID int64
	Refs   []int64
}

// MarshalTileRefs encodes a fresh TileRefs record, reserving
// tileRefsInitialCapacity slots beyond len(t.Refs) so that the first few
// AppendTileRef calls can grow in place.
func MarshalTileRefs(t TileRefs) []byte {
	capacity := len(t.Refs) + tileRefsInitialCapacity
	buf := make([]byte, TileRefsHeaderSize+tileRefSize*capacity)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(t.TileID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(t.Refs)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(capacity))
	for i, ref := range t.Refs {
		off := TileRefsHeaderSize + tileRefSize*i
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(ref))
	}
	return buf
}

// SizeOfTileRefs returns the byte size of the TileRefs record at
// blob[offset:], including the unused capacity tail.
func SizeOfTileRefs(blob []byte, offset int) int {
	capacity := binary.LittleEndian.Uint32(blob[offset+12 : offset+16])
	return TileRefsHeaderSize + tileRefSize*int(capacity)
}

// UnmarshalTileRefs decodes a TileRefs from blob[offset:].
func UnmarshalTileRefs(blob []byte, offset int) TileRefs {
	b := blob[offset:]
	return TileRefs{
		TileID: int64(binary.LittleEndian.Uint64(b[0:8])),
		Refs:   RefsOf(blob, offset),
	}
}

// RefsOf decodes the populated portion of a TileRefs ref array at
// blob[offset:], ignoring any unused capacity.
func RefsOf(blob []byte, offset int) []int64 {
	count := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	refs := make([]int64, count)
	base := offset + TileRefsHeaderSize
	for i := range refs {
		off := base + tileRefSize*i
		refs[i] = int64(binary.LittleEndian.Uint64(blob[off : off+8]))
	}
	return refs
}

// CountAndCapacityOf returns the current ref count and the allocated
// capacity of the TileRefs record at blob[offset:].
func CountAndCapacityOf(blob []byte, offset int) (count, capacity int) {
	return int(binary.LittleEndian.Uint32(blob[offset+8 : offset+12])),
		int(binary.LittleEndian.Uint32(blob[offset+12 : offset+16]))
}

// AppendTileRef appends ref to the TileRefs record at blob[offset:] in
// place, returning true on success. It returns false when the record has
// no spare capacity, in which case the caller must grow the record (see
// GrowTileRefs) before retrying.
func AppendTileRef(blob []byte, offset int, ref int64) bool {
	count, capacity := CountAndCapacityOf(blob, offset)
	if count >= capacity {
		return false
	}
	slot := offset + TileRefsHeaderSize + tileRefSize*count
	binary.LittleEndian.PutUint64(blob[slot:slot+8], uint64(ref))
	binary.LittleEndian.PutUint32(blob[offset+8:offset+12], uint32(count+1))
	return true
}

// GrowTileRefs returns a new, larger TileRefs blob with double the prior
// capacity (or tileRefsInitialCapacity, whichever is larger), preserving
// the existing refs. Callers replace the chunk entry's stored record with
// this blob and then retry AppendTileRef.
func GrowTileRefs(blob []byte, offset int) []byte {
	t := UnmarshalTileRefs(blob, offset)
	_, capacity := CountAndCapacityOf(blob, offset)
	newCapacity := capacity * 2
	if newCapacity < tileRefsInitialCapacity {
		newCapacity = tileRefsInitialCapacity
	}
	buf := make([]byte, TileRefsHeaderSize+tileRefSize*newCapacity)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(t.TileID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(t.Refs)))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(newCapacity))
	for i, ref := range t.Refs {
		off := TileRefsHeaderSize + tileRefSize*i
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(ref))
	}
	return buf
}
