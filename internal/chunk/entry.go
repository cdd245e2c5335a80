// Package chunk implements the in-memory representation of one storage
// chunk: a (type, major_id) pair holding every record whose id maps to
// that major_id, packed contiguously into a single growable byte buffer.
// An Entry is the unit the blob index's cache evicts and writes back as a
// whole; a Handle pins an Entry in the cache while a caller holds a typed
// view onto one of its records.
package chunk

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/record"
)

// initialCapacity is the buffer size a freshly loaded or created Entry
// starts with. Capacity doubles from here as records are appended.
const initialCapacity = 32

// Entry is every record for one (type, major_id) packed into a single
// buffer. Non-TileRefs types may hold up to ChunkSize records (one per
// minor_id); TileRefs holds exactly one.
type Entry struct {
	Type    record.Type
	MajorID int64

	data []byte
	size int // bytes of data actually in use; data may have spare capacity

	dirty    bool
	refcount int32

	// offsets lazily maps minor_id to the byte offset of its record
	// within data. It is built by scanning data on first Get(), not
	// eagerly, because most chunks are touched for only one or two
	// minor_ids over their lifetime in the cache.
	offsets map[int64]int
	scanned bool
}

// NewEntry creates an empty Entry for (t, majorID), ready to accept
// Append calls. Used when the persistent layer has no row yet.
func NewEntry(t record.Type, majorID int64) *Entry {
	return &Entry{
		Type:    t,
		MajorID: majorID,
		data:    make([]byte, 0, initialCapacity),
	}
}

// LoadEntry wraps a blob read back from the persistent layer. dirty is
// false: the buffer matches what is already on disk.
func LoadEntry(t record.Type, majorID int64, blob []byte) *Entry {
	return &Entry{
		Type:    t,
		MajorID: majorID,
		data:    blob,
		size:    len(blob),
	}
}

// Dirty reports whether the entry has been modified since it was loaded
// or created, and therefore needs a writeback before it can be evicted.
func (e *Entry) Dirty() bool { return e.dirty }

// MarkClean clears the dirty flag after a successful writeback.
func (e *Entry) MarkClean() { e.dirty = false }

// Blob returns the portion of the internal buffer holding real data,
// excluding any unused capacity reserved for future appends. Callers
// must not retain the slice past the next Append or Grow call.
func (e *Entry) Blob() []byte { return e.data[:e.size] }

// ByteSize returns the number of live bytes the entry occupies, used by
// the cache's memory accounting.
func (e *Entry) ByteSize() int { return e.size }

// Pin increments the entry's reference count, preventing the cache from
// evicting it. Callers release with Unpin.
func (e *Entry) Pin() { e.refcount++ }

// Unpin decrements the reference count. It panics on underflow, which
// would indicate a double-unpin bug in the caller.
func (e *Entry) Unpin() {
	if e.refcount <= 0 {
		panic("chunk: Unpin called with zero refcount")
	}
	e.refcount--
}

// Pinned reports whether the entry currently has outstanding references
// and is therefore ineligible for eviction.
func (e *Entry) Pinned() bool { return e.refcount > 0 }

// Append adds a fully-marshaled record to the entry, growing the backing
// buffer (doubling capacity starting from initialCapacity) as needed, and
// returns the byte offset the record was written at. The caller is
// responsible for having chosen the correct major_id already; Append
// does not interpret the record's id field except to update the lazily
// built offset index when one already exists.
func (e *Entry) Append(rec []byte) int {
	offset := e.size
	needed := e.size + len(rec)
	if needed > cap(e.data) {
		e.grow(needed)
	}
	e.data = e.data[:needed]
	copy(e.data[offset:needed], rec)
	e.size = needed
	e.dirty = true
	if e.offsets != nil {
		e.offsets[record.MinorIDOf(e.Type.Kind(), e.data, offset)] = offset
	}
	return offset
}

// grow doubles the buffer's capacity until it can hold needed bytes.
func (e *Entry) grow(needed int) {
	newCap := cap(e.data)
	if newCap == 0 {
		newCap = initialCapacity
	}
	for newCap < needed {
		newCap *= 2
	}
	fresh := make([]byte, e.size, newCap)
	copy(fresh, e.data[:e.size])
	e.data = fresh
}

// Offset returns the byte offset of minorID's record within the entry's
// buffer, scanning the buffer to build the offset index on first call.
// TileRefs entries hold exactly one record at offset 0 and never scan
// past it, per the data model's "minor_id is always 0" rule.
func (e *Entry) Offset(minorID int64) (int, bool) {
	if e.Type.IsTileRefs() {
		if e.size == 0 {
			return 0, false
		}
		return 0, true
	}
	e.ensureScanned()
	off, ok := e.offsets[minorID]
	return off, ok
}

// ensureScanned walks the buffer once, recording each record's minor_id
// and offset. Subsequent Append calls keep the index up to date
// incrementally, so a chunk is scanned at most once over its lifetime in
// the cache.
func (e *Entry) ensureScanned() {
	if e.scanned {
		return
	}
	kind := e.Type.Kind()
	e.offsets = make(map[int64]int)
	offset := 0
	for offset < e.size {
		minor := record.MinorIDOf(kind, e.data, offset)
		e.offsets[minor] = offset
		sz := record.SizeOf(kind, e.data, offset)
		if sz <= 0 {
			panic(fmt.Sprintf("chunk: zero-size record scanning type %v at offset %d", e.Type, offset))
		}
		offset += sz
	}
	e.scanned = true
}

// ReplaceTileRefs swaps the entry's sole TileRefs record for a grown copy
// returned by record.GrowTileRefs, when an in-place AppendTileRef fails
// because the record ran out of spare capacity.
func (e *Entry) ReplaceTileRefs(blob []byte) {
	if !e.Type.IsTileRefs() {
		panic("chunk: ReplaceTileRefs called on non-TileRefs entry")
	}
	e.data = blob[:len(blob):len(blob)]
	e.size = len(blob)
	e.dirty = true
}

// AppendTileRefInPlace appends ref to the entry's sole TileRefs record,
// growing it first if there is no spare capacity.
func (e *Entry) AppendTileRefInPlace(ref int64) {
	if !e.Type.IsTileRefs() {
		panic("chunk: AppendTileRefInPlace called on non-TileRefs entry")
	}
	if e.size == 0 {
		e.Append(record.MarshalTileRefs(record.TileRefs{TileID: e.MajorID, Refs: []int64{ref}}))
		return
	}
	if !record.AppendTileRef(e.data, 0, ref) {
		e.ReplaceTileRefs(record.GrowTileRefs(e.data, 0))
		if !record.AppendTileRef(e.data, 0, ref) {
			panic("chunk: AppendTileRef still failing after GrowTileRefs")
		}
	}
	e.dirty = true
}
