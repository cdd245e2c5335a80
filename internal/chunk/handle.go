package chunk

import (
	"github.com/jeffboody/osmdb/internal/record"
)

// Key addresses one chunk: a storage type plus the major_id all of its
// records share.
type Key struct {
	Type    record.Type
	MajorID int64
}

// Handle is a caller's pinned borrow of one record inside a chunk Entry.
// It keeps the owning Entry pinned in the blob index cache for as long
// as the Handle is live, and exposes the record's byte offset so the
// caller can decode a typed view on demand without copying the whole
// chunk.
//
// Handle does not decode eagerly: record.UnmarshalX / record.XOf
// accessors take (blob []byte, offset int) and are called by the
// component that knows which type it asked for (the caller of
// internal/blobindex's Get, e.g. internal/tilebuilder's lookup helpers),
// not by Handle itself.
type Handle struct {
	entry    *Entry
	offset   int
	released bool
}

// NewHandle pins entry and returns a Handle onto the record at offset.
func NewHandle(entry *Entry, offset int) *Handle {
	entry.Pin()
	return &Handle{entry: entry, offset: offset}
}

// Blob returns the full backing buffer for the chunk this handle's
// record lives in, along with the record's offset within it. Decoding
// uses blob[offset:], which may extend past the record's own bytes into
// siblings packed after it.
func (h *Handle) Blob() ([]byte, int) {
	return h.entry.Blob(), h.offset
}

// MajorID returns the chunk's major_id.
func (h *Handle) MajorID() int64 { return h.entry.MajorID }

// Release unpins the underlying Entry. It is safe to call Release more
// than once; only the first call unpins.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.entry.Unpin()
	h.released = true
}
