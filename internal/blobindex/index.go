// Package blobindex implements the persistent, chunk-grouped record
// store: a SQLite-backed table per record type, fronted by an in-memory
// LRU cache, guarded by the reader / loader / editor concurrency
// protocol described in protocol.go. It is the shared contract between
// the import pipeline, which writes once in CREATE or APPEND mode, and
// the tile builder, which reads concurrently in READONLY mode.
package blobindex

import (
	"fmt"
	"sync"

	"github.com/jeffboody/osmdb/internal/chunk"
	"github.com/jeffboody/osmdb/internal/record"
)

// Options configures Open.
type Options struct {
	Path string
	Mode Mode

	// SmemGB sizes CACHE_TARGET; see ComputeCacheTarget. Zero falls back
	// to a quarter of detected system RAM.
	SmemGB float64

	// MaxThreads bounds the prepared-statement pool and tid-derived
	// slots. READONLY callers should pass the number of tile-builder
	// worker threads; CREATE/APPEND callers may leave it at 0 (treated
	// as 1, since import is single-threaded per §5).
	MaxThreads int

	Verbose bool
}

// Index is the public blob index: the persistent store, the LRU cache
// and the concurrency protocol combined behind the operations in §4.C.
type Index struct {
	mode  Mode
	store *store
	cache *cache
	proto *protocol

	lockMu sync.Mutex // guards Lock()/Unlock() read-snapshot scoping
}

// Open opens or creates the store named by opts.Path according to
// opts.Mode. CREATE removes any existing file first, since SQLite will
// not reuse an incompatible schema from a prior run.
func Open(opts Options) (*Index, error) {
	if opts.Mode == Create {
		if err := removeIfExists(opts.Path); err != nil {
			return nil, fmt.Errorf("blobindex: removing stale store: %w", err)
		}
	}

	maxThreads := opts.MaxThreads
	if maxThreads < 1 {
		maxThreads = 1
	}

	s, err := openStore(opts.Path, opts.Mode, maxThreads)
	if err != nil {
		return nil, err
	}

	target := ComputeCacheTarget(opts.SmemGB, opts.Verbose)
	c := newCache(s, target, opts.Verbose)

	return &Index{
		mode:  opts.Mode,
		store: s,
		cache: c,
		proto: newProtocol(),
	}, nil
}

// Changeset returns the highest OSM changeset id observed during import.
func (ix *Index) Changeset() int64 {
	return ix.store.changeset
}

// SetChangeset records the running maximum changeset. Only valid in
// CREATE/APPEND mode; called once at the end of the import stream, not
// per entity.
func (ix *Index) SetChangeset(changeset int64) error {
	if !ix.mode.writable() {
		return fmt.Errorf("blobindex: SetChangeset requires a writable mode, got %v", ix.mode)
	}
	if changeset <= ix.store.changeset {
		return nil
	}
	return ix.store.writeChangeset(changeset)
}

// Lock begins a caller-scoped read snapshot: while held, no editor may
// run, so a batch of Get calls observes a consistent view with no
// intervening eviction or insertion. Only meaningful in READONLY mode;
// CREATE/APPEND callers are already single-writer and need no barrier.
func (ix *Index) Lock() {
	if ix.mode != ReadOnly {
		return
	}
	ix.lockMu.Lock()
	ix.proto.enterReader()
}

// Unlock ends a Lock snapshot.
func (ix *Index) Unlock() {
	if ix.mode != ReadOnly {
		return
	}
	ix.proto.exitReader()
	ix.lockMu.Unlock()
}

// Get returns a pinned handle onto (type, id), or nil if the record does
// not exist — which is a normal outcome, not an error. tid identifies
// the calling worker thread for prepared-statement sharding and
// duplicate-loader detection; CREATE/APPEND callers (single-threaded)
// always pass 0.
func (ix *Index) Get(tid int, t record.Type, id int64) (*chunk.Handle, error) {
	majorID, minorID := ix.majorMinor(t, id)
	key := chunk.Key{Type: t, MajorID: majorID}

	ix.proto.enterReader()
	if e := ix.cache.lookup(key); e != nil {
		off, ok := e.Offset(minorID)
		ix.proto.exitReader()
		if !ok {
			return nil, nil
		}
		return chunk.NewHandle(e, off), nil
	}
	ix.proto.exitReader()

	ix.proto.enterLoad(tid, key)
	if e := ix.cache.lookup(key); e != nil {
		ix.proto.exitLoad(tid)
		off, ok := e.Offset(minorID)
		if !ok {
			return nil, nil
		}
		return chunk.NewHandle(e, off), nil
	}

	blob, err := ix.store.load(tid, t, majorID)
	if err != nil {
		ix.proto.exitLoad(tid)
		return nil, err
	}
	if blob == nil {
		ix.proto.exitLoad(tid)
		return nil, nil
	}

	e := chunk.LoadEntry(t, majorID, blob)
	ix.proto.enterEditor()
	ix.cache.insert(key, e)
	ix.proto.exitEditor()
	ix.proto.exitLoad(tid)

	off, ok := e.Offset(minorID)
	if !ok {
		return nil, nil
	}
	return chunk.NewHandle(e, off), nil
}

// Put releases a handle obtained from Get. Safe to call exactly once per
// handle; Handle.Release is itself idempotent.
func (ix *Index) Put(h *chunk.Handle) {
	if h == nil {
		return
	}
	h.Release()
}

// Add appends a fully-marshaled record for (type, id) to its chunk,
// creating the chunk if this is its first record. Only valid in
// CREATE/APPEND mode.
func (ix *Index) Add(tid int, t record.Type, id int64, blob []byte) error {
	if !ix.mode.writable() {
		return fmt.Errorf("blobindex: Add requires a writable mode, got %v", ix.mode)
	}
	majorID, _ := ix.majorMinor(t, id)
	key := chunk.Key{Type: t, MajorID: majorID}

	e := ix.cache.lookup(key)
	if e == nil {
		loaded, err := ix.store.load(tid, t, majorID)
		if err != nil {
			return err
		}
		if loaded != nil {
			e = chunk.LoadEntry(t, majorID, loaded)
		} else {
			e = chunk.NewEntry(t, majorID)
		}
	}

	before := e.ByteSize()
	e.Append(blob)
	delta := int64(e.ByteSize() - before)
	ix.cache.touch(key, e, delta)
	return nil
}

// AddTile appends a single entity-id reference to the TileRefs chunk for
// (t, majorID), materialising the chunk's header record on first use.
// Only valid for TileRefs types.
func (ix *Index) AddTile(tid int, t record.Type, majorID, ref int64) error {
	if !ix.mode.writable() {
		return fmt.Errorf("blobindex: AddTile requires a writable mode, got %v", ix.mode)
	}
	if !t.IsTileRefs() {
		return fmt.Errorf("blobindex: AddTile called with non-TileRefs type %v", t)
	}
	key := chunk.Key{Type: t, MajorID: majorID}

	e := ix.cache.lookup(key)
	if e == nil {
		loaded, err := ix.store.load(tid, t, majorID)
		if err != nil {
			return err
		}
		if loaded != nil {
			e = chunk.LoadEntry(t, majorID, loaded)
		} else {
			e = chunk.NewEntry(t, majorID)
		}
	}

	before := e.ByteSize()
	e.AppendTileRefInPlace(ref)
	delta := int64(e.ByteSize() - before)
	ix.cache.touch(key, e, delta)
	return nil
}

// majorMinor splits id into (major_id, minor_id) for t, honoring the
// TileRefs special case where major_id is the id itself and minor_id is
// always 0.
func (ix *Index) majorMinor(t record.Type, id int64) (majorID, minorID int64) {
	if t.IsTileRefs() {
		return id, 0
	}
	return record.MajorMinor(id)
}

// Close flushes every dirty entry still resident in the cache, commits
// any open transaction, and closes the underlying database. It returns
// an error — without closing — if any entry still has outstanding
// handles, since that would silently drop unflushed writes or mask a
// handle-leak bug in the caller.
func (ix *Index) Close() error {
	if err := ix.cache.checkShutdown(); err != nil {
		return err
	}
	for _, e := range ix.cache.allDirty() {
		if err := ix.store.write(0, e.Type, e.MajorID, e.Blob()); err != nil {
			return err
		}
		e.MarkClean()
	}
	return ix.store.close()
}
