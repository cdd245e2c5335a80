package blobindex

import (
	"container/list"
	"fmt"
	"log"
	"sync"

	"github.com/jeffboody/osmdb/internal/chunk"
)

// cache is the in-memory LRU front end for the persistent store. The
// list holds *chunk.Entry values, most-recently-used at the front;
// byKey maps a chunk.Key to its list element for O(1) promotion and
// lookup.
//
// cacheMu guards the list and map themselves (a quick, non-blocking
// splice operation); it is distinct from the protocol's editor/reader/
// loader role accounting in protocol.go, which instead gates the
// expensive operations — a SQL load or an eviction pass — that must not
// race with concurrent readers. Promoting an already-cached entry to the
// front of the list never touches the store and never blocks, so it is
// safe to do under cacheMu alone even while other threads hold the
// reader role.
type cache struct {
	store *store

	cacheMu sync.Mutex
	list    *list.List
	byKey   map[chunk.Key]*list.Element

	currentBytes int64
	targetBytes  int64

	verbose bool
}

func newCache(s *store, targetBytes int64, verbose bool) *cache {
	return &cache{
		store:       s,
		list:        list.New(),
		byKey:       make(map[chunk.Key]*list.Element),
		targetBytes: targetBytes,
		verbose:     verbose,
	}
}

// lookup returns the cached entry for key, promoting it to
// most-recently-used, or nil if absent.
func (c *cache) lookup(key chunk.Key) *chunk.Entry {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	el, ok := c.byKey[key]
	if !ok {
		return nil
	}
	c.list.MoveToFront(el)
	return el.Value.(*chunk.Entry)
}

// insert splices a freshly loaded or created entry into the
// most-recently-used position and runs an eviction pass. Callers must
// hold the editor role (see protocol.go) before calling insert, since it
// may perform writebacks through c.store.
func (c *cache) insert(key chunk.Key, e *chunk.Entry) {
	c.cacheMu.Lock()
	el := c.list.PushFront(e)
	c.byKey[key] = el
	c.currentBytes += int64(e.ByteSize())
	c.cacheMu.Unlock()

	c.evict()
}

// evict drops least-recently-used, unpinned entries — writing back dirty
// ones first — until the process memory estimate is at or below
// 0.95*targetBytes. The 0.95 hysteresis factor avoids evicting down to
// exactly the target and immediately triggering another pass on the next
// add/get, which would otherwise thrash a transaction open/close on
// every single operation near the boundary.
func (c *cache) evict() {
	if estimateProcessMemory(c.currentBytes) <= c.targetBytes {
		return
	}

	lowWater := int64(float64(c.targetBytes) * 0.95)
	evicted := 0

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	for estimateProcessMemory(c.currentBytes) > lowWater {
		el := c.oldestEvictable()
		if el == nil {
			// Everything remaining is pinned; nothing more can be freed.
			break
		}
		e := el.Value.(*chunk.Entry)
		key := chunk.Key{Type: e.Type, MajorID: e.MajorID}

		if e.Dirty() {
			if err := c.store.write(0, e.Type, e.MajorID, e.Blob()); err != nil {
				log.Printf("blobindex: eviction writeback failed for %s/%d: %v", e.Type.TableName(), e.MajorID, err)
				break
			}
			e.MarkClean()
		}

		c.list.Remove(el)
		delete(c.byKey, key)
		c.currentBytes -= int64(e.ByteSize())
		evicted++
	}

	if evicted > 0 {
		if err := c.store.commitBatch(); err != nil {
			log.Printf("blobindex: eviction commit failed: %v", err)
		}
		if c.verbose {
			log.Printf("blobindex: evicted %d entries, %d bytes resident", evicted, c.currentBytes)
		}
	}
}

// touch moves an already-resident entry to the most-recently-used
// position and folds in a byte-count delta (positive after an Append
// grew it), then runs an eviction pass. If key is not yet resident it is
// inserted fresh.
func (c *cache) touch(key chunk.Key, e *chunk.Entry, sizeDelta int64) {
	c.cacheMu.Lock()
	el, ok := c.byKey[key]
	if !ok {
		el = c.list.PushFront(e)
		c.byKey[key] = el
	} else {
		c.list.MoveToFront(el)
	}
	c.currentBytes += sizeDelta
	c.cacheMu.Unlock()

	c.evict()
}

// oldestEvictable walks the list from the back looking for the first
// unpinned entry. The list iterator tolerates removal of the element it
// is currently positioned on (a plain Prev() traversal that stops before
// mutating), so callers may safely remove the returned element and
// resume scanning from the new back on the next call.
func (c *cache) oldestEvictable() *list.Element {
	for el := c.list.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*chunk.Entry)
		if !e.Pinned() {
			return el
		}
	}
	return nil
}

// checkShutdown reports an error for any entry still pinned when the
// index is closing — per the design, a non-zero refcount at shutdown is
// a fatal logic error, not something to silently paper over.
func (c *cache) checkShutdown() error {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	for el := c.list.Front(); el != nil; el = el.Next() {
		e := el.Value.(*chunk.Entry)
		if e.Pinned() {
			return fmt.Errorf("blobindex: entry %s/%d still has outstanding handles at shutdown", e.Type.TableName(), e.MajorID)
		}
	}
	return nil
}

// allDirty returns every dirty entry currently resident, used by close()
// to flush the cache before the store itself is closed.
func (c *cache) allDirty() []*chunk.Entry {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	var dirty []*chunk.Entry
	for el := c.list.Front(); el != nil; el = el.Next() {
		e := el.Value.(*chunk.Entry)
		if e.Dirty() {
			dirty = append(dirty, e)
		}
	}
	return dirty
}
