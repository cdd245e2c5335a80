package blobindex

import (
	"sync"

	"github.com/jeffboody/osmdb/internal/chunk"
)

// protocol implements the reader / loader / editor concurrency
// discipline that guards the store's expensive operations: a SQL load
// for a miss, and an eviction-and-insert pass. Quick, purely in-memory
// LRU promotions on a hit do not go through protocol at all (see
// cache.lookup) because they never block on I/O and never mutate state
// an editor needs exclusive access to beyond the cache's own mutex.
//
// Roles, per §4.C of the design: many readers and many loaders may run
// concurrently, provided no two loaders target the same (type, id) and
// no editor is pending or running; an editor runs alone.
type protocol struct {
	mu   sync.Mutex
	cond *sync.Cond

	readers int
	loaders int
	editor  bool

	// loading maps a worker thread id to the key it is currently
	// fetching from the store, so a second thread that misses on the
	// same key waits instead of issuing a duplicate SQL load.
	loading map[int]chunk.Key
}

func newProtocol() *protocol {
	p := &protocol{loading: make(map[int]chunk.Key)}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// enterReader blocks until no editor is running or pending, then
// registers the calling goroutine as a reader.
func (p *protocol) enterReader() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.editor {
		p.cond.Wait()
	}
	p.readers++
}

func (p *protocol) exitReader() {
	p.mu.Lock()
	p.readers--
	p.cond.Broadcast()
	p.mu.Unlock()
}

// anyLoading reports whether some thread other than tid is already
// loading key, under p.mu held by the caller.
func (p *protocol) anyLoadingLocked(tid int, key chunk.Key) bool {
	for t, k := range p.loading {
		if t != tid && k == key {
			return true
		}
	}
	return false
}

// enterLoad blocks until no editor is pending and no other thread is
// already loading key, then claims the load slot for tid. Call exitLoad
// when the SQL fetch completes, whether it succeeded or failed.
func (p *protocol) enterLoad(tid int, key chunk.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.editor || p.anyLoadingLocked(tid, key) {
		p.cond.Wait()
	}
	p.loading[tid] = key
	p.loaders++
}

func (p *protocol) exitLoad(tid int) {
	p.mu.Lock()
	delete(p.loading, tid)
	p.loaders--
	p.cond.Broadcast()
	p.mu.Unlock()
}

// enterEditor blocks until no other editor is active, claims the editor
// role, then blocks further until every outstanding reader and loader
// has drained. The caller holds exclusive access to the LRU structure
// until exitEditor.
func (p *protocol) enterEditor() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.editor {
		p.cond.Wait()
	}
	p.editor = true
	for p.readers > 0 || p.loaders > 0 {
		p.cond.Wait()
	}
}

func (p *protocol) exitEditor() {
	p.mu.Lock()
	p.editor = false
	p.cond.Broadcast()
	p.mu.Unlock()
}
