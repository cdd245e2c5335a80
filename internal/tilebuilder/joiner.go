package tilebuilder

import "github.com/jeffboody/osmdb/internal/coord"

// joinIndex is the mm_nds_join multimap from an end-node-id to every
// live segment whose head or tail currently sits at that id.
type joinIndex map[int64][]*segment

func (idx joinIndex) add(nid int64, s *segment) {
	idx[nid] = append(idx[nid], s)
}

// buildJoinIndex indexes every unconsumed, non-loop, multi-node segment
// by both of its endpoints. Rebuilt once per join pass rather than
// incrementally maintained: a splice changes one segment's endpoint
// identity, and re-deriving the index from the current segment list is
// simpler to reason about than patching stale entries in place.
func buildJoinIndex(segs []*segment) joinIndex {
	idx := make(joinIndex)
	for _, s := range segs {
		if s.consumed || s.isLoop() || len(s.nds) < 2 {
			continue
		}
		idx.add(s.headID(), s)
		if s.tailID() != s.headID() {
			idx.add(s.tailID(), s)
		}
	}
	return idx
}

// joinWays greedily splices joinable segments until a fixed point,
// returning the surviving (unconsumed) segments. requireTagMatch is
// true for standalone ways (class/flags/layer/name must match) and
// false for a relation's member ways, which join across tag differences
// since their membership alone establishes the relationship.
func (b *Builder) joinWays(segs []*segment, requireTagMatch bool) ([]*segment, error) {
	for {
		idx := buildJoinIndex(segs)
		joinedAny := false

		for _, a := range segs {
			if a.consumed || a.isLoop() || len(a.nds) < 2 {
				continue
			}
			if b.tryJoinOne(idx, a, requireTagMatch) {
				joinedAny = true
			}
		}
		if err := b.lastJoinErr; err != nil {
			b.lastJoinErr = nil
			return nil, err
		}
		if !joinedAny {
			break
		}
	}

	out := segs[:0]
	for _, s := range segs {
		if !s.consumed {
			out = append(out, s)
		}
	}
	return out, nil
}

// tryJoinOne attempts one splice at either end of a, returning whether
// it succeeded. A store error encountered during the angle test is
// stashed on the builder rather than threaded through every caller in
// this hot inner loop; joinWays checks it once per pass.
func (b *Builder) tryJoinOne(idx joinIndex, a *segment, requireTagMatch bool) bool {
	for _, ref1 := range [2]int64{a.headID(), a.tailID()} {
		for _, other := range idx[ref1] {
			if other == a || other.consumed {
				continue
			}
			if other.headID() != ref1 && other.tailID() != ref1 {
				continue // stale entry from before an earlier splice this pass
			}
			ok, err := b.canJoin(a, other, ref1, requireTagMatch)
			if err != nil {
				b.lastJoinErr = err
				return false
			}
			if !ok {
				continue
			}
			spliceJoin(a, other, ref1)
			return true
		}
	}
	return false
}

// canJoin implements the joinability test: tag compatibility (skipped
// for relation members) and the 30-degree 3-D turning-angle test at the
// shared endpoint.
func (b *Builder) canJoin(a, other *segment, ref1 int64, requireTagMatch bool) (bool, error) {
	if requireTagMatch {
		if a.class != other.class || a.flags != other.flags || a.layer != other.layer || a.name != other.name {
			return false, nil
		}
	}

	p0id := adjacentID(a, ref1)
	p2id := adjacentID(other, ref1)

	p0, ok0, err := b.nodeXYZ(p0id)
	if err != nil {
		return false, err
	}
	p1, ok1, err := b.nodeXYZ(ref1)
	if err != nil {
		return false, err
	}
	p2, ok2, err := b.nodeXYZ(p2id)
	if err != nil {
		return false, err
	}
	if !ok0 || !ok1 || !ok2 {
		// A join endpoint with no stored coordinate can't be angle-tested;
		// refuse the join rather than guessing a direction.
		return false, nil
	}

	return coord.TurningCosine(p0, p1, p2) >= coord.MaxJoinCosine, nil
}

// adjacentID returns the node id next to ref1 within s — the node that
// becomes p0 (if ref1 is approached) or p2 (if ref1 is departed from)
// in the turning-angle test.
func adjacentID(s *segment, ref1 int64) int64 {
	if ref1 == s.headID() {
		return s.nds[1]
	}
	return s.nds[len(s.nds)-2]
}

// spliceJoin merges the shorter of a/other into the longer (the
// survivor), in the orientation the shared endpoint ref1 requires, and
// marks the other consumed.
func spliceJoin(a, other *segment, ref1 int64) *segment {
	survivor, loser := a, other
	if len(loser.nds) > len(survivor.nds) {
		survivor, loser = loser, survivor
	}

	switch {
	case survivor.tailID() == ref1 && loser.headID() == ref1:
		survivor.nds = append(survivor.nds, loser.nds[1:]...)
	case survivor.headID() == ref1 && loser.tailID() == ref1:
		merged := make([]int64, 0, len(loser.nds)+len(survivor.nds)-1)
		merged = append(merged, loser.nds...)
		merged = append(merged, survivor.nds[1:]...)
		survivor.nds = merged
	case survivor.tailID() == ref1 && loser.tailID() == ref1:
		rev := reverseIDs(loser.nds)
		survivor.nds = append(survivor.nds, rev[1:]...)
	case survivor.headID() == ref1 && loser.headID() == ref1:
		rev := reverseIDs(loser.nds)
		merged := make([]int64, 0, len(rev)+len(survivor.nds)-1)
		merged = append(merged, rev[:len(rev)-1]...)
		merged = append(merged, survivor.nds...)
		survivor.nds = merged
	}

	survivor.unionRange(loser)
	loser.consumed = true
	return survivor
}

func reverseIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
