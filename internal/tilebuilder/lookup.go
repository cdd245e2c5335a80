package tilebuilder

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/record"
)

// The lookupX helpers wrap blobindex.Index.Get + the record package's
// decode functions into the (value, found, error) shape the gather
// pipeline uses throughout: found == false is the ordinary "missing
// reference, tolerate it" outcome §7 calls for, not an error.

func (b *Builder) lookupWayInfo(wid int64) (record.WayInfo, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeWayInfo, wid)
	if err != nil {
		return record.WayInfo{}, false, fmt.Errorf("tilebuilder: way %d info: %w", wid, err)
	}
	if h == nil {
		return record.WayInfo{}, false, nil
	}
	blob, off := h.Blob()
	info := record.UnmarshalWayInfo(blob, off)
	b.ix.Put(h)
	return info, true, nil
}

func (b *Builder) lookupWayNds(wid int64) ([]int64, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeWayNds, wid)
	if err != nil {
		return nil, false, fmt.Errorf("tilebuilder: way %d nds: %w", wid, err)
	}
	if h == nil {
		return nil, false, nil
	}
	blob, off := h.Blob()
	nds := record.NdsOf(blob, off)
	b.ix.Put(h)
	return nds, true, nil
}

func (b *Builder) lookupWayRange(wid int64) (record.WayRange, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeWayRange, wid)
	if err != nil {
		return record.WayRange{}, false, fmt.Errorf("tilebuilder: way %d range: %w", wid, err)
	}
	if h == nil {
		return record.WayRange{}, false, nil
	}
	blob, off := h.Blob()
	rng := record.UnmarshalWayRange(blob, off)
	b.ix.Put(h)
	return rng, true, nil
}

func (b *Builder) lookupRelInfo(rid int64) (record.RelInfo, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeRelInfo, rid)
	if err != nil {
		return record.RelInfo{}, false, fmt.Errorf("tilebuilder: rel %d info: %w", rid, err)
	}
	if h == nil {
		return record.RelInfo{}, false, nil
	}
	blob, off := h.Blob()
	info := record.UnmarshalRelInfo(blob, off)
	b.ix.Put(h)
	return info, true, nil
}

func (b *Builder) lookupRelMembers(rid int64) ([]record.Member, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeRelMembers, rid)
	if err != nil {
		return nil, false, fmt.Errorf("tilebuilder: rel %d members: %w", rid, err)
	}
	if h == nil {
		return nil, false, nil
	}
	blob, off := h.Blob()
	members := record.MembersOf(blob, off)
	b.ix.Put(h)
	return members, true, nil
}

func (b *Builder) lookupRelRange(rid int64) (record.RelRange, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeRelRange, rid)
	if err != nil {
		return record.RelRange{}, false, fmt.Errorf("tilebuilder: rel %d range: %w", rid, err)
	}
	if h == nil {
		return record.RelRange{}, false, nil
	}
	blob, off := h.Blob()
	rng := record.UnmarshalRelRange(blob, off)
	b.ix.Put(h)
	return rng, true, nil
}

func (b *Builder) lookupNodeInfo(nid int64) (record.NodeInfo, bool, error) {
	h, err := b.ix.Get(b.tid, record.TypeNodeInfo, nid)
	if err != nil {
		return record.NodeInfo{}, false, fmt.Errorf("tilebuilder: node %d info: %w", nid, err)
	}
	if h == nil {
		return record.NodeInfo{}, false, nil
	}
	blob, off := h.Blob()
	info := record.UnmarshalNodeInfo(blob, off)
	b.ix.Put(h)
	return info, true, nil
}
