package tilebuilder

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jeffboody/osmdb/internal/record"
)

// Tile is the decoded form of a tile blob, used by Parse and by
// osmdb-select's pretty-printer. A malformed blob (bad magic/version, a
// count that runs past the buffer) is a logical invariant violation per
// the error model and is reported, not silently truncated — Parse
// returns an error for a recognisable header mismatch and otherwise
// relies on a slice-bounds panic to surface deeper corruption, since
// there is no way to keep decoding a tile whose framing cannot be
// trusted.
type Tile struct {
	Zoom, X, Y int32
	Changeset  int64
	Rels       []RelRecord
	Ways       []WayRecord
	Nodes      []NodeRecord
}

// RelRecord is one decoded relation: its label point, bounding range
// (top-left and bottom-right corners in tile-local coordinates) and the
// member-way geometry gathered for it, if any.
type RelRecord struct {
	Type    record.RelType
	Class   uint32
	Center  Point
	Range   [2]Point
	Name    string
	Members []MemberWay
}

// MemberWay is one relation member's joined/sampled/clipped geometry.
type MemberWay struct {
	Flags  record.WayFlags32
	Layer  int32
	Points []Point
}

// WayRecord is one decoded standalone way.
type WayRecord struct {
	Class  uint32
	Layer  int32
	Flags  record.WayFlags32
	Center Point
	Range  [2]Point
	Name   string
	Points []Point
}

// NodeRecord is one decoded point feature.
type NodeRecord struct {
	Class uint32
	Ele   float32
	Pt    Point
	Name  string
}

// Point is a tile-local coordinate pair; see internal/coord.ToTileLocal.
type Point struct{ X, Y int16 }

type tileReader struct {
	buf []byte
	pos int
}

func (r *tileReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *tileReader) i32() int32 { return int32(r.u32()) }

func (r *tileReader) i64() int64 {
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

func (r *tileReader) i16() int16 {
	v := int16(binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+2]))
	r.pos += 2
	return v
}

func (r *tileReader) float32() float32 { return math.Float32frombits(r.u32()) }

func (r *tileReader) point() Point {
	x := r.i16()
	y := r.i16()
	return Point{x, y}
}

// name reads a size_name field already consumed by the caller (passed
// as size) and returns the unpacked string, advancing past the padded
// tail.
func (r *tileReader) name(size int32) string {
	if size == 0 {
		return ""
	}
	tail := r.buf[r.pos : r.pos+int(size)]
	r.pos += int(size)
	for i, b := range tail {
		if b == 0 {
			return string(tail[:i])
		}
	}
	return string(tail)
}

// Parse decodes a tile blob produced by tileWriter.
func Parse(blob []byte) (*Tile, error) {
	if len(blob) < tileHeaderSize {
		return nil, fmt.Errorf("tilebuilder: blob too short for header: %d bytes", len(blob))
	}
	r := &tileReader{buf: blob}

	magic := r.u32()
	if magic != tileMagic {
		return nil, fmt.Errorf("tilebuilder: bad magic %#x", magic)
	}
	version := r.u32()
	if version != tileVersion {
		return nil, fmt.Errorf("tilebuilder: unsupported version %d", version)
	}

	t := &Tile{}
	t.Zoom = r.i32()
	t.X = r.i32()
	t.Y = r.i32()
	t.Changeset = r.i64()
	countRels := r.i32()
	countWays := r.i32()
	countNodes := r.i32()

	for i := int32(0); i < countRels; i++ {
		t.Rels = append(t.Rels, r.relRecord())
	}
	for i := int32(0); i < countWays; i++ {
		t.Ways = append(t.Ways, r.wayRecord())
	}
	for i := int32(0); i < countNodes; i++ {
		t.Nodes = append(t.Nodes, r.nodeRecord())
	}
	return t, nil
}

func (r *tileReader) relRecord() RelRecord {
	var rel RelRecord
	rel.Type = record.RelType(r.i32())
	rel.Class = r.u32()
	rel.Center = r.point()
	rel.Range[0] = r.point()
	rel.Range[1] = r.point()
	size := r.i32()
	count := r.i32()
	rel.Name = r.name(size)
	for i := int32(0); i < count; i++ {
		rel.Members = append(rel.Members, r.memberWay())
	}
	return rel
}

func (r *tileReader) memberWay() MemberWay {
	var m MemberWay
	m.Flags = record.WayFlags32(r.u32())
	m.Layer = r.i32()
	count := r.i32()
	m.Points = make([]Point, count)
	for i := range m.Points {
		m.Points[i] = r.point()
	}
	return m
}

func (r *tileReader) wayRecord() WayRecord {
	var w WayRecord
	w.Class = r.u32()
	w.Layer = r.i32()
	w.Flags = record.WayFlags32(r.u32())
	w.Center = r.point()
	w.Range[0] = r.point()
	w.Range[1] = r.point()
	size := r.i32()
	count := r.i32()
	w.Name = r.name(size)
	w.Points = make([]Point, count)
	for i := range w.Points {
		w.Points[i] = r.point()
	}
	return w
}

func (r *tileReader) nodeRecord() NodeRecord {
	var n NodeRecord
	n.Class = r.u32()
	n.Ele = r.float32()
	n.Pt = r.point()
	size := r.i32()
	n.Name = r.name(size)
	return n
}
