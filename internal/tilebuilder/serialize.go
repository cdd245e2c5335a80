package tilebuilder

// The wire format tileWriter emits and Parse reads back:
//
//	TileHeader  { magic, version, zoom, x, y, changeset, count_rels, count_ways, count_nodes }
//	RelRecord*  { type, class, center, range, size_name, count, name[], MemberWay[] }
//	MemberWay*  { flags, layer, count, Point[] }
//	WayRecord*  { class, layer, flags, center, range, size_name, count, name[], Point[] }
//	NodeRecord* { class, ele, pt, size_name, name[] }
//
// center and each corner of range are a {x,y int16} Point. size_name is
// always a multiple of four; the name tail and every record boundary
// that follows it are four-byte aligned.

import (
	"encoding/binary"
	"math"
)

// Tile blob framing constants. The format is little-endian and
// naturally aligned: every variable-length name tail is padded to a
// multiple of four bytes before the next fixed field begins.
const (
	tileMagic   uint32 = 0xB00D90DB
	tileVersion uint32 = 20210125
)

// tileHeaderSize is magic(4) + version(4) + zoom(4) + x(4) + y(4) +
// changeset(8) + count_rels(4) + count_ways(4) + count_nodes(4).
const tileHeaderSize = 4 + 4 + 4 + 4 + 4 + 8 + 4 + 4 + 4

// tileWriter is the growable output buffer newTileWriter allocates and
// finish finalises. Count fields are written as zero placeholders and
// patched once the real totals are known, so the pipeline never needs a
// second pass over the emitted records.
type tileWriter struct {
	buf              []byte
	countRelsOffset  int
	countWaysOffset  int
	countNodesOffset int
	countRels        int32
	countWays        int32
	countNodes       int32
}

func newTileWriter(zoom, x, y int, changeset int64) *tileWriter {
	w := &tileWriter{buf: make([]byte, 0, tileHeaderSize)}
	w.putU32(tileMagic)
	w.putU32(tileVersion)
	w.putI32(int32(zoom))
	w.putI32(int32(x))
	w.putI32(int32(y))
	w.putI64(changeset)
	w.countRelsOffset = len(w.buf)
	w.putI32(0)
	w.countWaysOffset = len(w.buf)
	w.putI32(0)
	w.countNodesOffset = len(w.buf)
	w.putI32(0)
	return w
}

func (w *tileWriter) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *tileWriter) putI32(v int32) { w.putU32(uint32(v)) }

func (w *tileWriter) putI64(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *tileWriter) putI16(v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *tileWriter) putFloat32(v float32) { w.putU32(math.Float32bits(v)) }

func (w *tileWriter) putPoint(x, y int16) {
	w.putI16(x)
	w.putI16(y)
}

// sizeName returns the size_name field value for name: the byte length
// of its 0-terminated, zero-padded tail, mirroring internal/record's
// packName layout. The layout places size_name ahead of count (see
// RelRecord/WayRecord in the comment at the top of this file), with the name bytes
// themselves written later via putNameBytes.
func sizeName(name string) int32 {
	if name == "" {
		return 0
	}
	raw := len(name) + 1
	return int32(((raw + 3) / 4) * 4)
}

// putNameBytes appends the 0-terminated, zero-padded name tail whose
// length was already written via putI32(sizeName(name)).
func (w *tileWriter) putNameBytes(name string) {
	size := sizeName(name)
	if size == 0 {
		return
	}
	start := len(w.buf)
	w.buf = append(w.buf, make([]byte, size)...)
	copy(w.buf[start:], name)
}

func (w *tileWriter) patchI32(offset int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[offset:offset+4], uint32(v))
}

// finish back-patches the three count fields and returns the completed
// buffer.
func (w *tileWriter) finish() []byte {
	w.patchI32(w.countRelsOffset, w.countRels)
	w.patchI32(w.countWaysOffset, w.countWays)
	w.patchI32(w.countNodesOffset, w.countNodes)
	return w.buf
}
