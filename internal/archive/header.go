// Package archive implements the flat-file tile archive osmdb-prefetch
// writes and osmdb-select reads: a 127-byte fixed header, a
// gzip-compressed, Hilbert-ordered tile directory, and a trailing run of
// raw osmdb tile blobs. Adapted from the teacher's PMTiles v3
// header/directory encoding (internal/pmtiles), dropping the raster-only
// fields (tile compression/type as an image format, a center point) in
// favor of the single integer spec.md §6 actually asks for: the import
// changeset the archive was built from.
package archive

import (
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the fixed, on-disk size of Header in bytes.
const HeaderSize = 127

// Directory-compression and tile-type constants, carried over from the
// teacher's pmtiles package even though this archive only ever uses one
// value of each: every osmdb tile blob is already a self-describing
// record (see internal/tilebuilder), so TileCompression is always None
// and TileType is always TypeOSMDB.
const (
	CompressionNone = 1
	CompressionGzip = 2

	TypeOSMDB = 1
)

// Header is the archive's 127-byte fixed header.
type Header struct {
	RootDirOffset  uint64
	RootDirLength  uint64
	MetadataOffset uint64
	MetadataLength uint64
	LeafDirOffset  uint64
	LeafDirLength  uint64
	TileDataOffset uint64
	TileDataLength uint64

	NumAddressedTiles uint64
	NumTileEntries    uint64
	NumTileContents   uint64

	Clustered           bool
	InternalCompression uint8
	TileCompression     uint8
	TileType            uint8

	MinZoom uint8
	MaxZoom uint8

	MinLon float32
	MinLat float32
	MaxLon float32
	MaxLat float32

	// Changeset is the highest OSM changeset id observed by the import
	// run that produced the tiles this archive packages, per spec.md
	// §6's required `changeset` attribute.
	Changeset int64
}

// magic identifies an osmdb archive; archiveVersion lets osmdb-select
// refuse a file from an incompatible future layout instead of
// misreading it.
const (
	magic          = "OSMDBv6"
	archiveVersion = 1
)

// Serialize writes the 127-byte header.
func (h *Header) Serialize() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:7], magic)
	buf[7] = archiveVersion

	binary.LittleEndian.PutUint64(buf[8:16], h.RootDirOffset)
	binary.LittleEndian.PutUint64(buf[16:24], h.RootDirLength)
	binary.LittleEndian.PutUint64(buf[24:32], h.MetadataOffset)
	binary.LittleEndian.PutUint64(buf[32:40], h.MetadataLength)
	binary.LittleEndian.PutUint64(buf[40:48], h.LeafDirOffset)
	binary.LittleEndian.PutUint64(buf[48:56], h.LeafDirLength)
	binary.LittleEndian.PutUint64(buf[56:64], h.TileDataOffset)
	binary.LittleEndian.PutUint64(buf[64:72], h.TileDataLength)
	binary.LittleEndian.PutUint64(buf[72:80], h.NumAddressedTiles)
	binary.LittleEndian.PutUint64(buf[80:88], h.NumTileEntries)
	binary.LittleEndian.PutUint64(buf[88:96], h.NumTileContents)

	if h.Clustered {
		buf[96] = 1
	}
	buf[97] = h.InternalCompression
	buf[98] = h.TileCompression
	buf[99] = h.TileType
	buf[100] = h.MinZoom
	buf[101] = h.MaxZoom

	binary.LittleEndian.PutUint32(buf[102:106], lonLatToE7(h.MinLon))
	binary.LittleEndian.PutUint32(buf[106:110], lonLatToE7(h.MinLat))
	binary.LittleEndian.PutUint32(buf[110:114], lonLatToE7(h.MaxLon))
	binary.LittleEndian.PutUint32(buf[114:118], lonLatToE7(h.MaxLat))

	binary.LittleEndian.PutUint64(buf[118:126], uint64(h.Changeset))
	// buf[126] reserved, left zero.

	return buf
}

// DeserializeHeader parses a 127-byte archive header.
func DeserializeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("archive: header too short: %d bytes (need %d)", len(buf), HeaderSize)
	}
	if string(buf[0:7]) != magic {
		return Header{}, fmt.Errorf("archive: invalid magic bytes: %q", buf[0:7])
	}
	if buf[7] != archiveVersion {
		return Header{}, fmt.Errorf("archive: unsupported version: %d (expected %d)", buf[7], archiveVersion)
	}

	h := Header{
		RootDirOffset:       binary.LittleEndian.Uint64(buf[8:16]),
		RootDirLength:       binary.LittleEndian.Uint64(buf[16:24]),
		MetadataOffset:      binary.LittleEndian.Uint64(buf[24:32]),
		MetadataLength:      binary.LittleEndian.Uint64(buf[32:40]),
		LeafDirOffset:       binary.LittleEndian.Uint64(buf[40:48]),
		LeafDirLength:       binary.LittleEndian.Uint64(buf[48:56]),
		TileDataOffset:      binary.LittleEndian.Uint64(buf[56:64]),
		TileDataLength:      binary.LittleEndian.Uint64(buf[64:72]),
		NumAddressedTiles:   binary.LittleEndian.Uint64(buf[72:80]),
		NumTileEntries:      binary.LittleEndian.Uint64(buf[80:88]),
		NumTileContents:     binary.LittleEndian.Uint64(buf[88:96]),
		Clustered:           buf[96] == 1,
		InternalCompression: buf[97],
		TileCompression:     buf[98],
		TileType:            buf[99],
		MinZoom:             buf[100],
		MaxZoom:             buf[101],
		MinLon:              e7ToLonLat(binary.LittleEndian.Uint32(buf[102:106])),
		MinLat:              e7ToLonLat(binary.LittleEndian.Uint32(buf[106:110])),
		MaxLon:              e7ToLonLat(binary.LittleEndian.Uint32(buf[110:114])),
		MaxLat:              e7ToLonLat(binary.LittleEndian.Uint32(buf[114:118])),
		Changeset:           int64(binary.LittleEndian.Uint64(buf[118:126])),
	}
	return h, nil
}

func lonLatToE7(v float32) uint32 {
	return uint32(int32(math.Round(float64(v) * 1e7)))
}

func e7ToLonLat(v uint32) float32 {
	return float32(float64(int32(v)) / 1e7)
}
