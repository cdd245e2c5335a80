package archive

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Entry locates one tile (or a run of consecutive tile ids whose
// equal-length data are stored back to back, tile r of the run at
// Offset + r*Length) inside the archive's tile-data section.
type Entry struct {
	TileID    uint64
	Offset    uint64
	Length    uint32
	RunLength uint32
}

// GlobalTileID packs (zoom, x, y) into a single id that orders tiles
// first by zoom then by Hilbert position within that zoom, mirroring the
// teacher's ZXYToTileID. osmdb-prefetch's zoom set is sparse
// ({3,5,7,9,11,13,15}, not every level), but the formula only needs to
// be injective and zoom-monotonic, not a dense pyramid, so the gaps cost
// nothing.
func GlobalTileID(zoom, x, y int) uint64 {
	if zoom == 0 {
		return 0
	}
	var acc uint64
	for i := 0; i < zoom; i++ {
		n := uint64(1) << uint(i)
		acc += n * n
	}
	n := uint64(1) << uint(zoom)
	return acc + xyToHilbert(uint64(x), uint64(y), n)
}

// GlobalTileIDToZXY is the inverse of GlobalTileID.
func GlobalTileIDToZXY(tileID uint64) (zoom, x, y int) {
	if tileID == 0 {
		return 0, 0, 0
	}
	var acc uint64
	zoom = 0
	for {
		n := uint64(1) << uint(zoom)
		count := n * n
		if acc+count > tileID {
			break
		}
		acc += count
		zoom++
	}
	hilbertIdx := tileID - acc
	n := uint64(1) << uint(zoom)
	hx, hy := hilbertToXY(hilbertIdx, n)
	return zoom, int(hx), int(hy)
}

func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	s := n / 2
	for s > 0 {
		var rx, ry uint64
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = s*2 - 1 - x
				y = s*2 - 1 - y
			}
			x, y = y, x
		}
		s /= 2
	}
	return d
}

func hilbertToXY(d, n uint64) (x, y uint64) {
	var rx, ry uint64
	s := uint64(1)
	for s < n {
		rx = 1 & (d / 2)
		ry = 1 & (d ^ rx)
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
		x += s * rx
		y += s * ry
		d /= 4
		s *= 2
	}
	return x, y
}

// maxRootEntries bounds the root directory before entries spill into
// leaf directories, same threshold as the teacher's pmtiles package.
const maxRootEntries = 16384

// leafEntrySize batches how many entries each leaf directory holds.
const leafEntrySize = 4096

// buildDirectory sorts entries by tile id, merges runs of contiguous,
// identically-sized tiles, and serializes the result as a root directory
// plus (if the entry count demands it) a concatenated block of leaf
// directories the root points into.
func buildDirectory(entries []Entry) (rootDir []byte, leafDirs []byte, err error) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TileID < entries[j].TileID
	})
	optimized := optimizeRunLengths(entries)

	if len(optimized) <= maxRootEntries {
		rootDir, err = serializeDirectory(optimized)
		return rootDir, nil, err
	}

	numLeaves := (len(optimized) + leafEntrySize - 1) / leafEntrySize
	type leafInfo struct {
		firstTileID uint64
		offset      uint64
		length      uint64
	}
	var leafBuf bytes.Buffer
	leaves := make([]leafInfo, 0, numLeaves)

	for i := 0; i < len(optimized); i += leafEntrySize {
		end := i + leafEntrySize
		if end > len(optimized) {
			end = len(optimized)
		}
		chunk := optimized[i:end]
		leafData, serErr := serializeDirectory(chunk)
		if serErr != nil {
			return nil, nil, serErr
		}
		leaves = append(leaves, leafInfo{
			firstTileID: chunk[0].TileID,
			offset:      uint64(leafBuf.Len()),
			length:      uint64(len(leafData)),
		})
		leafBuf.Write(leafData)
	}

	rootEntries := make([]Entry, len(leaves))
	for i, l := range leaves {
		rootEntries[i] = Entry{TileID: l.firstTileID, Offset: l.offset, Length: uint32(l.length)}
	}
	rootDir, err = serializeDirectory(rootEntries)
	return rootDir, leafBuf.Bytes(), err
}

func serializeDirectory(entries []Entry) ([]byte, error) {
	var raw bytes.Buffer
	buf := make([]byte, binary.MaxVarintLen64)

	n := binary.PutUvarint(buf, uint64(len(entries)))
	raw.Write(buf[:n])

	var lastID uint64
	for _, e := range entries {
		n = binary.PutUvarint(buf, e.TileID-lastID)
		raw.Write(buf[:n])
		lastID = e.TileID
	}
	for _, e := range entries {
		n = binary.PutUvarint(buf, uint64(e.RunLength))
		raw.Write(buf[:n])
	}
	for _, e := range entries {
		n = binary.PutUvarint(buf, uint64(e.Length))
		raw.Write(buf[:n])
	}

	var lastOffset uint64
	for i, e := range entries {
		var val uint64
		if i > 0 && e.Offset == lastOffset+uint64(entries[i-1].Length) {
			val = 0
		} else {
			val = e.Offset + 1
		}
		n = binary.PutUvarint(buf, val)
		raw.Write(buf[:n])
		lastOffset = e.Offset
	}

	var compressed bytes.Buffer
	gw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(raw.Bytes()); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return compressed.Bytes(), nil
}

// DeserializeDirectory decompresses and parses a gzip-compressed
// directory block.
func DeserializeDirectory(data []byte) ([]Entry, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("archive: gzip reader: %w", err)
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("archive: decompressing directory: %w", err)
	}
	r := bytes.NewReader(raw)

	numEntries, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("archive: reading entry count: %w", err)
	}
	entries := make([]Entry, numEntries)

	var lastID uint64
	for i := uint64(0); i < numEntries; i++ {
		delta, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("archive: reading tile id delta %d: %w", i, err)
		}
		lastID += delta
		entries[i].TileID = lastID
	}
	for i := uint64(0); i < numEntries; i++ {
		rl, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("archive: reading run length %d: %w", i, err)
		}
		entries[i].RunLength = uint32(rl)
	}
	for i := uint64(0); i < numEntries; i++ {
		length, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("archive: reading length %d: %w", i, err)
		}
		entries[i].Length = uint32(length)
	}
	var lastOffset uint64
	for i := uint64(0); i < numEntries; i++ {
		val, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("archive: reading offset %d: %w", i, err)
		}
		if val == 0 && i > 0 {
			entries[i].Offset = lastOffset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = val - 1
		}
		lastOffset = entries[i].Offset
	}
	return entries, nil
}

// optimizeRunLengths merges consecutive entries whose tile ids, offsets
// and lengths line up into contiguous runs, so a dense zoom level
// collapses to far fewer directory entries.
func optimizeRunLengths(entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	result := make([]Entry, 0, len(entries))
	current := entries[0]
	current.RunLength = 1

	for i := 1; i < len(entries); i++ {
		e := entries[i]
		expectedTileID := current.TileID + uint64(current.RunLength)
		expectedOffset := current.Offset + uint64(current.Length)*uint64(current.RunLength)
		if e.TileID == expectedTileID && e.Offset == expectedOffset && e.Length == current.Length {
			current.RunLength++
		} else {
			result = append(result, current)
			current = e
			current.RunLength = 1
		}
	}
	result = append(result, current)
	return result
}
