package archive

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Bounds is a WGS-84 bounding box, matching the data model's
// latT/lonL/latB/lonR field order.
type Bounds struct {
	LatT, LonL, LatB, LonR float64
}

// WriterOptions configures NewWriter. Name/Pattern/Ext mirror the
// `name=osmdbv6, pattern="zoom/x/y", ext=osmdb` attributes spec.md §6
// requires an archive to carry.
type WriterOptions struct {
	Name      string
	Pattern   string
	Ext       string
	MinZoom   int
	MaxZoom   int
	Bounds    Bounds
	Changeset int64
	// TempDir is the directory for the writer's temp tile-data file;
	// defaults to the output file's directory when empty.
	TempDir string
}

type dedupEntry struct {
	offset uint64
	length uint32
}

// Writer assembles an archive in two passes: tile blobs are appended to
// a temp file as they arrive, then Finalize sorts them into Hilbert
// order, builds the directory and writes the finished file. Safe for
// concurrent WriteTile calls from osmdb-prefetch's worker pool.
type Writer struct {
	outputPath string
	opts       WriterOptions
	header     Header

	tmpFile   *os.File
	tmpDir    string
	tmpOffset uint64
	entries   []Entry
	dedup     map[uint64]dedupEntry
	mu        sync.Mutex
	finalized bool
}

// NewWriter creates a new archive writer for outputPath.
func NewWriter(outputPath string, opts WriterOptions) (*Writer, error) {
	tmpDir := opts.TempDir
	if tmpDir == "" {
		tmpDir = filepath.Dir(outputPath)
	}
	tmpFile, err := os.CreateTemp(tmpDir, "osmdb-archive-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("archive: creating temp file: %w", err)
	}

	return &Writer{
		outputPath: outputPath,
		opts:       opts,
		header: Header{
			Clustered:           true,
			InternalCompression: CompressionGzip,
			TileCompression:     CompressionNone,
			TileType:            TypeOSMDB,
			MinZoom:             uint8(opts.MinZoom),
			MaxZoom:             uint8(opts.MaxZoom),
			MinLon:              float32(opts.Bounds.LonL),
			MinLat:              float32(opts.Bounds.LatB),
			MaxLon:              float32(opts.Bounds.LonR),
			MaxLat:              float32(opts.Bounds.LatT),
			Changeset:           opts.Changeset,
		},
		tmpFile: tmpFile,
		tmpDir:  tmpDir,
		entries: make([]Entry, 0, 1024),
		dedup:   make(map[uint64]dedupEntry),
	}, nil
}

func tileHash(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// WriteTile appends one tile's already-serialized osmdb blob (see
// internal/tilebuilder.BuildTile). Safe for concurrent use. An empty
// blob is skipped rather than stored, matching the "a tile with nothing
// to export still has a valid header" invariant — there is no benefit
// archiving a tile no reader would ask for.
func (w *Writer) WriteTile(zoom, x, y int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	tileID := GlobalTileID(zoom, x, y)
	hash := tileHash(data)

	w.mu.Lock()
	defer w.mu.Unlock()

	if de, ok := w.dedup[hash]; ok && de.length == uint32(len(data)) {
		w.entries = append(w.entries, Entry{TileID: tileID, Offset: de.offset, Length: de.length, RunLength: 1})
		return nil
	}

	offset := w.tmpOffset
	n, err := w.tmpFile.Write(data)
	if err != nil {
		return fmt.Errorf("archive: writing tile data: %w", err)
	}
	w.tmpOffset += uint64(n)
	w.dedup[hash] = dedupEntry{offset: offset, length: uint32(n)}
	w.entries = append(w.entries, Entry{TileID: tileID, Offset: offset, Length: uint32(len(data)), RunLength: 1})
	return nil
}

// Finalize builds the directory and metadata and writes the finished
// archive file. A second call returns an error.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finalized {
		return fmt.Errorf("archive: already finalized")
	}
	w.finalized = true

	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].TileID < w.entries[j].TileID })
	numContents := len(distinctOffsets(w.entries))

	if err := w.clusterTileData(); err != nil {
		return fmt.Errorf("archive: clustering tile data: %w", err)
	}

	rootDir, leafDirs, err := buildDirectory(w.entries)
	if err != nil {
		return fmt.Errorf("archive: building directory: %w", err)
	}

	metadata := w.buildMetadata()
	metadataBytes, err := compressGzip(metadata)
	if err != nil {
		return fmt.Errorf("archive: compressing metadata: %w", err)
	}

	rootDirOffset := uint64(HeaderSize)
	rootDirLength := uint64(len(rootDir))
	metadataOffset := rootDirOffset + rootDirLength
	metadataLength := uint64(len(metadataBytes))
	leafDirOffset := metadataOffset + metadataLength
	leafDirLength := uint64(len(leafDirs))
	tileDataOffset := leafDirOffset + leafDirLength

	w.header.RootDirOffset = rootDirOffset
	w.header.RootDirLength = rootDirLength
	w.header.MetadataOffset = metadataOffset
	w.header.MetadataLength = metadataLength
	w.header.LeafDirOffset = leafDirOffset
	w.header.LeafDirLength = leafDirLength
	w.header.TileDataOffset = tileDataOffset
	w.header.TileDataLength = w.tmpOffset
	w.header.NumAddressedTiles = uint64(len(w.entries))
	w.header.NumTileEntries = uint64(len(w.entries))
	w.header.NumTileContents = uint64(numContents)

	outFile, err := os.Create(w.outputPath)
	if err != nil {
		return fmt.Errorf("archive: creating output file: %w", err)
	}
	defer outFile.Close()

	if _, err := outFile.Write(w.header.Serialize()); err != nil {
		return fmt.Errorf("archive: writing header: %w", err)
	}
	if _, err := outFile.Write(rootDir); err != nil {
		return fmt.Errorf("archive: writing root directory: %w", err)
	}
	if _, err := outFile.Write(metadataBytes); err != nil {
		return fmt.Errorf("archive: writing metadata: %w", err)
	}
	if len(leafDirs) > 0 {
		if _, err := outFile.Write(leafDirs); err != nil {
			return fmt.Errorf("archive: writing leaf directories: %w", err)
		}
	}

	if _, err := w.tmpFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("archive: seeking temp file: %w", err)
	}
	if _, err := io.Copy(outFile, w.tmpFile); err != nil {
		return fmt.Errorf("archive: copying tile data: %w", err)
	}

	tmpPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(tmpPath)
	return nil
}

func distinctOffsets(entries []Entry) map[uint64]struct{} {
	m := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		m[e.Offset] = struct{}{}
	}
	return m
}

// clusterTileData rewrites the temp file so tile data follows the same
// Hilbert order as the sorted entries, deduplicating any entries that
// still share an old offset.
func (w *Writer) clusterTileData() error {
	newTmp, err := os.CreateTemp(w.tmpDir, "osmdb-archive-clustered-*.tmp")
	if err != nil {
		return fmt.Errorf("archive: creating clustered temp file: %w", err)
	}

	buf := make([]byte, 256*1024)
	var newOffset uint64
	type remap struct {
		newOffset uint64
		length    uint32
	}
	seen := make(map[uint64]remap)

	for i := range w.entries {
		e := &w.entries[i]
		if m, ok := seen[e.Offset]; ok && m.length == e.Length {
			e.Offset = m.newOffset
			continue
		}
		tileLen := int64(e.Length)
		if tileLen > int64(len(buf)) {
			buf = make([]byte, tileLen)
		}
		if _, err := w.tmpFile.ReadAt(buf[:tileLen], int64(e.Offset)); err != nil {
			return fmt.Errorf("archive: reading tile at offset %d: %w", e.Offset, err)
		}
		if _, err := newTmp.Write(buf[:tileLen]); err != nil {
			return fmt.Errorf("archive: writing tile at new offset %d: %w", newOffset, err)
		}
		oldOffset := e.Offset
		e.Offset = newOffset
		seen[oldOffset] = remap{newOffset: newOffset, length: e.Length}
		newOffset += uint64(tileLen)
	}

	oldPath := w.tmpFile.Name()
	w.tmpFile.Close()
	os.Remove(oldPath)
	w.tmpFile = newTmp
	w.tmpOffset = newOffset
	return nil
}

// Abort discards the writer's temp file without producing an output.
func (w *Writer) Abort() {
	if w.tmpFile != nil {
		tmpPath := w.tmpFile.Name()
		w.tmpFile.Close()
		os.Remove(tmpPath)
	}
}

func (w *Writer) buildMetadata() []byte {
	name := w.opts.Name
	if name == "" {
		name = "osmdbv6"
	}
	pattern := w.opts.Pattern
	if pattern == "" {
		pattern = "zoom/x/y"
	}
	ext := w.opts.Ext
	if ext == "" {
		ext = "osmdb"
	}

	meta := map[string]interface{}{
		"name":    name,
		"pattern": pattern,
		"ext":     ext,
		"bounds": fmt.Sprintf("%.6f %.6f %.6f %.6f",
			w.opts.Bounds.LatT, w.opts.Bounds.LonL, w.opts.Bounds.LatB, w.opts.Bounds.LonR),
		"zmin":      w.opts.MinZoom,
		"zmax":      w.opts.MaxZoom,
		"changeset": w.opts.Changeset,
	}
	data, _ := json.Marshal(meta)
	return data
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gw.Write(data); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
