package archive

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Reader provides read access to an existing archive file, used by
// osmdb-select to extract one tile blob by (zoom, x, y).
type Reader struct {
	file    *os.File
	header  Header
	entries []Entry
	tileIdx map[uint64]tileRef
}

type tileRef struct {
	offset uint64
	length uint32
}

// OpenReader opens an archive for reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", path, err)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: reading header: %w", err)
	}
	header, err := DeserializeHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	rootDirData := make([]byte, header.RootDirLength)
	if _, err := f.ReadAt(rootDirData, int64(header.RootDirOffset)); err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: reading root directory: %w", err)
	}
	rootEntries, err := DeserializeDirectory(rootDirData)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: parsing root directory: %w", err)
	}

	var allEntries []Entry
	for _, e := range rootEntries {
		if e.RunLength == 0 {
			leafData := make([]byte, e.Length)
			absOffset := int64(header.LeafDirOffset + e.Offset)
			if _, err := f.ReadAt(leafData, absOffset); err != nil {
				f.Close()
				return nil, fmt.Errorf("archive: reading leaf directory at offset %d: %w", absOffset, err)
			}
			leafEntries, err := DeserializeDirectory(leafData)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("archive: parsing leaf directory: %w", err)
			}
			allEntries = append(allEntries, leafEntries...)
		} else {
			allEntries = append(allEntries, e)
		}
	}

	tileIdx := make(map[uint64]tileRef, len(allEntries)*2)
	var expanded []Entry
	for _, e := range allEntries {
		for r := uint32(0); r < e.RunLength; r++ {
			tileID := e.TileID + uint64(r)
			ref := tileRef{
				offset: header.TileDataOffset + e.Offset + uint64(r)*uint64(e.Length),
				length: e.Length,
			}
			tileIdx[tileID] = ref
			expanded = append(expanded, Entry{TileID: tileID, Offset: ref.offset, Length: ref.length, RunLength: 1})
		}
	}
	sort.Slice(expanded, func(i, j int) bool { return expanded[i].TileID < expanded[j].TileID })

	return &Reader{file: f, header: header, entries: expanded, tileIdx: tileIdx}, nil
}

// Header returns the archive's parsed header.
func (r *Reader) Header() Header { return r.header }

// ReadTile returns the raw osmdb blob for (zoom, x, y), or nil, nil if
// the archive has no tile at that address.
func (r *Reader) ReadTile(zoom, x, y int) ([]byte, error) {
	tileID := GlobalTileID(zoom, x, y)
	ref, ok := r.tileIdx[tileID]
	if !ok {
		return nil, nil
	}
	data := make([]byte, ref.length)
	if _, err := r.file.ReadAt(data, int64(ref.offset)); err != nil {
		return nil, fmt.Errorf("archive: reading tile z%d/%d/%d: %w", zoom, x, y, err)
	}
	return data, nil
}

// NumTiles returns the total number of addressed tiles in the archive.
func (r *Reader) NumTiles() int { return len(r.entries) }

// Metadata reads and decompresses the archive's JSON attribute blob
// (name, pattern, ext, bounds, zmin, zmax, changeset).
func (r *Reader) Metadata() (map[string]interface{}, error) {
	if r.header.MetadataLength == 0 {
		return nil, nil
	}
	metaRaw := make([]byte, r.header.MetadataLength)
	if _, err := r.file.ReadAt(metaRaw, int64(r.header.MetadataOffset)); err != nil {
		return nil, fmt.Errorf("archive: reading metadata: %w", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(metaRaw))
	if err != nil {
		return nil, fmt.Errorf("archive: decompressing metadata: %w", err)
	}
	defer gz.Close()

	jsonData, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("archive: reading decompressed metadata: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(jsonData, &meta); err != nil {
		return nil, fmt.Errorf("archive: parsing metadata JSON: %w", err)
	}
	return meta, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
