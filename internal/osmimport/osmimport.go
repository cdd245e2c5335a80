// Package osmimport consumes an OSM XML stream and populates a blob
// index: it classifies nodes/ways/relations against a style and class
// table, normalises names, computes geometric ranges, and writes packed
// records plus reverse tile indices at two precomputed zoom levels.
package osmimport

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/classtable"
	"github.com/jeffboody/osmdb/internal/nameproc"
	"github.com/jeffboody/osmdb/internal/style"
	"github.com/jeffboody/osmdb/internal/translit"
	"github.com/jeffboody/osmdb/internal/xmlreader"
)

// ZoomLo and ZoomHi are the two precomputed reverse-index zoom tiers
// every selected entity is indexed at. Fixed rather than configurable:
// the tile builder's TileRefs lookup assumes exactly these two tiers
// exist.
const (
	ZoomLo = 9
	ZoomHi = 14
)

// reverseIndexMarginFrac enlarges a tile's bounding box by this fraction
// on each side before testing entity overlap, so a range that only
// grazes a tile edge is still reachable without clipping artefacts.
const reverseIndexMarginFrac = 1.0 / 16.0

// Options configures a new Importer.
type Options struct {
	Index   *blobindex.Index
	Style   style.Table
	Classes *classtable.Table
	Fold    translit.Transliterator // defaults to translit.Default if nil

	// Verbose enables periodic progress logging (see progress.go).
	Verbose bool
}

// Importer holds the running state of one import pass: the destination
// store, the resolved class policy, per-entity scratch buffers, counters
// and the malformed-tag tally required by the failure model.
type Importer struct {
	ix      *blobindex.Index
	sty     style.Table
	classes *classtable.Table
	policy  classtable.PolicyCodes
	fold    translit.Transliterator

	progress *progressLogger

	nodes, ways, rels int64
	malformedTags     int64
	maxChangeset      int64
}

// New builds an Importer, resolving the class table's policy codes up
// front so a missing required entry fails fast instead of misclassifying
// silently partway through a multi-hour import.
func New(opts Options) (*Importer, error) {
	policy, err := opts.Classes.ResolvePolicy()
	if err != nil {
		return nil, fmt.Errorf("osmimport: %w", err)
	}
	fold := opts.Fold
	if fold == nil {
		fold = translit.Default
	}
	return &Importer{
		ix:       opts.Index,
		sty:      opts.Style,
		classes:  opts.Classes,
		policy:   policy,
		fold:     fold,
		progress: newProgressLogger(opts.Verbose),
	}, nil
}

// Run drains r to completion, dispatching each element through the
// osm -> node|way|relation -> tag|nd|member state machine. A non-EOF
// read error or a store-level write failure aborts the import: the
// failure model does not attempt to recover a partial store.
func (im *Importer) Run(r xmlreader.Reader) error {
	st := newWalkState()
	for {
		tok, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("osmimport: reading stream: %w", err)
		}
		if err := im.dispatch(st, tok); err != nil {
			return err
		}
	}
	if err := im.ix.SetChangeset(im.maxChangeset); err != nil {
		return fmt.Errorf("osmimport: recording changeset: %w", err)
	}
	im.progress.finish(im.nodes, im.ways, im.rels, im.malformedTags)
	return nil
}

// Stats is a snapshot of the running counters, useful for a CLI's final
// summary line.
type Stats struct {
	Nodes, Ways, Relations int64
	MalformedTags          int64
	Changeset              int64
}

// Stats returns the importer's current counters.
func (im *Importer) Stats() Stats {
	return Stats{
		Nodes:         im.nodes,
		Ways:          im.ways,
		Relations:     im.rels,
		MalformedTags: im.malformedTags,
		Changeset:     im.maxChangeset,
	}
}

func (im *Importer) countMalformed() {
	im.malformedTags++
}

func (im *Importer) trackChangeset(cs int64) {
	if cs > im.maxChangeset {
		im.maxChangeset = cs
	}
}
