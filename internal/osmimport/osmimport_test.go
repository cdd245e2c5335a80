package osmimport

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/classtable"
	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/record"
	"github.com/jeffboody/osmdb/internal/style"
	"github.com/jeffboody/osmdb/internal/xmlreader"
)

const testClasses = `
building	yes	10
building	house	11
barrier	yes	20
office	yes	30
historic	yes	40
man_made	yes	50
tourism	yes	60
boundary	national_park	70
boundary	national_park_np2	71
boundary	protected_area	80
boundary	protected_area_nm3	81
highway	motorway	90
highway	motorway_junction	91
highway	residential	100
leisure	park	110
natural	peak	120
`

const testStyle = `[
	{"class": 90, "kind": "line"},
	{"class": 100, "kind": "line", "abbreviate": true},
	{"class": 110, "kind": "polygon"},
	{"class": 120, "kind": "point", "center": true}
]`

func newTestImporter(t *testing.T, verbose bool) (*Importer, *blobindex.Index) {
	t.Helper()
	classes, err := classtable.Load(strings.NewReader(testClasses))
	if err != nil {
		t.Fatalf("classtable.Load: %v", err)
	}
	sty, err := style.LoadJSON(strings.NewReader(testStyle))
	if err != nil {
		t.Fatalf("style.LoadJSON: %v", err)
	}
	path := filepath.Join(t.TempDir(), "test.db")
	ix, err := blobindex.Open(blobindex.Options{Path: path, Mode: blobindex.Create, SmemGB: 1})
	if err != nil {
		t.Fatalf("blobindex.Open: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })

	im, err := New(Options{Index: ix, Style: sty, Classes: classes, Verbose: verbose})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return im, ix
}

const sampleOSM = `<?xml version="1.0"?>
<osm>
 <node id="1" lat="40.0150" lon="-105.2705" changeset="100"/>
 <node id="2" lat="40.0160" lon="-105.2695" changeset="100"/>
 <way id="10" changeset="100">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="highway" v="residential"/>
  <tag k="name" v="Pearl Street"/>
 </way>
</osm>`

func TestRunImportsNodeAndWay(t *testing.T) {
	im, ix := newTestImporter(t, false)
	if err := im.Run(xmlreader.New(strings.NewReader(sampleOSM))); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := im.Stats()
	if stats.Nodes != 2 || stats.Ways != 1 || stats.Relations != 0 {
		t.Fatalf("Stats = %+v, want 2 nodes, 1 way, 0 relations", stats)
	}
	if stats.Changeset != 100 {
		t.Fatalf("Changeset = %d, want 100", stats.Changeset)
	}

	h, err := ix.Get(0, record.TypeWayInfo, 10)
	if err != nil {
		t.Fatalf("Get WayInfo: %v", err)
	}
	if h == nil {
		t.Fatalf("WayInfo not stored for way 10")
	}
	blob, off := h.Blob()
	info := record.UnmarshalWayInfo(blob, off)
	ix.Put(h)
	if info.Class != 100 {
		t.Fatalf("WayInfo.Class = %d, want 100", info.Class)
	}
	if info.Name != "Pearl St" {
		t.Fatalf("WayInfo.Name = %q, want %q", info.Name, "Pearl St")
	}

	rh, err := ix.Get(0, record.TypeWayRange, 10)
	if err != nil {
		t.Fatalf("Get WayRange: %v", err)
	}
	if rh == nil {
		t.Fatalf("WayRange not stored for way 10")
	}
	rb, roff := rh.Blob()
	rng := record.UnmarshalWayRange(rb, roff)
	ix.Put(rh)
	if rng.LatT != 40.0160 || rng.LatB != 40.0150 {
		t.Fatalf("WayRange = %+v, unexpected latitude bounds", rng)
	}

	x, y := coord.LonLatToTile(rng.LonL, rng.LatT, ZoomHi)
	tileID := coord.TileID(x, y)
	th, err := ix.Get(0, record.TileRefsType(record.EntityWay, record.ZoomHi), tileID)
	if err != nil {
		t.Fatalf("Get TileRefs: %v", err)
	}
	if th == nil {
		t.Fatalf("way 10 not reverse-indexed into its own tile at zoom %d", ZoomHi)
	}
	tb, toff := th.Blob()
	refs := record.RefsOf(tb, toff)
	ix.Put(th)
	found := false
	for _, r := range refs {
		if r == 10 {
			found = true
		}
	}
	if !found {
		t.Fatalf("RefsOf = %v, want to contain way id 10", refs)
	}
}

func TestOverrideClassPolicy(t *testing.T) {
	im, _ := newTestImporter(t, false)

	var t1 tagAccum
	im.applyTag(&t1, "tourism", "yes")
	if t1.class != im.policy.TourismYes {
		t.Fatalf("class after tourism=yes = %d, want %d", t1.class, im.policy.TourismYes)
	}
	im.applyTag(&t1, "leisure", "park")
	if t1.class != 110 {
		t.Fatalf("class after leisure=park = %d, want 110 (generic yes overwritten)", t1.class)
	}

	var t2 tagAccum
	im.applyTag(&t2, "boundary", "national_park")
	im.applyTag(&t2, "leisure", "park")
	if t2.class != im.policy.NationalPark {
		t.Fatalf("national_park class was overwritten: got %d, want %d", t2.class, im.policy.NationalPark)
	}
}

func TestSelectNamePrefersRefOnHighwayMotorway(t *testing.T) {
	im, _ := newTestImporter(t, false)
	text, nameRef := im.selectName(im.policy.HighwayMotorway, "Interstate 25", "I-25", true)
	if !nameRef || text != "I-25" {
		t.Fatalf("selectName = (%q,%v), want (%q,true)", text, nameRef, "I-25")
	}
}

func TestWayRangeRecomputedForRelationOnlyWay(t *testing.T) {
	im, ix := newTestImporter(t, false)
	const unselectedWayOSM = `<?xml version="1.0"?>
<osm>
 <node id="1" lat="39.0" lon="-104.0" changeset="5"/>
 <node id="2" lat="39.1" lon="-104.1" changeset="5"/>
 <way id="20" changeset="5">
  <nd ref="1"/>
  <nd ref="2"/>
 </way>
</osm>`
	if err := im.Run(xmlreader.New(strings.NewReader(unselectedWayOSM))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h, _ := ix.Get(0, record.TypeWayInfo, 20); h != nil {
		ix.Put(h)
		t.Fatalf("unselected way 20 should not have WayInfo")
	}
	if h, _ := ix.Get(0, record.TypeWayRange, 20); h != nil {
		ix.Put(h)
		t.Fatalf("unselected way 20 should not have a precomputed WayRange")
	}

	latT, lonL, latB, lonR, found, err := im.wayRangeOrRecompute(20)
	if err != nil {
		t.Fatalf("wayRangeOrRecompute: %v", err)
	}
	if !found {
		t.Fatalf("wayRangeOrRecompute did not find way 20")
	}
	if latT != 39.1 || latB != 39.0 || lonL != -104.1 || lonR != -104.0 {
		t.Fatalf("range = (%v,%v,%v,%v), unexpected bounds", latT, lonL, latB, lonR)
	}

	h, err := ix.Get(0, record.TypeWayRange, 20)
	if err != nil {
		t.Fatalf("Get WayRange after recompute: %v", err)
	}
	if h == nil {
		t.Fatalf("recomputed WayRange was not memoized back to the store")
	}
	ix.Put(h)
}

func TestFinishWayPrefersRefOnHighwayMotorway(t *testing.T) {
	im, ix := newTestImporter(t, false)
	const motorwayOSM = `<?xml version="1.0"?>
<osm>
 <node id="1" lat="39.70" lon="-104.90" changeset="7"/>
 <node id="2" lat="39.71" lon="-104.91" changeset="7"/>
 <way id="30" changeset="7">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="highway" v="motorway"/>
  <tag k="ref" v="I-70"/>
  <tag k="name" v="Dwight D. Eisenhower Highway"/>
 </way>
</osm>`
	if err := im.Run(xmlreader.New(strings.NewReader(motorwayOSM))); err != nil {
		t.Fatalf("Run: %v", err)
	}

	h, err := ix.Get(0, record.TypeWayInfo, 30)
	if err != nil {
		t.Fatalf("Get WayInfo: %v", err)
	}
	if h == nil {
		t.Fatalf("WayInfo not stored for way 30")
	}
	blob, off := h.Blob()
	info := record.UnmarshalWayInfo(blob, off)
	ix.Put(h)
	if info.Name != "I-70" {
		t.Fatalf("WayInfo.Name = %q, want %q (ref should win over name on a motorway)", info.Name, "I-70")
	}
	if info.Flags&record.WayFlags32(record.FlagNameRef) == 0 {
		t.Fatalf("WayInfo.Flags = %v, want FlagNameRef set", info.Flags)
	}
}

func TestFinishWayCollapsesRangeWhenCentered(t *testing.T) {
	im, ix := newTestImporter(t, false)
	const peakWayOSM = `<?xml version="1.0"?>
<osm>
 <node id="1" lat="39.00" lon="-105.00" changeset="9"/>
 <node id="2" lat="39.02" lon="-105.02" changeset="9"/>
 <way id="40" changeset="9">
  <nd ref="1"/>
  <nd ref="2"/>
  <tag k="natural" v="peak"/>
 </way>
</osm>`
	if err := im.Run(xmlreader.New(strings.NewReader(peakWayOSM))); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lat, lon := midpoint(39.02, -105.02, 39.00, -105.00)
	x, y := coord.LonLatToTile(lon, lat, ZoomHi)
	tileID := coord.TileID(x, y)
	th, err := ix.Get(0, record.TileRefsType(record.EntityWay, record.ZoomHi), tileID)
	if err != nil {
		t.Fatalf("Get TileRefs: %v", err)
	}
	if th == nil {
		t.Fatalf("centered way 40 not reverse-indexed into its midpoint tile at zoom %d", ZoomHi)
	}
	tb, toff := th.Blob()
	refs := record.RefsOf(tb, toff)
	ix.Put(th)
	found := false
	for _, r := range refs {
		if r == 40 {
			found = true
		}
	}
	if !found {
		t.Fatalf("RefsOf = %v, want to contain way id 40", refs)
	}

	// Off the full bounding box's own corner tile, away from the
	// midpoint, the centered way must not also be indexed — otherwise
	// the margin collapse to 0 did not actually take effect.
	cornerX, cornerY := coord.LonLatToTile(-105.02, 39.02, ZoomHi)
	if cornerX == x && cornerY == y {
		t.Skip("corner tile coincides with midpoint tile at this zoom; bounds too small to distinguish")
	}
	cornerTileID := coord.TileID(cornerX, cornerY)
	ch, err := ix.Get(0, record.TileRefsType(record.EntityWay, record.ZoomHi), cornerTileID)
	if err != nil {
		t.Fatalf("Get TileRefs (corner): %v", err)
	}
	if ch != nil {
		cb, coff := ch.Blob()
		cRefs := record.RefsOf(cb, coff)
		ix.Put(ch)
		for _, r := range cRefs {
			if r == 40 {
				t.Fatalf("way 40 reverse-indexed at its full-bbox corner tile; range was not collapsed to its midpoint")
			}
		}
	}
}
