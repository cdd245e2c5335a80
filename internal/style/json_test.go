package style

import (
	"strings"
	"testing"
)

const sample = `[
	{"class": 10, "kind": "poly", "center": false, "abbreviate": true},
	{"class": 20, "kind": "point", "center": true},
	{"class": 90, "kind": "line"}
]`

func TestLoadJSONSelect(t *testing.T) {
	tbl, err := LoadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	sel := tbl.Select(10)
	if sel.Kind != Polygon || sel.Center {
		t.Fatalf("Select(10) = %+v, want Polygon/center=false", sel)
	}
	sel20 := tbl.Select(20)
	if sel20.Kind != Point || !sel20.Center {
		t.Fatalf("Select(20) = %+v, want Point/center=true", sel20)
	}
}

func TestLoadJSONUnknownClassIsNone(t *testing.T) {
	tbl, err := LoadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if sel := tbl.Select(999); sel.Kind != None {
		t.Fatalf("Select(999) = %+v, want None", sel)
	}
}

func TestLoadJSONAbbreviate(t *testing.T) {
	tbl, err := LoadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if !tbl.Abbreviate(10) {
		t.Fatalf("Abbreviate(10) = false, want true")
	}
	if tbl.Abbreviate(90) {
		t.Fatalf("Abbreviate(90) = true, want false")
	}
}

func TestLoadJSONRejectsUnknownKind(t *testing.T) {
	const bad = `[{"class": 1, "kind": "bogus"}]`
	if _, err := LoadJSON(strings.NewReader(bad)); err == nil {
		t.Fatalf("LoadJSON accepted unknown kind")
	}
}

func TestLoadJSONRejectsDuplicateClass(t *testing.T) {
	const dup = `[{"class": 1, "kind": "line"}, {"class": 1, "kind": "poly"}]`
	if _, err := LoadJSON(strings.NewReader(dup)); err == nil {
		t.Fatalf("LoadJSON accepted duplicate class")
	}
}
