package nameproc

import "testing"

func TestNormaliseCapitalization(t *testing.T) {
	got := Normalise("flagstaff ranch road")
	if got.Name != "Flagstaff Ranch Road" {
		t.Fatalf("Name = %q, want %q", got.Name, "Flagstaff Ranch Road")
	}
}

func TestNormaliseNoCapsList(t *testing.T) {
	got := Normalise("park of the americas")
	if got.Name != "Park of the Americas" {
		t.Fatalf("Name = %q, want %q", got.Name, "Park of the Americas")
	}
}

func TestNormaliseStateHighwayRewrite(t *testing.T) {
	got := Normalise("State Highway 72")
	if got.Name != "Hwy 72" {
		t.Fatalf("Name = %q, want %q", got.Name, "Hwy 72")
	}
	if !got.PreferRef {
		t.Fatalf("PreferRef = false, want true")
	}
}

func TestNormaliseStateRouteRewrite(t *testing.T) {
	got := Normalise("State Route 9")
	if got.Name != "Rte 9" {
		t.Fatalf("Name = %q, want %q", got.Name, "Rte 9")
	}
	if !got.PreferRef {
		t.Fatalf("PreferRef = false, want true")
	}
}

func TestNormaliseCountyRoadRewrite(t *testing.T) {
	got := Normalise("County Road 5")
	if got.Name != "CR 5" {
		t.Fatalf("Name = %q, want %q", got.Name, "CR 5")
	}
	if got.PreferRef {
		t.Fatalf("PreferRef = true, want false")
	}
}

func TestNormaliseUSHighwayRewrite(t *testing.T) {
	got := Normalise("United States Highway 40")
	if got.Name != "US 40" {
		t.Fatalf("Name = %q, want %q", got.Name, "US 40")
	}
}

func TestNormaliseMultiUsePathRewrite(t *testing.T) {
	for _, in := range []string{"Multi Use Path", "Multi-Use Path", "Multiuse Path"} {
		if got := Normalise(in); got.Name != "MUP" {
			t.Fatalf("Normalise(%q).Name = %q, want MUP", in, got.Name)
		}
	}
}

func TestNormaliseTrailHeadRewrite(t *testing.T) {
	if got := Normalise("Trail Head"); got.Name != "TH" {
		t.Fatalf("Name = %q, want TH", got.Name)
	}
}

func TestNormaliseStripsElevationNoise(t *testing.T) {
	got := Normalise("Longs Peak 14,255 ft")
	if got.Name != "Longs Peak" {
		t.Fatalf("Name = %q, want %q", got.Name, "Longs Peak")
	}
}

func TestNormaliseIdempotent(t *testing.T) {
	inputs := []string{
		"State Highway 72",
		"flagstaff ranch road",
		"Longs Peak 14,255 ft",
		"North Main Street",
		"Trail Head",
	}
	for _, in := range inputs {
		once := Normalise(in).Name
		twice := Normalise(once).Name
		if once != twice {
			t.Fatalf("Normalise not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestAbbreviateEmptyWhenNoWordMatches(t *testing.T) {
	got := Normalise("Longs Peak Trail")
	if got.Abbrev == "" {
		t.Fatalf("expected non-empty Abbrev for a name containing an abbreviable word")
	}
	got2 := Normalise("Xyz Qrs")
	if got2.Abbrev != "" {
		t.Fatalf("Abbrev = %q, want empty for a name with no abbreviable words", got2.Abbrev)
	}
}

func TestAbbreviateDiffersFromName(t *testing.T) {
	got := Normalise("North Main Street")
	if got.Abbrev == got.Name {
		t.Fatalf("Abbrev equals Name, want a distinct abbreviated form")
	}
	if got.Abbrev != "N Main St" {
		t.Fatalf("Abbrev = %q, want %q", got.Abbrev, "N Main St")
	}
}
