package classtable

// PolicyCodes resolves the small set of (key, value) pairs the import
// pipeline's class-override policy (data model §3, §4.D) needs to
// recognise by meaning, not just by opaque code. Every field is looked
// up from the loaded Table, so the numeric values still come entirely
// from the external data file.
type PolicyCodes struct {
	BuildingYes, BarrierYes, OfficeYes, HistoricYes, ManMadeYes, TourismYes uint32

	// BuildingSubclasses holds every code registered under key
	// "building" except BuildingYes itself — the "any building
	// subclass" member of the generic-yes set.
	BuildingSubclasses map[uint32]bool

	NationalPark, ProtectedArea, NP2, NM3 uint32
	HighwayMotorway, HighwayMotorwayJunction uint32
}

// ResolvePolicy computes PolicyCodes from t. It returns an error if any
// of the required (key, value) pairs spec.md §6 calls out as the
// "minimum set" are missing from the table.
func (t *Table) ResolvePolicy() (PolicyCodes, error) {
	var p PolicyCodes
	var err error

	lookup := func(key, value string) uint32 {
		code, ok := t.Code(key, value)
		if !ok {
			err = firstErr(err, key, value)
		}
		return code
	}

	p.BuildingYes = lookup("building", "yes")
	p.BarrierYes = lookup("barrier", "yes")
	p.OfficeYes = lookup("office", "yes")
	p.HistoricYes = lookup("historic", "yes")
	p.ManMadeYes = lookup("man_made", "yes")
	p.TourismYes = lookup("tourism", "yes")
	p.NationalPark = lookup("boundary", "national_park")
	p.ProtectedArea = lookup("boundary", "protected_area")
	p.NP2 = lookup("boundary", "national_park_np2")
	p.NM3 = lookup("boundary", "protected_area_nm3")
	p.HighwayMotorway = lookup("highway", "motorway")
	p.HighwayMotorwayJunction = lookup("highway", "motorway_junction")
	if err != nil {
		return p, err
	}

	p.BuildingSubclasses = make(map[uint32]bool)
	for _, code := range t.CodesForKey("building") {
		if code != p.BuildingYes {
			p.BuildingSubclasses[code] = true
		}
	}
	return p, nil
}

// IsGenericYes reports whether code is one of the override-policy's
// "generic yes" classes: none, a *:yes class, or any building subclass.
func (p PolicyCodes) IsGenericYes(code uint32) bool {
	switch code {
	case None, p.BuildingYes, p.BarrierYes, p.OfficeYes, p.HistoricYes, p.ManMadeYes, p.TourismYes:
		return true
	}
	return p.BuildingSubclasses[code]
}

// IsProtectedClass reports whether code is the national-park or
// protected-area class, the two classes the override policy never lets
// a later tag overwrite.
func (p PolicyCodes) IsProtectedClass(code uint32) bool {
	return code == p.NationalPark || code == p.ProtectedArea
}

func firstErr(existing error, key, value string) error {
	if existing != nil {
		return existing
	}
	return &missingEntryError{key: key, value: value}
}

type missingEntryError struct {
	key, value string
}

func (e *missingEntryError) Error() string {
	return "classtable: required entry missing: " + e.key + "=" + e.value
}
