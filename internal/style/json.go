package style

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonEntry is one row of a JSON style file: a class code with its
// selection and abbreviation policy.
type jsonEntry struct {
	Class      uint32 `json:"class"`
	Kind       string `json:"kind"`
	Center     bool   `json:"center"`
	Abbreviate bool   `json:"abbreviate"`
}

// jsonTable is the default Table implementation: a flat JSON array of
// per-class rows, loaded once and held in a map for O(1) lookup.
type jsonTable struct {
	rows map[uint32]jsonEntry
}

// LoadJSON parses a style file of the form `[{"class":10,"kind":"poly",
// "center":false,"abbreviate":true}, ...]`. Classes absent from the file
// resolve to Selection{Kind: None}.
func LoadJSON(r io.Reader) (Table, error) {
	var entries []jsonEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("style: decode: %w", err)
	}
	rows := make(map[uint32]jsonEntry, len(entries))
	for _, e := range entries {
		if _, dup := rows[e.Class]; dup {
			return nil, fmt.Errorf("style: duplicate entry for class %d", e.Class)
		}
		if _, err := parseKind(e.Kind); err != nil {
			return nil, fmt.Errorf("style: class %d: %w", e.Class, err)
		}
		rows[e.Class] = e
	}
	return &jsonTable{rows: rows}, nil
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return None, nil
	case "line":
		return Line, nil
	case "poly", "polygon":
		return Polygon, nil
	case "point":
		return Point, nil
	default:
		return None, fmt.Errorf("unknown kind %q", s)
	}
}

func (t *jsonTable) Select(class uint32) Selection {
	e, ok := t.rows[class]
	if !ok {
		return Selection{Kind: None}
	}
	kind, _ := parseKind(e.Kind)
	return Selection{Kind: kind, Center: e.Center}
}

func (t *jsonTable) Abbreviate(class uint32) bool {
	e, ok := t.rows[class]
	return ok && e.Abbreviate
}
