package osmimport

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/record"
	"github.com/jeffboody/osmdb/internal/xmlreader"
)

// elementKind tracks which of the three top-level OSM elements is
// currently open, so a nested `tag`/`nd`/`member` token knows which
// accumulator to feed.
type elementKind int

const (
	elementNone elementKind = iota
	elementNode
	elementWay
	elementRelation
)

// walkState is the single mutable cursor dispatch advances across the
// whole stream: exactly one of the per-entity scratch fields is live at
// a time, reset by the matching handleStart.
type walkState struct {
	current elementKind

	changeset int64
	tags      tagAccum

	nodeID           int64
	nodeLat, nodeLon float64

	wayID  int64
	wayNds []int64

	relID       int64
	relMembers  []record.Member
	relLabelNid int64
}

func newWalkState() *walkState {
	return &walkState{}
}

// dispatch advances st by one token, folding foreign characters out of
// tag values before they reach the class table or name processing, and
// calling the matching finishX when a top-level element closes.
func (im *Importer) dispatch(st *walkState, tok xmlreader.Token) error {
	switch tok.Kind {
	case xmlreader.StartElement:
		return im.handleStart(st, tok)
	case xmlreader.EndElement:
		return im.handleEnd(st, tok)
	default:
		return nil
	}
}

func (im *Importer) handleStart(st *walkState, tok xmlreader.Token) error {
	switch tok.Name {
	case "node":
		st.current = elementNode
		st.tags = tagAccum{}
		st.nodeID = attrInt64(tok, "id")
		st.nodeLat = attrFloat64(tok, "lat")
		st.nodeLon = attrFloat64(tok, "lon")
		st.changeset = attrInt64(tok, "changeset")
	case "way":
		st.current = elementWay
		st.tags = tagAccum{}
		st.wayID = attrInt64(tok, "id")
		st.wayNds = st.wayNds[:0]
		st.changeset = attrInt64(tok, "changeset")
	case "relation":
		st.current = elementRelation
		st.tags = tagAccum{}
		st.relID = attrInt64(tok, "id")
		st.relMembers = st.relMembers[:0]
		st.relLabelNid = 0
		st.changeset = attrInt64(tok, "changeset")
	case "tag":
		key := attrValue(tok, "k")
		value := im.fold.Fold(attrValue(tok, "v"))
		if st.current != elementNone {
			im.applyTag(&st.tags, key, value)
		}
	case "nd":
		if st.current == elementWay {
			st.wayNds = append(st.wayNds, attrInt64(tok, "ref"))
		}
	case "member":
		if st.current != elementRelation {
			return nil
		}
		switch attrValue(tok, "type") {
		case "way":
			st.relMembers = append(st.relMembers, record.Member{
				Wid:   attrInt64(tok, "ref"),
				Inner: attrValue(tok, "role") == "inner",
			})
		case "node":
			switch attrValue(tok, "role") {
			case "admin_centre", "label":
				st.relLabelNid = attrInt64(tok, "ref")
			}
		}
	}
	return nil
}

func (im *Importer) handleEnd(st *walkState, tok xmlreader.Token) error {
	switch tok.Name {
	case "node":
		if st.current != elementNode {
			return nil
		}
		st.current = elementNone
		if err := im.finishNode(st); err != nil {
			return fmt.Errorf("osmimport: node %d: %w", st.nodeID, err)
		}
	case "way":
		if st.current != elementWay {
			return nil
		}
		st.current = elementNone
		if err := im.finishWay(st); err != nil {
			return fmt.Errorf("osmimport: way %d: %w", st.wayID, err)
		}
	case "relation":
		if st.current != elementRelation {
			return nil
		}
		st.current = elementNone
		if err := im.finishRelation(st); err != nil {
			return fmt.Errorf("osmimport: relation %d: %w", st.relID, err)
		}
	}
	return nil
}
