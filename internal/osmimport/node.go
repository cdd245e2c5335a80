package osmimport

import (
	"fmt"

	"github.com/jeffboody/osmdb/internal/record"
	"github.com/jeffboody/osmdb/internal/style"
)

// finishNode runs the post-processing §4.D describes for `/node`: always
// store NodeCoord; remap a protected class per ownership/protect_class;
// if the style wants points of the resolved class, choose a name,
// attach it to NodeInfo, store it, and reverse-index the coordinate at
// both precomputed zooms.
func (im *Importer) finishNode(st *walkState) error {
	im.trackChangeset(st.changeset)
	im.nodes++
	im.progress.maybeLog(im.nodes, im.ways, im.rels, im.malformedTags)

	nc := record.NodeCoord{Nid: st.nodeID, Lat: st.nodeLat, Lon: st.nodeLon}
	if err := im.ix.Add(0, record.TypeNodeCoord, st.nodeID, record.MarshalNodeCoord(nc)); err != nil {
		return fmt.Errorf("osmimport: storing node %d coord: %w", st.nodeID, err)
	}

	class := im.resolvedProtectClass(&st.tags)
	sel := im.sty.Select(class)
	if sel.Kind == style.None {
		return nil
	}

	preferRefNode := im.isHighwayRefPreferring(class)
	text, nameRef := im.selectName(class, st.tags.name, st.tags.ref, preferRefNode)
	flags := applyNameRef(st.tags.flags, nameRef)
	if st.tags.capital {
		flags |= flagCapital
	}
	if st.tags.stateCapital {
		flags |= flagStateCapital
	}

	info := record.NodeInfo{
		Nid:   st.nodeID,
		Class: class,
		Flags: flags,
		Ele:   im.resolvedElevationFeet(&st.tags),
		Name:  text,
	}
	if err := im.ix.Add(0, record.TypeNodeInfo, st.nodeID, record.MarshalNodeInfo(info)); err != nil {
		return fmt.Errorf("osmimport: storing node %d info: %w", st.nodeID, err)
	}

	return im.indexEntityTiles(record.EntityNode, st.nodeID,
		st.nodeLat, st.nodeLon, st.nodeLat, st.nodeLon, reverseIndexMarginFrac)
}
