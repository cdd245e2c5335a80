// Package record defines the packed binary layouts for the eight entity
// records (NodeCoord, NodeInfo, WayInfo, WayRange, WayNds, RelInfo,
// RelMembers, RelRange) and the TileRefs reverse index, plus the accessor
// functions used to read them without copying. Records are exchanged as
// contiguous byte slices so that a chunk eviction in the blob index is a
// single write (see internal/chunk and internal/blobindex).
package record

import "fmt"

// ChunkSize groups consecutive ids into chunks: major_id = id / ChunkSize,
// minor_id = id % ChunkSize. A power of ten keeps the split human-readable
// when debugging a store with osmdb-select.
const ChunkSize = 100

// MajorMinor splits an entity id into its chunk address.
func MajorMinor(id int64) (major, minor int64) {
	major = id / ChunkSize
	minor = id % ChunkSize
	if minor < 0 {
		// Defensive: OSM ids are non-negative in practice, but the data
		// model only requires signed 64-bit storage.
		minor += ChunkSize
		major--
	}
	return
}

// Kind identifies one of the nine record layouts. Six of the fourteen
// storage tables (node/way/rel TileRefs at Zlo and Zhi) all share the
// TileRefs layout, so Kind has one TileRefs member rather than six.
type Kind uint8

const (
	KindNodeCoord Kind = iota
	KindNodeInfo
	KindWayInfo
	KindWayRange
	KindWayNds
	KindRelInfo
	KindRelMembers
	KindRelRange
	KindTileRefs
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindNodeCoord:
		return "NodeCoord"
	case KindNodeInfo:
		return "NodeInfo"
	case KindWayInfo:
		return "WayInfo"
	case KindWayRange:
		return "WayRange"
	case KindWayNds:
		return "WayNds"
	case KindRelInfo:
		return "RelInfo"
	case KindRelMembers:
		return "RelMembers"
	case KindRelRange:
		return "RelRange"
	case KindTileRefs:
		return "TileRefs"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// EntityClass distinguishes the three OSM entity kinds a TileRefs table
// indexes: node, way, relation.
type EntityClass uint8

const (
	EntityNode EntityClass = iota
	EntityWay
	EntityRel
)

func (e EntityClass) String() string {
	switch e {
	case EntityNode:
		return "node"
	case EntityWay:
		return "way"
	case EntityRel:
		return "rel"
	default:
		return "unknown"
	}
}

// ZoomTier selects which of the two precomputed TileRefs zoom levels a
// Type refers to.
type ZoomTier uint8

const (
	ZoomLo ZoomTier = iota
	ZoomHi
)

// Type is one of the fourteen persistent storage tables: the eight
// non-TileRefs Kinds, plus node/way/rel TileRefs at ZoomLo and ZoomHi.
// Type is what the blob index's persistent layer and in-memory cache key
// entries by.
type Type uint8

const (
	TypeNodeCoord Type = iota
	TypeNodeInfo
	TypeWayInfo
	TypeWayRange
	TypeWayNds
	TypeRelInfo
	TypeRelMembers
	TypeRelRange
	TypeNodeTileRefsLo
	TypeNodeTileRefsHi
	TypeWayTileRefsLo
	TypeWayTileRefsHi
	TypeRelTileRefsLo
	TypeRelTileRefsHi
	numTypes
)

// NumTypes is the number of persistent storage tables (14), used to size
// the thread-sharded prepared-statement pool: slot = NumTypes*tid + type.
const NumTypes = int(numTypes)

var typeNames = [numTypes]string{
	TypeNodeCoord:       "node_coord",
	TypeNodeInfo:        "node_info",
	TypeWayInfo:         "way_info",
	TypeWayRange:        "way_range",
	TypeWayNds:          "way_nds",
	TypeRelInfo:         "rel_info",
	TypeRelMembers:      "rel_members",
	TypeRelRange:        "rel_range",
	TypeNodeTileRefsLo:  "node_tilerefs_lo",
	TypeNodeTileRefsHi:  "node_tilerefs_hi",
	TypeWayTileRefsLo:   "way_tilerefs_lo",
	TypeWayTileRefsHi:   "way_tilerefs_hi",
	TypeRelTileRefsLo:   "rel_tilerefs_lo",
	TypeRelTileRefsHi:   "rel_tilerefs_hi",
}

// TableName returns the SQL table name for a storage type. Every name is
// a valid unquoted identifier, so callers may use it directly in a
// prepared statement string built once at startup.
func (t Type) TableName() string {
	if int(t) >= len(typeNames) {
		return fmt.Sprintf("type_%d", t)
	}
	return typeNames[t]
}

// Kind returns the record layout this storage type holds.
func (t Type) Kind() Kind {
	switch t {
	case TypeNodeCoord:
		return KindNodeCoord
	case TypeNodeInfo:
		return KindNodeInfo
	case TypeWayInfo:
		return KindWayInfo
	case TypeWayRange:
		return KindWayRange
	case TypeWayNds:
		return KindWayNds
	case TypeRelInfo:
		return KindRelInfo
	case TypeRelMembers:
		return KindRelMembers
	case TypeRelRange:
		return KindRelRange
	default:
		return KindTileRefs
	}
}

// IsTileRefs reports whether t stores the single-record-per-chunk TileRefs
// layout (minor_id is always 0, only one logical record per major_id).
func (t Type) IsTileRefs() bool {
	return t.Kind() == KindTileRefs
}

// TileRefsType returns the storage type for (entity class, zoom tier).
func TileRefsType(e EntityClass, zoom ZoomTier) Type {
	switch e {
	case EntityNode:
		if zoom == ZoomLo {
			return TypeNodeTileRefsLo
		}
		return TypeNodeTileRefsHi
	case EntityWay:
		if zoom == ZoomLo {
			return TypeWayTileRefsLo
		}
		return TypeWayTileRefsHi
	default:
		if zoom == ZoomLo {
			return TypeRelTileRefsLo
		}
		return TypeRelTileRefsHi
	}
}

// WayFlags are bit flags carried by WayInfo (and reused by RelMembers'
// per-member inner bit is separate; see Member in rel.go).
type WayFlags uint16

const (
	FlagForward WayFlags = 1 << iota
	FlagReverse
	FlagBridge
	FlagTunnel
	FlagCutting
	FlagBuilding
	FlagNameRef
	FlagInner
)

// RelType enumerates the relation "type" tag values the pipeline cares
// about; everything else is discarded per §4.D.
type RelType uint8

const (
	RelNone RelType = iota
	RelBoundary
	RelMultipolygon
)
