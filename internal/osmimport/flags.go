package osmimport

import "github.com/jeffboody/osmdb/internal/record"

// Extension flag bits live above the eight bits record.WayFlags defines,
// in the class-specific bit space record.WayFlags32's doc comment
// reserves for pipeline/style-assigned flags. capital/state_capital have
// no dedicated record field in the data model, so they ride along here
// rather than being dropped on the floor.
const (
	flagCapital      record.WayFlags32 = 1 << 8
	flagStateCapital record.WayFlags32 = 1 << 9
)
