package blobindex

// Mode selects how an Index may be used for the lifetime of its process.
type Mode int

const (
	// Create opens a fresh persistent store for a single-writer import run.
	Create Mode = iota
	// Append reopens an existing store for additional single-writer import.
	Append
	// ReadOnly serves concurrent multi-reader lookups with no writes.
	ReadOnly
)

func (m Mode) String() string {
	switch m {
	case Create:
		return "create"
	case Append:
		return "append"
	case ReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// writable reports whether the mode permits Add/AddTile.
func (m Mode) writable() bool {
	return m == Create || m == Append
}
