package record

import "math"

func float64bits(f float64) uint64   { return math.Float64bits(f) }
func float64frombits(u uint64) float64 { return math.Float64frombits(u) }
func float32bits(f float32) uint32     { return math.Float32bits(f) }
func float32frombits(u uint32) float32 { return math.Float32frombits(u) }

// packName encodes a name as a 0-terminated string padded with trailing
// zero bytes to a multiple of four, per the data model. An empty name
// packs to a zero-length tail (size_name == 0), which the accessors treat
// as "absent" rather than "empty string".
func packName(name string) (buf []byte, size int) {
	if name == "" {
		return nil, 0
	}
	raw := len(name) + 1 // +1 for the terminator
	size = ((raw + 3) / 4) * 4
	buf = make([]byte, size)
	copy(buf, name)
	// buf[len(name)] is already 0, and so is the rest of the padding.
	return buf, size
}

// unpackName recovers the string from a packed, 0-terminated, zero-padded
// name tail. An empty tail yields "".
func unpackName(tail []byte) string {
	for i, b := range tail {
		if b == 0 {
			return string(tail[:i])
		}
	}
	return string(tail)
}
