// Package classtable maps OSM (key, value) tag pairs to the integer
// class codes the rest of the pipeline stores and compares. The table's
// content is always supplied by an external data file — this package
// never hard-codes a (key, value) -> code mapping, per the data model's
// "the exact table is supplied by a data file (out of scope); the code
// must not hard-code content."
package classtable

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// None is the fixed code for "no class", reserved regardless of what the
// data file contains — the data model requires class 0 == "none".
const None uint32 = 0

// Table is an immutable (key, value) -> code mapping, built once from a
// data file at import startup.
type Table struct {
	codes map[string]uint32   // "key\x00value" -> code
	byKey map[string][]uint32 // key -> all codes registered under it
}

// Load reads a newline-delimited class table from r. Each non-blank,
// non-comment ('#') line has the form "key\tvalue\tcode". Duplicate
// (key, value) pairs are rejected, since a silently-last-wins table
// would make two otherwise-identical import runs diverge depending on
// file ordering.
func Load(r io.Reader) (*Table, error) {
	t := &Table{
		codes: make(map[string]uint32),
		byKey: make(map[string][]uint32),
	}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("classtable: line %d: want 3 tab-separated fields, got %d", line, len(fields))
		}
		key, value := fields[0], fields[1]
		code64, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("classtable: line %d: bad code %q: %w", line, fields[2], err)
		}
		code := uint32(code64)
		k := tagKey(key, value)
		if _, dup := t.codes[k]; dup {
			return nil, fmt.Errorf("classtable: line %d: duplicate entry for %s=%s", line, key, value)
		}
		t.codes[k] = code
		t.byKey[key] = append(t.byKey[key], code)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("classtable: scan: %w", err)
	}
	return t, nil
}

func tagKey(key, value string) string {
	return key + "\x00" + value
}

// Code looks up the class code for (key, value). It returns (None,
// false) if no row matches — callers distinguish "matched none" (there is
// no such row) from "explicitly class 0" only by convention; the data
// model treats both the same way (class 0 means no classification).
func (t *Table) Code(key, value string) (uint32, bool) {
	code, ok := t.codes[tagKey(key, value)]
	return code, ok
}

// CodesForKey returns every class code registered under key, in file
// order. Used to compute "any building subclass" style policy sets
// without hard-coding which values count as subclasses.
func (t *Table) CodesForKey(key string) []uint32 {
	return t.byKey[key]
}
