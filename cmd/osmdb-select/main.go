package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jeffboody/osmdb/internal/archive"
	"github.com/jeffboody/osmdb/internal/tilebuilder"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var pretty bool

	root := &cobra.Command{
		Use:     "osmdb-select <index-file> /osmdbv6/zoom/x/y",
		Short:   "Extract one tile blob from an archive built by osmdb-prefetch",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], pretty)
		},
	}
	root.Flags().BoolVar(&pretty, "pretty", false, "Decode and pretty-print the tile instead of dumping raw bytes")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(indexFile, tilePath string, pretty bool) error {
	zoom, x, y, err := parseTilePath(tilePath)
	if err != nil {
		return err
	}

	r, err := archive.OpenReader(indexFile)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	blob, err := r.ReadTile(zoom, x, y)
	if err != nil {
		return fmt.Errorf("reading tile: %w", err)
	}
	if blob == nil {
		return fmt.Errorf("no tile at z%d/%d/%d", zoom, x, y)
	}

	if !pretty {
		_, err := os.Stdout.Write(blob)
		return err
	}

	tile, err := tilebuilder.Parse(blob)
	if err != nil {
		return fmt.Errorf("parsing tile: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tile)
}

// parseTilePath accepts "/osmdbv6/zoom/x/y" (leading slash and "osmdbv6"
// segment optional) and returns the three integer path components.
func parseTilePath(path string) (zoom, x, y int, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 4 && parts[0] == "osmdbv6" {
		parts = parts[1:]
	}
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed tile path %q, want zoom/x/y", path)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("malformed tile path %q: %w", path, convErr)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
