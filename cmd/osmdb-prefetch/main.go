package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/jeffboody/osmdb/internal/archive"
	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/coord"
	"github.com/jeffboody/osmdb/internal/tilebuilder"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

// prefetchZooms is the fixed zoom set every prefetch pass materializes,
// independent of region: spec.md §6 pins these seven levels rather than
// leaving zoom range configurable.
var prefetchZooms = []int{3, 5, 7, 9, 11, 13, 15}

// regionBounds gives the WGS-84 bounding box for each -pf region code.
var regionBounds = map[string]archive.Bounds{
	"CO": {LatT: 41.05, LonL: -109.1, LatB: 36.95, LonR: -102.0},
	"US": {LatT: 49.4, LonL: -125.0, LatB: 24.5, LonR: -66.9},
	"WW": {LatT: 85.0, LonL: -180.0, LatB: -85.0, LonR: 180.0},
}

func main() {
	var (
		region  string
		nth     int
		verbose bool
	)

	root := &cobra.Command{
		Use:     "osmdb-prefetch -pf=CO|US|WW <smem-GB> <cache-file> <index-file>",
		Short:   "Materialize a tile range from a blobindex store into an archive",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds, ok := regionBounds[region]
			if !ok {
				return fmt.Errorf("unknown region %q (want CO, US or WW)", region)
			}
			var smemGB float64
			if _, err := fmt.Sscanf(args[0], "%f", &smemGB); err != nil {
				return fmt.Errorf("parsing smem-GB %q: %w", args[0], err)
			}
			return run(args[1], args[2], bounds, smemGB, nth, verbose)
		},
	}

	root.Flags().StringVar(&region, "pf", "CO", "Region to prefetch: CO, US or WW")
	root.Flags().IntVar(&nth, "nth", runtime.NumCPU(), "Number of concurrent tile-builder workers")
	root.Flags().BoolVar(&verbose, "verbose", false, "Verbose progress output")

	// pflag reads a single-dash "-pf" as the shorthand 'p', so the
	// single-dash form in the usage line is rewritten to the long flag
	// before parsing.
	args := make([]string, 0, len(os.Args)-1)
	for _, a := range os.Args[1:] {
		if a == "-pf" || strings.HasPrefix(a, "-pf=") {
			a = "-" + a
		}
		args = append(args, a)
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cacheFile, indexFile string, bounds archive.Bounds, smemGB float64, nth int, verbose bool) error {
	start := time.Now()

	ix, err := blobindex.Open(blobindex.Options{
		Path:       indexFile,
		Mode:       blobindex.ReadOnly,
		SmemGB:     smemGB,
		MaxThreads: nth,
		Verbose:    verbose,
	})
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer ix.Close()

	changeset := ix.Changeset()

	w, err := archive.NewWriter(cacheFile, archive.WriterOptions{
		Name:      "osmdbv6",
		Pattern:   "zoom/x/y",
		Ext:       "osmdb",
		MinZoom:   prefetchZooms[0],
		MaxZoom:   prefetchZooms[len(prefetchZooms)-1],
		Bounds:    bounds,
		Changeset: changeset,
	})
	if err != nil {
		return fmt.Errorf("creating archive writer: %w", err)
	}

	type job struct{ zoom, x, y int }
	var jobs []job
	for _, z := range prefetchZooms {
		for _, zxy := range coord.TilesInBounds(z, bounds.LonL, bounds.LatB, bounds.LonR, bounds.LatT) {
			jobs = append(jobs, job{zxy[0], zxy[1], zxy[2]})
		}
	}
	if verbose {
		log.Printf("Prefetching %d tile(s) across %d zoom level(s) with %d worker(s)", len(jobs), len(prefetchZooms), nth)
	}

	g, ctx := errgroup.WithContext(context.Background())
	jobCh := make(chan job)
	g.Go(func() error {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for tid := 0; tid < nth; tid++ {
		tid := tid
		g.Go(func() error {
			b := tilebuilder.New(ix, tid)
			for j := range jobCh {
				blob, err := b.BuildTile(j.zoom, j.x, j.y, changeset)
				if err != nil {
					return fmt.Errorf("building tile z%d/%d/%d: %w", j.zoom, j.x, j.y, err)
				}
				if err := w.WriteTile(j.zoom, j.x, j.y, blob); err != nil {
					return fmt.Errorf("writing tile z%d/%d/%d: %w", j.zoom, j.x, j.y, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.Abort()
		return fmt.Errorf("prefetch: %w", err)
	}

	if err := w.Finalize(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Prefetched %d tile(s) in %v → %s\n", len(jobs), elapsed, cacheFile)
	return nil
}
