package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jeffboody/osmdb/internal/blobindex"
	"github.com/jeffboody/osmdb/internal/classtable"
	"github.com/jeffboody/osmdb/internal/osmimport"
	"github.com/jeffboody/osmdb/internal/style"
	"github.com/jeffboody/osmdb/internal/xmlreader"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		smemGB     float64
		verbose    bool
		classFile  string
		appendMode bool
		locale     string
	)

	root := &cobra.Command{
		Use:     "import-osm <style-file> <db-file>",
		Short:   "Import an OSM XML stream into a blobindex store",
		Version: fmt.Sprintf("%s (commit %s)", version, commit),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			styleFile, dbFile := args[0], args[1]
			return run(styleFile, dbFile, classFile, smemGB, appendMode, verbose, locale)
		},
	}

	root.Flags().Float64Var(&smemGB, "smem", 0, "Cache memory budget in GB (0 = auto, a quarter of system RAM)")
	root.Flags().BoolVar(&verbose, "verbose", false, "Periodic progress logging")
	root.Flags().StringVar(&classFile, "classes", "testdata/classes.tsv", "Class table data file")
	root.Flags().BoolVar(&appendMode, "append", false, "Append to an existing store instead of creating a new one")
	root.Flags().StringVar(&locale, "locale", "", "Locale hint for transliteration (unused by the default transliterator; kept for parity with LANG/LC_ALL)")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(styleFile, dbFile, classFile string, smemGB float64, appendMode, verbose bool, locale string) error {
	start := time.Now()
	if locale == "" {
		locale = os.Getenv("LC_ALL")
	}
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if verbose && locale != "" {
		log.Printf("Locale hint: %s (transliteration reads Unicode tables directly; this is informational)", locale)
	}

	sf, err := os.Open(styleFile)
	if err != nil {
		return fmt.Errorf("opening style file: %w", err)
	}
	defer sf.Close()
	sty, err := style.LoadJSON(sf)
	if err != nil {
		return fmt.Errorf("loading style: %w", err)
	}

	cf, err := os.Open(classFile)
	if err != nil {
		return fmt.Errorf("opening class table: %w", err)
	}
	defer cf.Close()
	classes, err := classtable.Load(cf)
	if err != nil {
		return fmt.Errorf("loading class table: %w", err)
	}

	mode := blobindex.Create
	if appendMode {
		mode = blobindex.Append
	}
	ix, err := blobindex.Open(blobindex.Options{
		Path:    dbFile,
		Mode:    mode,
		SmemGB:  smemGB,
		Verbose: verbose,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer ix.Close()

	im, err := osmimport.New(osmimport.Options{
		Index:   ix,
		Style:   sty,
		Classes: classes,
		Verbose: verbose,
	})
	if err != nil {
		return fmt.Errorf("creating importer: %w", err)
	}

	if err := im.Run(xmlreader.New(os.Stdin)); err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	stats := im.Stats()
	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Imported %d node(s), %d way(s), %d relation(s) (%d malformed tag set(s)) in %v → %s\n",
		stats.Nodes, stats.Ways, stats.Relations, stats.MalformedTags, elapsed, dbFile)
	if stats.Changeset > 0 {
		fmt.Printf("Changeset: %d\n", stats.Changeset)
	}
	return nil
}
