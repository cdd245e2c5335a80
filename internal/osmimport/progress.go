package osmimport

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// logInterval is the minimum time between progress lines. An import
// stream has no known total up front (unlike the tile builder's
// per-zoom tile count), so progressLogger throttles by wall time
// instead of rendering an in-place bar against a total.
const logInterval = 10 * time.Second

// progressLogger periodically logs running entity counts during a long
// import. It is called synchronously from the single-threaded dispatch
// loop, so it needs no locking.
type progressLogger struct {
	verbose bool
	start   time.Time
	last    time.Time
}

func newProgressLogger(verbose bool) *progressLogger {
	now := time.Now()
	return &progressLogger{verbose: verbose, start: now, last: now}
}

// maybeLog logs the running counts if logInterval has elapsed since the
// last line, and is silent otherwise.
func (p *progressLogger) maybeLog(nodes, ways, rels, malformed int64) {
	if !p.verbose {
		return
	}
	now := time.Now()
	if now.Sub(p.last) < logInterval {
		return
	}
	p.last = now
	p.logLine("importing", nodes, ways, rels, malformed)
}

// finish logs a final summary line unconditionally, even when not
// verbose, so a non-interactive run still records what it did.
func (p *progressLogger) finish(nodes, ways, rels, malformed int64) {
	p.logLine("imported", nodes, ways, rels, malformed)
}

func (p *progressLogger) logLine(verb string, nodes, ways, rels, malformed int64) {
	elapsed := time.Since(p.start).Truncate(time.Second)
	log.Printf("osmimport: %s %s nodes, %s ways, %s relations (%s malformed tags) in %s",
		verb,
		humanize.Comma(nodes), humanize.Comma(ways), humanize.Comma(rels),
		humanize.Comma(malformed), elapsed)
}
