package report

import (
	"fmt"
	"strings"
	"time"
)

// ProgressLogger prints a periodic completion percentage while enabled,
// throttled to at most 10 updates a second. Grounded on
// util.ProgressLogger in aelaguiz-pthash-go, adapted from a fixed event
// count to a prime value range: progress here is how far the last
// completed prime has advanced through [lo, hi), since the exact number of
// primes in a range is not known in advance without running the sieve.
type ProgressLogger struct {
	lo, hi         uint64
	prefix, suffix string
	enabled        bool
	startTime      time.Time
	lastUpdateTime time.Time
	lastPerc       uint64
}

// NewProgressLogger builds a logger over the prime range [lo, hi). When
// enable is false, Log and Finalize are no-ops.
func NewProgressLogger(lo, hi uint64, prefix, suffix string, enable bool) *ProgressLogger {
	pl := &ProgressLogger{lo: lo, hi: hi, prefix: prefix, suffix: suffix, enabled: enable, startTime: time.Now()}
	if enable {
		pl.print(0)
	}
	return pl
}

// Log reports the most recently completed prime, printing an update if the
// percentage has moved and enough wall-clock time has passed since the
// last print.
func (pl *ProgressLogger) Log(p uint64) {
	if !pl.enabled {
		return
	}
	perc := pl.percent(p)
	if perc == pl.lastPerc {
		return
	}
	if now := time.Now(); now.Sub(pl.lastUpdateTime) < 100*time.Millisecond {
		return
	}
	pl.lastPerc = perc
	pl.print(perc)
}

// Finalize prints a final 100% update with elapsed wall-clock time.
func (pl *ProgressLogger) Finalize() {
	if !pl.enabled {
		return
	}
	fmt.Printf("\r%s100%%%s (%.2fs)\n", pl.prefix, pl.suffix, time.Since(pl.startTime).Seconds())
}

func (pl *ProgressLogger) percent(p uint64) uint64 {
	if pl.hi <= pl.lo {
		return 100
	}
	if p < pl.lo {
		return 0
	}
	if p >= pl.hi {
		return 100
	}
	return (100 * (p - pl.lo)) / (pl.hi - pl.lo)
}

func (pl *ProgressLogger) print(perc uint64) {
	pl.lastUpdateTime = time.Now()
	fmt.Print(strings.Repeat(" ", 10))
	fmt.Printf("\r%s%d%%%s", pl.prefix, perc, pl.suffix)
}
