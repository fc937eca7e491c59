// Package report tracks the run's aggregate counters (the pcnt/ccnt/
// dcnt/rcnt of the reference engine's CLI: primes processed, candidate
// divisors dispatched, distinct d's enumerated, and confirmed
// progression hits), drives periodic checkpoint persistence, and can
// veto re-processing a prime a prior run already finished. Grounded on
// report_p/report_c/report_phase, whose bool return value this package's
// ShouldProcess reproduces as the resume mechanism.
package report

import (
	"sync"
	"sync/atomic"

	"cubesum/internal/worker"
)

// Counters holds the run's running totals. All fields are updated with
// atomic operations so every worker goroutine can report through the
// same Counters concurrently without a lock.
type Counters struct {
	Primes     int64
	Divisors   int64
	Candidates int64
	Results    int64
}

// Report is the shared sink every worker goroutine reports through: it
// updates Counters, advances the checkpoint's last-completed prime, and
// optionally persists the checkpoint to disk every `every` primes (see
// New).
type Report struct {
	Counters Counters

	mu             sync.Mutex
	checkpoint     *Checkpoint
	path           string
	checkpointFreq int64
	sincePersist   int64
}

// New builds a Report seeded from a previously loaded checkpoint (or a
// fresh zero-value one for a new run). path is where PersistNow writes;
// passing an empty path disables persistence (useful for tests and for
// -checkpoint-less runs). every is how many completed primes elapse
// between writes; 0 disables periodic writes (PersistNow still works).
func New(cp *Checkpoint, path string, every int64) *Report {
	if cp == nil {
		cp = &Checkpoint{}
	}
	return &Report{checkpoint: cp, path: path, checkpointFreq: every}
}

// ShouldProcess is installed as a worker.Driver's OnPhaseEnter hook (via
// the coordinator's Options.OnPhaseEnter): it vetoes reprocessing any
// prime at or below the checkpoint's last-completed prime, the resume
// behavior report_phase's veto return implemented for the process model
// this was ported from.
func (r *Report) ShouldProcess(_ worker.Phase, p uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return p > r.checkpoint.LastPrime
}

// PrimeDone records that prime p finished successfully, advances the
// checkpoint, and persists it if the configured interval has elapsed.
// Installed as the coordinator's Options.OnPrimeDone.
func (r *Report) PrimeDone(p uint64) {
	atomic.AddInt64(&r.Counters.Primes, 1)

	r.mu.Lock()
	if p > r.checkpoint.LastPrime {
		r.checkpoint.LastPrime = p
	}
	r.sincePersist++
	due := r.checkpointFreq > 0 && r.sincePersist >= r.checkpointFreq
	if due {
		r.sincePersist = 0
	}
	r.mu.Unlock()

	if due {
		_ = r.PersistNow()
	}
}

// PersistNow snapshots the counters into the checkpoint and writes it to
// disk immediately, ignoring the periodic interval. A no-op when no path
// was configured.
func (r *Report) PersistNow() error {
	if r.path == "" {
		return nil
	}
	r.mu.Lock()
	cp := *r.checkpoint
	r.mu.Unlock()
	cp.Primes = atomic.LoadInt64(&r.Counters.Primes)
	cp.Divisors = atomic.LoadInt64(&r.Counters.Divisors)
	cp.Candidates = atomic.LoadInt64(&r.Counters.Candidates)
	cp.Results = atomic.LoadInt64(&r.Counters.Results)
	return cp.Save(r.path)
}

// CandidateSink wraps a downstream checker.Sink, incrementing Results
// for every candidate reported before forwarding it. ProcKD and ProcD
// themselves drive Divisors and Candidates (see IncDivisor/IncCandidate)
// since those counts are per-divisor, not per-candidate.
type CandidateSink struct {
	Counters   *Counters
	Downstream Sink
}

// Sink is the minimal interface CandidateSink forwards to; satisfied by
// checker.Sink without importing that package here, keeping report
// dependency-free of the search internals it is merely counting.
type Sink interface {
	Hit(d, z uint64)
}

// Hit implements Sink.
func (c *CandidateSink) Hit(d, z uint64) {
	atomic.AddInt64(&c.Counters.Results, 1)
	if c.Downstream != nil {
		c.Downstream.Hit(d, z)
	}
}

// IncDivisor records that one more admissible divisor d was enumerated.
func (r *Report) IncDivisor() { atomic.AddInt64(&r.Counters.Divisors, 1) }

// IncCandidate records that one more divisor was handed to the phase
// dispatcher for progression checking.
func (r *Report) IncCandidate() { atomic.AddInt64(&r.Counters.Candidates, 1) }

// Snapshot returns a consistent copy of the current counters.
func (r *Report) Snapshot() Counters {
	return Counters{
		Primes:     atomic.LoadInt64(&r.Counters.Primes),
		Divisors:   atomic.LoadInt64(&r.Counters.Divisors),
		Candidates: atomic.LoadInt64(&r.Counters.Candidates),
		Results:    atomic.LoadInt64(&r.Counters.Results),
	}
}
