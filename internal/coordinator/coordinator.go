// Package coordinator fans the prime stream out across worker
// goroutines and collects the first error any of them returns,
// cancelling the rest. This replaces the reference engine's
// fork()-based parent/N-worker/one-feeder process model with Go's
// goroutines and channels: the sieve package is the feeder, each
// goroutine owns one worker.Driver, and a context.Context takes over
// from the original's process-group signal handling for early shutdown.
// Grounded on the jobs/points channel shape in internal/ecscan's
// enumerateU64 and the sync.WaitGroup-plus-error-channel pattern in
// aelaguiz-pthash-go's partitioned builder.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"cubesum/internal/dispatch"
	"cubesum/internal/sieve"
	"cubesum/internal/tables"
	"cubesum/internal/worker"
)

// Options configures one run of the coordinator.
type Options struct {
	Workers int

	// OnPhaseEnter is installed on every worker's Driver; see
	// worker.Driver.OnPhaseEnter.
	OnPhaseEnter func(phase worker.Phase, p uint64) bool

	// OnPrimeDone, if set, is called after a prime has been fully
	// processed by its worker, from that worker's goroutine. Used by the
	// report package to drive the pcnt/ccnt/dcnt/rcnt counters and
	// periodic checkpoint writes.
	OnPrimeDone func(p uint64)
}

// Run sieves every prime in [t.PMin, t.PMax], dispatches each one across
// opts.Workers goroutines, and blocks until the range is exhausted, ctx
// is cancelled, or a worker returns an error. The first error observed
// is returned; ctx is cancelled as soon as it occurs so sibling workers
// stop taking on new primes.
func Run(ctx context.Context, t *tables.Set, disp *dispatch.Dispatcher, opts Options) error {
	return runLoop(ctx, t, disp, opts, func(d *worker.Driver, p uint64) error {
		return d.Process(p)
	})
}

// RunSubprime is the fixed-outer-prime counterpart to Run: the pipe
// still sieves [t.PMin, t.PMax], but every prime it yields is treated as
// the "second-largest" prime of a denominator built on the fixed outer
// prime p0, via worker.Driver.RunSubprime.
func RunSubprime(ctx context.Context, t *tables.Set, disp *dispatch.Dispatcher, p0 uint64, opts Options) error {
	return runLoop(ctx, t, disp, opts, func(d *worker.Driver, p uint64) error {
		return d.RunSubprime(p0, p)
	})
}

func runLoop(ctx context.Context, t *tables.Set, disp *dispatch.Dispatcher, opts Options, process func(*worker.Driver, uint64) error) error {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	primes := sieve.Primes(runCtx, t.PMin, t.PMax+1, workers) // sieve's upper bound is exclusive

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			d := worker.New(t, disp)
			d.OnPhaseEnter = opts.OnPhaseEnter
			for p := range primes {
				if err := process(d, p); err != nil {
					errCh <- fmt.Errorf("coordinator: prime %d: %w", p, err)
					cancel()
					return
				}
				if opts.OnPrimeDone != nil {
					opts.OnPrimeDone(p)
				}
				select {
				case <-runCtx.Done():
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}
