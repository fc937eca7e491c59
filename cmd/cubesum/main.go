// Command cubesum searches for candidate representations x^3+y^3+z^3=k
// by enumerating admissible denominators d=x+y and the arithmetic
// progressions of z consistent with them. See internal/config for the
// exact command line grammar. Grounded on cmd/ecscan's thin
// parse-then-run main().
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cubesum/internal/config"
	"cubesum/internal/coordinator"
	"cubesum/internal/dispatch"
	"cubesum/internal/report"
	"cubesum/internal/tables"
	"cubesum/internal/worker"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	pmin, pmax := cfg.PMin, cfg.PMax
	if cfg.Subprime != nil {
		log.Printf("subprime job: outer prime %d, inner prime range [%d, %d]", cfg.Subprime.P0, pmin, pmax)
	}

	log.Printf("building tables for k=%d dmax=%d zmax=%d pmin=%d pmax=%d", cfg.K, cfg.DMax, cfg.ZMax, pmin, pmax)
	t, err := tables.Load(cfg.K, cfg.DMax, cfg.ZMax, pmin, pmax)
	if err != nil {
		return fmt.Errorf("cubesum: %w", err)
	}
	log.Printf("thresholds: cpmax=%d cdmin=%d sdmin=%d pdmin=%d bpmin=%d, %d admissible k-divisors, %d cached primes",
		t.CPMax, t.CDMin, t.SDMin, t.PDMin, t.BPMin, len(t.KDivisors), len(t.CPTab))

	cp, err := report.LoadCheckpoint(cfg.CheckpointPath)
	if err != nil {
		return fmt.Errorf("cubesum: %w", err)
	}
	if cp.LastPrime > 0 {
		log.Printf("resuming from checkpoint: last completed prime %d", cp.LastPrime)
	}
	rep := report.New(cp, cfg.CheckpointPath, 10000)
	progress := report.NewProgressLogger(pmin, pmax, "searching: ", "", cfg.Verbose)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	sink := &report.CandidateSink{Counters: &rep.Counters, Downstream: printingSink{out}}

	disp := dispatch.New(t, sink)
	disp.OnDivisor = rep.IncDivisor
	disp.OnCandidate = rep.IncCandidate

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Print("received interrupt, finishing in-flight primes and checkpointing")
		cancel()
	}()

	runOpts := coordinator.Options{
		Workers: cfg.Cores,
		OnPhaseEnter: func(phase worker.Phase, p uint64) bool {
			if cfg.Verbose {
				log.Printf("prime %d entering phase %s", p, phase)
			}
			return rep.ShouldProcess(phase, p)
		},
		OnPrimeDone: func(p uint64) {
			rep.PrimeDone(p)
			progress.Log(p)
		},
	}
	if cfg.Subprime != nil {
		err = coordinator.RunSubprime(ctx, t, disp, cfg.Subprime.P0, runOpts)
	} else {
		err = coordinator.Run(ctx, t, disp, runOpts)
	}
	progress.Finalize()

	if perr := rep.PersistNow(); perr != nil {
		log.Printf("failed to persist final checkpoint: %v", perr)
	}
	if err != nil {
		return fmt.Errorf("cubesum: %w", err)
	}

	return checkAssertedCounts(cfg, rep.Snapshot())
}

// checkAssertedCounts compares the run's final counters against any
// pcnt=/ccnt=/dcnt=/rcnt= assertions on the command line, the reference
// engine's regression-check extension to its CLI.
func checkAssertedCounts(cfg *config.Config, c report.Counters) error {
	type assertion struct {
		name string
		want int64
		got  int64
	}
	for _, a := range []assertion{
		{"pcnt", cfg.PCount, c.Primes},
		{"ccnt", cfg.CCount, c.Candidates},
		{"dcnt", cfg.DCount, c.Divisors},
		{"rcnt", cfg.RCount, c.Results},
	} {
		if a.want >= 0 && a.want != a.got {
			return fmt.Errorf("cubesum: %s mismatch: got %d, want %d", a.name, a.got, a.want)
		}
	}
	return nil
}

// printingSink writes every confirmed candidate as one line of
// "d z" to the wrapped writer.
type printingSink struct {
	w *bufio.Writer
}

func (p printingSink) Hit(d, z uint64) {
	fmt.Fprintf(p.w, "%d %d\n", d, z)
}
