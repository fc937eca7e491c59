// Package worker implements the six-phase state machine that decides,
// for each prime handed to it, which combination of the divisor
// enumerator and the phase dispatcher to run. Grounded on
// process_subprimes/process_primes in the reference engine, whose
// explicit phase-transition comments this package's Phase constants
// mirror.
package worker

import (
	"fmt"

	"cubesum/internal/dispatch"
	"cubesum/internal/enumd"
	"cubesum/internal/reduction"
	"cubesum/internal/tables"
)

// Phase names one of the six regimes a prime can fall into, ordered by
// increasing prime size exactly as the threshold table (CPMax < CDMin <
// SDMin < PDMin < BPMin) orders them.
type Phase int

const (
	PhaseCached Phase = iota
	PhaseUncached
	PhaseCocached
	PhaseNearPrime
	PhasePrime
	PhaseBigPrime

	// PhaseSubprime is the fixed-outer-prime variant driven by
	// RunSubprime instead of Process; it never appears in Process's own
	// classification.
	PhaseSubprime
)

func (p Phase) String() string {
	switch p {
	case PhaseCached:
		return "cached"
	case PhaseUncached:
		return "uncached"
	case PhaseCocached:
		return "cocached"
	case PhaseNearPrime:
		return "nearprime"
	case PhasePrime:
		return "prime"
	case PhaseBigPrime:
		return "bigprime"
	case PhaseSubprime:
		return "subprime"
	default:
		return "unknown"
	}
}

// Driver runs one worker's share of the prime range. It is not safe for
// concurrent use by multiple goroutines: the coordinator gives each
// worker goroutine its own Driver (and so its own scratch Workspace),
// mirroring the reference engine's one-CRT-workspace-per-process
// discipline.
type Driver struct {
	Tables   *tables.Set
	Enum     *enumd.Enumerator
	Dispatch *dispatch.Dispatcher
	ws       *enumd.Workspace

	// OnPhaseEnter is called before a prime is processed under the given
	// phase; returning false vetoes processing it at all. Grounded on
	// report_phase's checkpoint-veto return value, used to skip primes a
	// prior, interrupted run already finished.
	OnPhaseEnter func(phase Phase, p uint64) bool
}

// New builds a Driver over one run's shared tables, wiring a fresh
// divisor enumerator to the given dispatcher.
func New(t *tables.Set, disp *dispatch.Dispatcher) *Driver {
	d := &Driver{Tables: t, Dispatch: disp, ws: enumd.NewWorkspace()}
	d.Enum = enumd.New(t, disp.ProcKD)
	return d
}

// ClassifyPhase returns which of the six regimes prime p falls into.
func (d *Driver) ClassifyPhase(p uint64) Phase {
	t := d.Tables
	switch {
	case p <= t.CPMax:
		return PhaseCached
	case p < t.CDMin:
		return PhaseUncached
	case p < t.SDMin:
		return PhaseCocached
	case p < t.PDMin:
		return PhaseNearPrime
	case p < t.BPMin:
		return PhasePrime
	default:
		return PhaseBigPrime
	}
}

// Process runs the phase-appropriate handling of one prime p: for the
// three smallest phases p seeds the recursive divisor enumeration (which
// eventually hands off to the cached cofactor table once d grows past
// CDMin); for the three largest phases p is itself an admissible
// denominator, short-circuiting straight to the dispatcher.
func (d *Driver) Process(p uint64) error {
	phase := d.ClassifyPhase(p)
	if d.OnPhaseEnter != nil && !d.OnPhaseEnter(phase, p) {
		return nil
	}

	switch phase {
	case PhaseCached, PhaseUncached, PhaseCocached:
		return d.processViaEnumeration(p)
	case PhaseNearPrime, PhasePrime:
		return d.processDirect(p, d.Dispatch.ProcDCoprime)
	case PhaseBigPrime:
		return d.processDirect(p, d.Dispatch.ProcDBigPrime)
	default:
		return fmt.Errorf("worker: unreachable phase %v", phase)
	}
}

// RunSubprime drives the fixed-outer-prime variant: p0 is the run's
// fixed outer prime and p is the current "second-largest" prime supplied
// by the pipe. Every denominator built here is a multiple of p0. When p
// reaches p0 itself, the run has exhausted its inner-prime range and
// this instead terminates by processing p0's own powers exactly as
// processViaEnumeration would for a normal phase-1 prime. Grounded on
// process_subprimes, whose CRT-cube-roots-mod-p0-onto-mod-p^e step this
// mirrors before fanning out through prockd/enumd.
func (d *Driver) RunSubprime(p0, p uint64) error {
	if d.OnPhaseEnter != nil && !d.OnPhaseEnter(PhaseSubprime, p) {
		return nil
	}
	if p == p0 {
		return d.processViaEnumeration(p0)
	}

	rootsP0 := reduction.CubeRootsModPrimePower(d.Tables.K, p0, 1)
	if len(rootsP0) == 0 {
		return nil // k is not a cube mod p0: no denominator built on p0 ever contributes
	}

	dmax := d.Tables.DMax
	mark := d.ws.Mark()
	defer d.ws.Reset(mark)

	pe := p
	for e := uint32(1); ; e++ {
		rootsPe := reduction.CubeRootsModPrimePower(d.Tables.K, p, e)
		if len(rootsPe) == 0 {
			return nil
		}
		full := p0 * pe
		if full < pe || full > dmax {
			return nil
		}
		inv, ok := reduction.InverseMod(p0, pe)
		if !ok {
			return fmt.Errorf("worker: subprime outer prime %d not invertible mod %d", p0, pe)
		}
		crt := reduction.NewCRT64(p0, pe, inv)
		combined := make([]uint64, 0, len(rootsP0)*len(rootsPe))
		for _, z1 := range rootsP0 {
			for _, z2 := range rootsPe {
				combined = append(combined, crt.Combine(z1, z2))
			}
		}
		if err := d.Dispatch.ProcKD(full, combined); err != nil {
			return err
		}
		if err := d.Enum.EnumD(full, p, combined, d.ws); err != nil {
			return err
		}

		next := pe * p
		if next > dmax || next < pe {
			return nil
		}
		pe = next
	}
}

// processViaEnumeration dispatches the base prime p and every higher
// power p^e <= dmax as a denominator in its own right, and seeds a
// cofactor enumeration over primes smaller than p from each one.
// Grounded on the reference engine's "for(pp=p; pp<q; pp*=p){
// prockd(pp,...); if(pp>p) enumd(pp,p,...); } prockd(q,...)" outer-power
// loop: pp==p is the base case below, and every pp>p is walked by the
// loop that follows it.
func (d *Driver) processViaEnumeration(p uint64) error {
	dmax := d.Tables.DMax
	roots := reduction.CubeRootsModPrimePower(d.Tables.K, p, 1)
	if len(roots) == 0 {
		return nil // k is not a cube mod p: p contributes no admissible divisors
	}

	mark := d.ws.Mark()
	defer d.ws.Reset(mark)

	if err := d.Dispatch.ProcKD(p, roots); err != nil {
		return err
	}
	if err := d.Enum.EnumD(p, p, roots, d.ws); err != nil {
		return err
	}

	pe := p
	for e := uint32(2); ; e++ {
		next := pe * p
		if next > dmax || next < pe {
			return nil
		}
		pe = next
		roots := reduction.CubeRootsModPrimePower(d.Tables.K, p, e)
		if len(roots) == 0 {
			return nil // no higher power of p carries a cube root of k either
		}
		if err := d.Dispatch.ProcKD(pe, roots); err != nil {
			return err
		}
		if err := d.Enum.EnumD(pe, p, roots, d.ws); err != nil {
			return err
		}
	}
}

func (d *Driver) processDirect(p uint64, proc func(uint64, []uint64) error) error {
	roots := reduction.CubeRootsModPrimePower(d.Tables.K, p, 1)
	if len(roots) == 0 {
		return nil
	}
	return proc(p, roots)
}
