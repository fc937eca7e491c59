// Package dispatch is the phase-independent per-divisor decision layer:
// given a fully-formed divisor d (the sum x+y a candidate pair could
// have) and the cube roots of k mod d, it folds in d's auxiliary modulus
// and decides whether the resulting arithmetic progression is short
// enough to walk directly or long enough to need lifting, then hands the
// decision off to the checker package. Grounded on procd/procdcoprime/
// procdbigprime/prockd in the reference engine's divisor-processing
// stage.
package dispatch

import (
	"fmt"

	"cubesum/internal/checker"
	"cubesum/internal/reduction"
	"cubesum/internal/tables"
)

// Dispatcher wires one run's shared tables to the sink every confirmed
// candidate is reported to.
type Dispatcher struct {
	Tables *tables.Set
	Sink   checker.Sink

	// OnDivisor, if set, is called once for every admissible divisor d
	// the divisor enumerator hands off (one call per ProcKD invocation),
	// feeding the run's dcnt counter.
	OnDivisor func()
	// OnCandidate, if set, is called once for every divisor handed to
	// the progression checkers (one call per ProcD invocation), feeding
	// the run's ccnt counter.
	OnCandidate func()
}

// New builds a Dispatcher over t, reporting every candidate to sink.
func New(t *tables.Set, sink checker.Sink) *Dispatcher {
	return &Dispatcher{Tables: t, Sink: sink}
}

// ProcKD is the divisor enumerator's process callback: d is a divisor
// coprime to k with cube roots zd. It first dispatches d itself (the
// d'=1 case, k contributing nothing), then fans out over every
// admissible divisor of k (tables.Set.KDivisors), combining each with d
// (always coprime, since kd | k and d is coprime to k by construction)
// to form the full denominator and handing it to ProcD. Grounded on
// prockd, which invokes procdcoprime(d,zd,n) before looping over kdtab.
func (disp *Dispatcher) ProcKD(d uint64, zd []uint64) error {
	if disp.OnDivisor != nil {
		disp.OnDivisor()
	}
	aux := disp.Tables.AuxModulusFor(d%2 != 0, d%7 == 0)
	if err := disp.ProcD(d, zd, aux); err != nil {
		return err
	}
	for _, kd := range disp.Tables.KDivisors {
		full := d * kd.D
		if full < d || full > disp.Tables.DMax {
			continue
		}
		inv, ok := reduction.InverseMod(d, kd.D)
		if !ok {
			continue // d and kd.D share a factor: cannot happen by construction, skip defensively
		}
		crt := reduction.NewCRT64(d, kd.D, inv)
		combined := make([]uint64, 0, len(zd)*len(kd.Roots))
		for _, z1 := range zd {
			for _, z2 := range kd.Roots {
				combined = append(combined, crt.Combine(z1, z2))
			}
		}
		if err := disp.ProcD(full, combined, kd.AuxModulus); err != nil {
			return err
		}
	}
	return nil
}

// ProcD is the per-divisor dispatcher: it folds the auxiliary modulus b
// in via CRT and picks one of the three checker strategies based on how
// many progression terms there are to walk up to ZMax. Grounded on
// procd's n = ceil(zmaxld/(a*b)) decision against ZSHORT/ZFEW.
func (disp *Dispatcher) ProcD(d uint64, z []uint64, auxModulus uint64) error {
	if disp.OnCandidate != nil {
		disp.OnCandidate()
	}
	if len(z) == 0 {
		return nil
	}
	b := auxModulus
	if b == 0 {
		b = 1
	}
	zb := disp.Tables.RootsMod(b)
	if len(zb) == 0 {
		return nil // no residue mod b is consistent with k: this divisor contributes nothing
	}
	ainvb, ok := reduction.InverseMod(d, b)
	if !ok {
		return fmt.Errorf("dispatch: d=%d not invertible mod auxiliary modulus %d", d, b)
	}

	params := checker.Params{ZMax: disp.Tables.ZMax, K: disp.Tables.K}
	modulus := d * b
	if modulus < d {
		return fmt.Errorf("dispatch: d=%d * auxModulus=%d overflowed", d, b)
	}
	n := ceilDiv(disp.Tables.ZMax, modulus)

	switch {
	case n <= 1:
		checker.One(params, disp.Sink, d, d, z, b, zb, ainvb)
	case n <= tables.ZShort || n*uint64(len(z))*uint64(len(zb)) <= tables.ZFew:
		checker.Few(params, disp.Sink, d, d, z, b, zb, ainvb, n)
	default:
		checker.Lift(params, disp.Sink, d, d, z, b, zb, ainvb)
	}
	return nil
}

// ProcDCoprime handles the case where a caller reaches a divisor d
// coprime to k directly, without a preceding call to ProcKD (the
// near-prime, prime, and big-prime phases all hand the worker's current
// prime to d straight to this entry point, since there is no further
// coprime cofactor to enumerate). Grounded on procdcoprime.
func (disp *Dispatcher) ProcDCoprime(d uint64, z []uint64) error {
	// Unlike ProcD's other caller (ProcKD's fan-out over KDivisors), d
	// here never passed through ProcKD, so this is the only place that
	// counts it as one enumerated divisor.
	if disp.OnDivisor != nil {
		disp.OnDivisor()
	}
	return disp.ProcD(d, z, disp.Tables.AuxModulusFor(d%2 != 0, d%7 == 0))
}

// ProcDBigPrime handles the big-prime phase: d itself is prime (or a
// single large prime times a small cofactor already folded in), so the
// only remaining step is folding in the auxiliary modulus exactly like
// ProcDCoprime. Grounded on procdbigprime, which in the original source
// differs from procdcoprime mainly in which statistics counter it
// increments; here the counters are driven by the OnDivisor/OnCandidate
// hooks instead, so both entry points count alike.
func (disp *Dispatcher) ProcDBigPrime(d uint64, z []uint64) error {
	return disp.ProcDCoprime(d, z)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
