// Package enumd is the divisor enumerator: given a prime p and the cube
// roots of k mod p^e, it enumerates every admissible d <= dmax with
// largest prime factor p by recursively multiplying on powers of smaller
// primes, CRT-lifting the cube roots as it goes. Grounded on enumd/enumcd
// in the original C source, translated from raw pointer/workspace
// arithmetic into Go slices over a reusable scratch arena.
package enumd

import (
	"fmt"

	"cubesum/internal/assert"
	"cubesum/internal/reduction"
	"cubesum/internal/tables"
)

// Workspace is the per-worker CRT scratch arena: enumd/enumcd recursion
// advances a high-water mark into one shared buffer instead of
// allocating at every level, mirroring the "workspace pointer" discipline
// described for the recursive divisor enumeration.
type Workspace struct {
	buf []uint64
	pos int
}

// NewWorkspace allocates a scratch arena sized to the worst case number
// of cube roots any admissible d can carry.
func NewWorkspace() *Workspace {
	return &Workspace{buf: make([]uint64, tables.CubeRootBufSize)}
}

// Mark returns the current high-water mark, to be passed to Reset once
// the caller's subtree of recursive calls has finished using the region
// it allocated.
func (w *Workspace) Mark() int { return w.pos }

// Reset rewinds the arena to a previously captured mark.
func (w *Workspace) Reset(mark int) { w.pos = mark }

// Alloc carves out n fresh uint64 slots. The backing array grows (rather
// than panicking) if a pathological input ever needs more than the
// default high-water mark, trading the fixed-size guarantee of the
// original buffer discipline for safety.
func (w *Workspace) Alloc(n int) []uint64 {
	if w.pos+n > len(w.buf) {
		grown := make([]uint64, 2*(w.pos+n))
		copy(grown, w.buf)
		w.buf = grown
	}
	s := w.buf[w.pos : w.pos+n : w.pos+n]
	w.pos += n
	return s
}

// ProcessFunc is invoked once for every enumerated d whose largest
// coprime-to-k cofactor has just been completed. The caller (the phase
// dispatcher's ProcKD) fans out from there over k's own admissible
// divisors.
type ProcessFunc func(d uint64, roots []uint64) error

// Enumerator ties the recursive divisor walk to a shared table set and a
// callback invoked for every completed d.
type Enumerator struct {
	Tables  *tables.Set
	Process ProcessFunc
}

// New builds an Enumerator over t, invoking process for every enumerated
// admissible d.
func New(t *tables.Set, process ProcessFunc) *Enumerator {
	return &Enumerator{Tables: t, Process: process}
}

type pendingFactor struct {
	a        uint64
	roots    []uint64
	primeIdx int
}

// EnumD recursively tacks on powers of primes smaller than p onto d
// (whose cube roots mod d are zd), CRT-lifting the roots as it goes.
// Once d reaches CDMin it hands off to EnumCD, which walks the cached
// small-cofactor table instead of continuing to recurse prime by prime.
func (en *Enumerator) EnumD(d, p uint64, zd []uint64, ws *Workspace) error {
	if d >= en.Tables.CDMin {
		return en.EnumCD(d, p, zd, ws)
	}

	primes := en.Tables.CPTab
	idx := len(primes) - 1
	for idx >= 0 && primes[idx].P >= p {
		idx--
	}

	batch := make([]pendingFactor, 0, tables.IBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		mont, err := reduction.NewMont64(d)
		if err != nil {
			return fmt.Errorf("enumd: %w", err)
		}
		as := make([]uint64, len(batch))
		for i, b := range batch {
			as[i] = b.a % d
		}
		invs, err := mont.BatchInverse(as)
		if err != nil {
			return fmt.Errorf("enumd: batch inverse: %w", err)
		}
		for i, b := range batch {
			crt := reduction.NewCRT64(b.a, d, invs[i])
			ab := b.a * d
			if ab < b.a || ab < d {
				continue // overflow guard: ab must stay below 2^63 per the d invariant
			}
			assert.Soft(ab <= en.Tables.DMax, "enumd: ab=%d exceeds dmax=%d", ab, en.Tables.DMax)
			mark := ws.Mark()
			combined := ws.Alloc(len(zd) * len(b.roots))
			pos := 0
			for _, qz := range b.roots {
				for _, dz := range zd {
					combined[pos] = crt.Combine(qz, dz)
					pos++
				}
			}
			if err := en.Process(ab, combined); err != nil {
				return err
			}
			nextP := primes[b.primeIdx].P
			var rerr error
			if ab >= en.Tables.CDMin {
				rerr = en.EnumCD(ab, nextP, combined, ws)
			} else {
				rerr = en.EnumD(ab, nextP, combined, ws)
			}
			ws.Reset(mark)
			if rerr != nil {
				return rerr
			}
		}
		batch = batch[:0]
		return nil
	}

	for pi := idx; pi >= 0; pi-- {
		cp := primes[pi]
		if en.Tables.K%cp.P == 0 {
			continue // factors dividing k are handled by the phase dispatcher, not here
		}
		qe := cp.P
		e := uint32(1)
		for d*qe <= en.Tables.DMax && qe >= cp.P {
			roots := en.cachedOrComputedRoots(cp, e, qe)
			if len(roots) > 0 {
				batch = append(batch, pendingFactor{a: qe, roots: roots, primeIdx: pi})
				if len(batch) == tables.IBatch {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			next := qe * cp.P
			if next <= qe { // overflow
				break
			}
			qe = next
			e++
		}
	}
	return flush()
}

// cachedOrComputedRoots returns the cube roots of k mod q^e, using the
// table's precomputed roots when e equals the cached exponent MaxExp and
// falling back to on-the-fly Hensel lifting otherwise.
func (en *Enumerator) cachedOrComputedRoots(cp tables.CachedPrime, e uint32, qe uint64) []uint64 {
	if e == cp.MaxExp {
		return cp.RootsAt
	}
	return reduction.CubeRootsModPrimePower(en.Tables.K, cp.P, e)
}

// EnumCD walks the cached small-cofactor table for d >= CDMin, CRT-lifting
// every entry whose largest prime factor is below p and whose product
// with d stays within dmax. This exercise's table only caches cofactors
// up to sdTableCap (see tables.Set.SDTab); see DESIGN.md for why the
// unbounded cdrec-chain walk from the original source is not reproduced
// in full.
func (en *Enumerator) EnumCD(d, p uint64, zd []uint64, ws *Workspace) error {
	if _, err := reduction.NewMont64(d); err != nil {
		return fmt.Errorf("enumcd: %w", err)
	}
	for _, sd := range en.Tables.SDTab {
		if sd.LargestPrime >= p {
			continue
		}
		ab := d * sd.D
		if ab < d || ab > en.Tables.DMax {
			continue
		}
		dInvModSD, ok := reduction.InverseMod(d, sd.D)
		if !ok {
			continue // sd.D shares a factor with d; not an admissible cofactor pairing
		}
		crt := reduction.NewCRT64(d, sd.D, dInvModSD)
		mark := ws.Mark()
		combined := ws.Alloc(len(zd) * len(sd.Roots))
		pos := 0
		for _, dz := range zd {
			for _, sz := range sd.Roots {
				combined[pos] = crt.Combine(dz, sz)
				pos++
			}
		}
		err := en.Process(ab, combined)
		ws.Reset(mark)
		if err != nil {
			return err
		}
	}
	return nil
}
