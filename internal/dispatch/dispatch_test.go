package dispatch

import (
	"testing"

	"cubesum/internal/tables"
)

type collectingSink struct {
	hits []struct{ d, z uint64 }
}

func (c *collectingSink) Hit(d, z uint64) {
	c.hits = append(c.hits, struct{ d, z uint64 }{d, z})
}

func TestProcDEmitsCubeRootConsistentCandidates(t *testing.T) {
	s, err := tables.Load(3, 1000, 5000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sink := &collectingSink{}
	disp := New(s, sink)

	// d=10 is coprime to k=3 and has at least one cube root of 3 mod 10
	// whenever 3 is a cubic residue there; skip gracefully if not, since
	// this is a smoke test of the wiring, not of residue existence.
	roots := s.RootsMod(10)
	if len(roots) == 0 {
		t.Skip("no cube roots of 3 mod 10; nothing to dispatch")
	}
	if err := disp.ProcD(10, roots, 9); err != nil {
		t.Fatalf("ProcD: %v", err)
	}
	for _, h := range sink.hits {
		z3 := (h.z % 10) * (h.z % 10) % 10 * (h.z % 10) % 10
		if z3 != 3%10 {
			t.Errorf("hit d=%d z=%d: z^3 mod d = %d, want %d", h.d, h.z, z3, 3%10)
		}
		if h.z > s.ZMax {
			t.Errorf("hit z=%d exceeds zmax=%d", h.z, s.ZMax)
		}
	}
}

func TestProcKDFansOutOverKDivisors(t *testing.T) {
	s, err := tables.Load(3, 1000, 5000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sink := &collectingSink{}
	disp := New(s, sink)
	if err := disp.ProcKD(10, s.RootsMod(10)); err != nil {
		t.Fatalf("ProcKD: %v", err)
	}
	// Not asserting hits exist (depends on residue availability for this
	// k/d combination); the call completing without error is the
	// property under test here.
}

func TestOnDivisorAndOnCandidateHooksFire(t *testing.T) {
	s, err := tables.Load(3, 1000, 5000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sink := &collectingSink{}
	disp := New(s, sink)

	var divisorCalls, candidateCalls int
	disp.OnDivisor = func() { divisorCalls++ }
	disp.OnCandidate = func() { candidateCalls++ }

	if err := disp.ProcKD(10, s.RootsMod(10)); err != nil {
		t.Fatalf("ProcKD: %v", err)
	}
	if divisorCalls != 1 {
		t.Fatalf("OnDivisor called %d times via ProcKD, want 1", divisorCalls)
	}
	// ProcKD dispatches d itself (the coprime, d'=1 case) plus one ProcD
	// call per admissible KDivisor, so candidateCalls is 1 + up to len(KDivisors).
	if candidateCalls < 1 || candidateCalls > 1+len(s.KDivisors) {
		t.Fatalf("OnCandidate called %d times, want between 1 and %d", candidateCalls, 1+len(s.KDivisors))
	}

	divisorCalls, candidateCalls = 0, 0
	if err := disp.ProcDCoprime(11, s.RootsMod(11)); err != nil {
		t.Fatalf("ProcDCoprime: %v", err)
	}
	if divisorCalls != 1 {
		t.Fatalf("OnDivisor called %d times via ProcDCoprime, want 1", divisorCalls)
	}
	if candidateCalls != 1 {
		t.Fatalf("OnCandidate called %d times via ProcDCoprime, want 1", candidateCalls)
	}
}
