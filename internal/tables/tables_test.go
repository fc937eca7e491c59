package tables

import "testing"

func TestLoadThresholdOrdering(t *testing.T) {
	s, err := Load(3, 1000, 100000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !(s.CPMax <= s.CDMin && s.CDMin <= s.SDMin && s.SDMin <= s.PDMin && s.PDMin <= s.BPMin) {
		t.Fatalf("threshold ordering violated: %+v", s)
	}
}

func TestLoadRejectsInadmissibleK(t *testing.T) {
	if _, err := Load(4, 1000, 100000, 2, 100); err == nil {
		t.Fatal("expected error for k=4 (not 3 or 6 mod 9)")
	}
}

func TestKDivisorRootsCubeToK(t *testing.T) {
	s, err := Load(42, 1000, 100000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, kd := range s.KDivisors {
		for _, r := range kd.Roots {
			cube := new(bigMod).cube(r, kd.D)
			if cube != 42%kd.D {
				t.Fatalf("d=%d root=%d: r^3 mod d = %d, want %d", kd.D, r, cube, 42%kd.D)
			}
		}
	}
}

func TestCachedPrimesHaveValidRoots(t *testing.T) {
	s, err := Load(3, 1000, 100000, 2, 100)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, cp := range s.CPTab {
		pe := uint64(1)
		for i := uint32(0); i < cp.MaxExp; i++ {
			pe *= cp.P
		}
		for _, r := range cp.RootsAt {
			cube := new(bigMod).cube(r, pe)
			if cube != 3%pe {
				t.Fatalf("p=%d e=%d root=%d: r^3 mod p^e = %d, want %d", cp.P, cp.MaxExp, r, cube, 3%pe)
			}
		}
	}
}

// bigMod is a tiny helper so the tests can cube a residue mod d without
// overflowing for the small d values these tests use.
type bigMod struct{}

func (bigMod) cube(r, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	return (r % d) * (r % d) % d * (r % d) % d
}
