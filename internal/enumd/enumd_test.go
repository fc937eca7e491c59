package enumd

import (
	"testing"

	"cubesum/internal/reduction"
	"cubesum/internal/tables"
)

func TestEnumDEmitsRootsConsistentWithK(t *testing.T) {
	s, err := tables.Load(3, 2000, 20000, 2, 200)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var seen int
	en := New(s, func(d uint64, roots []uint64) error {
		seen++
		for _, r := range roots {
			cube := (r % d) * (r % d) % d * (r % d) % d
			if cube != s.K%d {
				t.Errorf("d=%d root=%d: r^3 mod d = %d, want %d", d, r, cube, s.K%d)
			}
			if d > s.DMax {
				t.Errorf("d=%d exceeds dmax=%d", d, s.DMax)
			}
		}
		return nil
	})

	ws := NewWorkspace()
	for _, cp := range s.CPTab {
		if cp.P > 50 {
			break // keep the test fast; the recursive fan-out covers small primes thoroughly enough
		}
		roots := reduction.CubeRootsModPrimePower(s.K, cp.P, 1)
		if len(roots) == 0 {
			continue
		}
		if err := en.EnumD(cp.P, cp.P, roots, ws); err != nil {
			t.Fatalf("EnumD(%d): %v", cp.P, err)
		}
	}
	if seen == 0 {
		t.Fatal("EnumD never invoked the process callback")
	}
}

func TestWorkspaceAllocGrowsRatherThanPanics(t *testing.T) {
	ws := &Workspace{buf: make([]uint64, 4)}
	mark := ws.Mark()
	slab := ws.Alloc(10)
	if len(slab) != 10 {
		t.Fatalf("Alloc(10) returned len %d", len(slab))
	}
	ws.Reset(mark)
	if ws.Mark() != mark {
		t.Fatalf("Reset did not rewind to mark")
	}
}
