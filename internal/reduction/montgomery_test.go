package reduction

import "testing"

func TestMontgomeryRoundTrip(t *testing.T) {
	for _, d := range []uint64{3, 7, 65537, 1000000007, 9223372036854775783} {
		m, err := NewMont64(d)
		if err != nil {
			t.Fatalf("NewMont64(%d): %v", d, err)
		}
		for _, a := range []uint64{0, 1, 2, 41, d - 1} {
			aM := m.ToMont(a % d)
			got := m.FromMont(aM)
			if got != a%d {
				t.Fatalf("d=%d a=%d: round trip got %d", d, a, got)
			}
		}
	}
}

func TestMulMontMatchesPlainMul(t *testing.T) {
	d := uint64(1000000007)
	m, err := NewMont64(d)
	if err != nil {
		t.Fatalf("NewMont64: %v", err)
	}
	for a := uint64(2); a < 50; a++ {
		for b := uint64(2); b < 50; b++ {
			want := (a * b) % d
			aM, bM := m.ToMont(a), m.ToMont(b)
			got := m.FromMont(m.MulMont(aM, bM))
			if got != want {
				t.Fatalf("MulMont(%d,%d) = %d, want %d", a, b, got, want)
			}
		}
	}
}

func TestInverse(t *testing.T) {
	d := uint64(97)
	m, err := NewMont64(d)
	if err != nil {
		t.Fatalf("NewMont64: %v", err)
	}
	for a := uint64(1); a < d; a++ {
		inv, err := m.Inverse(a)
		if err != nil {
			t.Fatalf("Inverse(%d): %v", a, err)
		}
		if (a*inv)%d != 1 {
			t.Fatalf("Inverse(%d) = %d, product mod d = %d, want 1", a, inv, (a*inv)%d)
		}
	}
}

func TestBatchInverseMatchesElementwise(t *testing.T) {
	d := uint64(1000003)
	m, err := NewMont64(d)
	if err != nil {
		t.Fatalf("NewMont64: %v", err)
	}
	as := make([]uint64, 0, 64)
	for a := uint64(1); a < 65; a++ {
		as = append(as, a)
	}
	batch, err := m.BatchInverse(as)
	if err != nil {
		t.Fatalf("BatchInverse: %v", err)
	}
	for i, a := range as {
		want, err := m.Inverse(a)
		if err != nil {
			t.Fatalf("Inverse(%d): %v", a, err)
		}
		if batch[i] != want {
			t.Fatalf("BatchInverse[%d] for a=%d got %d, want %d", i, a, batch[i], want)
		}
	}
}
