package reduction

import (
	"math/big"
	"math/bits"
)

// CRT64 combines a residue mod a with a residue mod d (a, d coprime,
// a*d < 2^64) into the unique residue mod a*d. The caller supplies
// aInvModD = a^-1 mod d once and reuses it across many combines that
// share the same (a, d) pair — the same amortization enumd/enumcd lean on
// in the original source (one Montgomery inverse feeding many fcrt64/
// b32_crt64 calls per batch).
type CRT64 struct {
	a, d      uint64
	aInvModD  uint64
	barrett   Barrett32 // used when d <= 2^16
	useB32    bool
}

// NewCRT64 builds a combiner for modulus pair (a, d) given the precomputed
// inverse of a modulo d.
func NewCRT64(a, d, aInvModD uint64) CRT64 {
	c := CRT64{a: a, d: d, aInvModD: aInvModD}
	if d <= 1<<16 {
		c.barrett = NewBarrett32(uint32(d))
		c.useB32 = true
	}
	return c
}

// Combine returns the unique z mod a*d with z == z1 (mod a) and
// z == z2 (mod d).
func (c CRT64) Combine(z1, z2 uint64) uint64 {
	z1modd := z1 % c.d
	diff := (z2 + c.d - z1modd) % c.d
	var t uint64
	if c.useB32 {
		t = uint64(c.barrett.Reduce(diff*c.aInvModD)) // diff, aInvModD < d <= 2^16, product fits in 64 bits
	} else {
		hi, lo := bits.Mul64(diff, c.aInvModD)
		t = div128By64Rem(hi, lo, c.d)
	}
	return z1 + c.a*t
}

// CRT128 combines two residues whose moduli multiply past 2^64, falling
// back to math/big the way ectorus.go's big.Int modular path does for
// its arbitrary-precision arithmetic.
func CRT128(z1 uint64, a uint64, z2 uint64, d uint64) *big.Int {
	aBig := new(big.Int).SetUint64(a)
	dBig := new(big.Int).SetUint64(d)
	aInv := new(big.Int).ModInverse(aBig, dBig)
	if aInv == nil {
		return nil
	}
	diff := new(big.Int).Sub(new(big.Int).SetUint64(z2), new(big.Int).SetUint64(z1))
	diff.Mod(diff, dBig)
	t := new(big.Int).Mul(diff, aInv)
	t.Mod(t, dBig)
	result := new(big.Int).Mul(aBig, t)
	result.Add(result, new(big.Int).SetUint64(z1))
	return result
}

func div128By64Rem(hi, lo, d uint64) uint64 {
	if hi == 0 {
		return lo % d
	}
	if hi < d {
		_, rem := bits.Div64(hi, lo, d)
		return rem
	}
	// Unreachable from Combine (diff, aInvModD < d always keeps hi < d),
	// kept as a safe fallback for any other caller of div128By64Rem.
	rem := hi % d
	for i := 63; i >= 0; i-- {
		rem = (rem << 1) | ((lo >> uint(i)) & 1)
		if rem >= d {
			rem -= d
		}
	}
	return rem
}
