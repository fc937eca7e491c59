// Package reduction implements the two fixed-width modular arithmetic
// regimes the search engine runs on: 64-bit Montgomery multiplication for
// moduli that vary at runtime but are reused across many multiplications,
// and 32-bit Barrett-style reduction for the handful of small fixed
// auxiliary moduli (9, 18, 126, 162) used to sharpen arithmetic
// progressions.
package reduction

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Mont64 holds the precomputed constants for Montgomery multiplication
// modulo a runtime-supplied odd modulus d < 2^63. All operands to MulMont
// must already be in Montgomery form (obtained via ToMont) and less than d.
//
// Grounded on the fixed-modulus Montgomery reduction in the zkDilithium
// signer's field package (MulMont/ToMont/FromMont), generalized from a
// single compile-time prime Q to an arbitrary runtime modulus via Newton's
// iteration for the modular inverse mod 2^64.
type Mont64 struct {
	d     uint64 // modulus
	dinv  uint64 // -d^-1 mod 2^64, used in REDC
	r     uint64 // 2^64 mod d
	r2    uint64 // R^2 mod d
	r3    uint64 // R^3 mod d
}

// NewMont64 builds the Montgomery context for modulus d. d must be odd and
// nonzero; even moduli have no inverse mod 2^64 and Montgomery form does
// not apply to them, so NewMont64 returns an error for them and callers
// either skip that modulus or pass the error on.
func NewMont64(d uint64) (*Mont64, error) {
	if d == 0 || d&1 == 0 {
		return nil, fmt.Errorf("reduction: modulus %d must be odd and nonzero", d)
	}
	m := &Mont64{d: d, dinv: negModInverse(d)}
	m.r = m.modR()
	m.r2 = m.mulModWide(m.r, m.r)
	m.r3 = m.mulModWide(m.r2, m.r)
	return m, nil
}

// Modulus returns the modulus this context reduces against.
func (m *Mont64) Modulus() uint64 { return m.d }

// negModInverse computes -n^-1 mod 2^64 for odd n via Newton's iteration,
// doubling the number of correct bits each pass starting from the 3 bits
// that are correct by construction (n*n == 1 mod 8 for any odd n).
func negModInverse(n uint64) uint64 {
	x := n
	for i := 0; i < 5; i++ {
		x *= 2 - n*x
	}
	return -x
}

// modR computes 2^64 mod d without overflowing: (2^64-1) mod d, plus one,
// reduced again to fold the case where that sum reaches d.
func (m *Mont64) modR() uint64 {
	v := (^uint64(0))%m.d + 1
	if v == m.d {
		v = 0
	}
	return v
}

// mulModWide reduces the 128-bit product of two values already known to be
// less than d, using bits.Div64. Safe because hi < d whenever both operands
// are < d and d < 2^63 (the product's high word is always smaller than the
// modulus in that regime).
func (m *Mont64) mulModWide(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m.d)
	return rem
}

// redc performs Montgomery reduction of the 128-bit value (hi,lo),
// returning (hi*2^64+lo) / R mod d, folded into [0, d) with at most one
// conditional subtraction.
func (m *Mont64) redc(hi, lo uint64) uint64 {
	q := lo * m.dinv
	mHi, mLo := bits.Mul64(q, m.d)
	_, carry := bits.Add64(lo, mLo, 0)
	res, _ := bits.Add64(hi, mHi, carry)
	if res >= m.d {
		res -= m.d
	}
	return res
}

// ToMont converts an ordinary residue a (0 <= a < d) into Montgomery form.
func (m *Mont64) ToMont(a uint64) uint64 {
	hi, lo := bits.Mul64(a, m.r2)
	return m.redc(hi, lo)
}

// FromMont converts a Montgomery-form value back to an ordinary residue.
func (m *Mont64) FromMont(aM uint64) uint64 {
	return m.redc(0, aM)
}

// MulMont multiplies two Montgomery-form operands, returning a Montgomery-
// form result.
func (m *Mont64) MulMont(aM, bM uint64) uint64 {
	hi, lo := bits.Mul64(aM, bM)
	return m.redc(hi, lo)
}

// PowMont raises a Montgomery-form base to an ordinary exponent, via binary
// exponentiation, returning a Montgomery-form result.
func (m *Mont64) PowMont(baseM uint64, exp uint64) uint64 {
	result := m.ToMont(1)
	for exp > 0 {
		if exp&1 != 0 {
			result = m.MulMont(result, baseM)
		}
		baseM = m.MulMont(baseM, baseM)
		exp >>= 1
	}
	return result
}

// Inverse computes the ordinary-domain modular inverse of a modulo d via
// the extended Euclidean algorithm (math/big.Int.ModInverse). d need not be
// prime: callers only ever invert values coprime to d (prime powers not
// dividing d), so the extended-Euclid route generalizes what the
// zkDilithium field package gets away with doing via Fermat's little
// theorem for its single fixed prime modulus.
func (m *Mont64) Inverse(a uint64) (uint64, error) {
	aBig := new(big.Int).SetUint64(a)
	dBig := new(big.Int).SetUint64(m.d)
	inv := new(big.Int).ModInverse(aBig, dBig)
	if inv == nil {
		return 0, fmt.Errorf("reduction: %d has no inverse mod %d", a, m.d)
	}
	return inv.Uint64(), nil
}

// BatchInverse inverts every element of as modulo d using Montgomery's
// trick: one general inversion plus a chain of Montgomery multiplications
// for the prefix and suffix products. Grounded on field.BatchInv in the
// zkDilithium signer (same prefix/invert-once/walk-backward shape) and on
// m64_inv_array in the original C source, which batches up to IBATCH=256
// values per call for exactly this reason.
func (m *Mont64) BatchInverse(as []uint64) ([]uint64, error) {
	n := len(as)
	if n == 0 {
		return nil, nil
	}
	montVals := make([]uint64, n)
	prefix := make([]uint64, n)
	cur := m.ToMont(1)
	for i, a := range as {
		montVals[i] = m.ToMont(a)
		prefix[i] = cur
		cur = m.MulMont(cur, montVals[i])
	}
	totalOrdinary := m.FromMont(cur)
	invTotal, err := m.Inverse(totalOrdinary)
	if err != nil {
		return nil, err
	}
	invCur := m.ToMont(invTotal)
	out := make([]uint64, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = m.FromMont(m.MulMont(invCur, prefix[i]))
		invCur = m.MulMont(invCur, montVals[i])
	}
	return out, nil
}
