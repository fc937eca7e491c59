package reduction

import "math/bits"

// Barrett32 reduces values modulo a small, fixed modulus (one of the
// auxiliary moduli 9, 18, 126, 162, or a cached small divisor) using a
// precomputed magic constant instead of a division per call. Grounded on
// the fixed-modulus fast-mod constants (ComputeM32/FastModU32/FastDivU32)
// in pthash-go's internal/core/fastmod.go, which implements the same
// Lemire-style "multiply by floor(2^64/d)+1, take the high word" trick.
type Barrett32 struct {
	d     uint32
	magic uint64 // floor(2^64 / d) + 1
	pow32 uint32 // 2^32 mod d, used to fold 64-bit inputs down to 32 bits
}

// NewBarrett32 builds the reduction context for modulus d. d must be
// nonzero and fit in 32 bits; all of the search engine's auxiliary moduli
// do (the largest is 162).
func NewBarrett32(d uint32) Barrett32 {
	magic := ^uint64(0)/uint64(d) + 1
	pow32 := uint32((uint64(1) << 32) % uint64(d))
	return Barrett32{d: d, magic: magic, pow32: pow32}
}

// Modulus returns the fixed modulus this context reduces against.
func (b Barrett32) Modulus() uint32 { return b.d }

// reduce32 reduces a 32-bit value mod d using the precomputed magic
// constant: lowbits = magic*a mod 2^64, then the high 64 bits of
// lowbits*d recovers floor(a*d/2^64... ) which equals a mod d.
func (b Barrett32) reduce32(a uint32) uint32 {
	lowbits := b.magic * uint64(a)
	hi, _ := bits.Mul64(lowbits, uint64(b.d))
	return uint32(hi)
}

// Reduce reduces an arbitrary 64-bit value mod the small fixed modulus d,
// by splitting into high/low 32-bit halves, folding the high half through
// the precomputed 2^32 mod d constant, and finishing with a 32-bit
// fastmod pass.
func (b Barrett32) Reduce(a uint64) uint32 {
	hi := uint32(a >> 32)
	lo := uint32(a)
	hiReduced := b.reduce32(hi)
	// hiReduced * pow32 + loReduced stays below 2^32 for every d <= 2^16
	// (CRT64 uses this type up to that bound), so one more reduce32 pass finishes it.
	folded := uint32(hiReduced)*b.pow32 + b.reduce32(lo)
	return b.reduce32(folded)
}

// Inverse returns the inverse of a modulo the small fixed modulus d via
// Fermat/extended-Euclid over plain machine words (d is tiny, so no
// 128-bit arithmetic is needed here).
func (b Barrett32) Inverse(a uint32) (uint32, bool) {
	ar := b.reduce32(a)
	if ar == 0 {
		return 0, false
	}
	// extended Euclidean algorithm, small values only
	var oldR, r int64 = int64(ar), int64(b.d)
	var oldS, s int64 = 1, 0
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldR != 1 {
		return 0, false
	}
	inv := oldS % int64(b.d)
	if inv < 0 {
		inv += int64(b.d)
	}
	return uint32(inv), true
}

// InverseMod computes a^-1 mod m for a small modulus m (up to 32 bits),
// tolerating even m. Shared by the divisor enumerator and the phase
// dispatcher wherever a CRT combine step needs an inverse against an
// auxiliary or cached modulus that need not be odd (ruling out Mont64,
// which requires an odd modulus).
func InverseMod(a, m uint64) (uint64, bool) {
	b := NewBarrett32(uint32(m))
	inv, ok := b.Inverse(uint32(a % m))
	return uint64(inv), ok
}
