package reduction

import "math/big"

// CubeRootsModPrimePower returns every residue r mod p^e with r^3 == a
// (mod p^e). When p does not divide a, the roots are lifted from
// CubeRootModPrime via Hensel's method (Newton's iteration done with
// math/big, mirroring the big.Int modular toolkit ectorus.go uses for its
// less performance-critical paths). When p divides a (the case that
// arises for prime factors of k itself), the roots are exactly the
// multiples of p^ceil(e/3).
func CubeRootsModPrimePower(a uint64, p uint64, e uint32) []uint64 {
	if e == 0 {
		return []uint64{0}
	}
	pe := uint64(1)
	for i := uint32(0); i < e; i++ {
		pe *= p
	}
	if a%p == 0 {
		return cubeRootsOfZero(p, e, pe)
	}

	r0, ok := CubeRootModPrime(a%p, p)
	if !ok {
		return nil
	}
	roots := cubeRootCandidatesModP(a, p, r0)

	out := make([]uint64, 0, len(roots))
	peBig := new(big.Int).SetUint64(pe)
	aBig := new(big.Int).SetUint64(a % pe)
	for _, r := range roots {
		lifted := henselLiftCube(aBig, new(big.Int).SetUint64(r), p, e, peBig)
		if lifted != nil {
			out = append(out, lifted.Uint64())
		}
	}
	return out
}

// cubeRootCandidatesModP returns all roots of x^3 == a (mod p) given one
// root r0, accounting for the two extra cube roots of unity when
// p == 1 (mod 3).
func cubeRootCandidatesModP(a, p, r0 uint64) []uint64 {
	if p%3 != 1 {
		return []uint64{r0}
	}
	m, err := NewMont64(p)
	if err != nil {
		return []uint64{r0}
	}
	// A primitive cube root of unity mod p, found by searching for a
	// non-cube-residue g and setting omega = g^((p-1)/3).
	var omegaM uint64
	for g := uint64(2); ; g++ {
		if !CubicResidueSymbol(g, p) {
			omegaM = m.PowMont(m.ToMont(g%p), (p-1)/3)
			break
		}
	}
	r0M := m.ToMont(r0 % p)
	r1 := m.FromMont(m.MulMont(r0M, omegaM))
	r2 := m.FromMont(m.MulMont(m.MulMont(r0M, omegaM), omegaM))
	return []uint64{r0, r1, r2}
}

// henselLiftCube lifts a root of x^3 == a (mod p) to a root mod p^e via
// Newton's iteration x_{i+1} = x_i - (x_i^3 - a) * (3x_i^2)^-1, raising
// the modulus by one factor of p each step, done in math/big since e rarely exceeds a
// handful of steps and correctness matters far more than speed here.
func henselLiftCube(a, r *big.Int, p uint64, e uint32, pe *big.Int) *big.Int {
	modulus := new(big.Int).SetUint64(p)
	x := new(big.Int).Set(r)
	for cur := uint64(1); cur < uint64(1)<<e && modulus.Cmp(pe) < 0; cur++ {
		modulus.Mul(modulus, new(big.Int).SetUint64(p))
		if modulus.Cmp(pe) > 0 {
			modulus.Set(pe)
		}
		x = newtonStepCube(a, x, modulus)
	}
	x.Mod(x, pe)
	return x
}

func newtonStepCube(a, x, modulus *big.Int) *big.Int {
	x2 := new(big.Int).Mul(x, x)
	x3 := new(big.Int).Mul(x2, x)
	x3.Mod(x3, modulus)
	diff := new(big.Int).Sub(x3, a)
	diff.Mod(diff, modulus)

	three := big.NewInt(3)
	denom := new(big.Int).Mul(three, x2)
	denom.Mod(denom, modulus)
	denomInv := new(big.Int).ModInverse(denom, modulus)
	if denomInv == nil {
		return new(big.Int).Set(x) // derivative not invertible; stay put rather than divide by zero
	}
	delta := new(big.Int).Mul(diff, denomInv)
	delta.Mod(delta, modulus)

	next := new(big.Int).Sub(x, delta)
	next.Mod(next, modulus)
	return next
}

// cubeRootsOfZero returns every r mod p^e with p^e | r^3: exactly the
// multiples of p^ceil(e/3).
func cubeRootsOfZero(p uint64, e uint32, pe uint64) []uint64 {
	ce := (e + 2) / 3
	step := uint64(1)
	for i := uint32(0); i < ce; i++ {
		step *= p
	}
	out := make([]uint64, 0, pe/step)
	for r := uint64(0); r < pe; r += step {
		out = append(out, r)
	}
	return out
}
