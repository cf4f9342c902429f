package field

import "math/bits"

// reducer holds the constants precomputed for a modulus. All entry points
// take canonical operands.
type reducer struct {
	q uint64

	// Barrett: floor(2^64 / q).
	mu uint64

	// Montgomery with R = 2^32: -q^(-1) mod R and R^2 mod q.
	qInvNeg uint32
	r2      uint64
}

func newReducer(q uint64, kind Reduction) reducer {
	r := reducer{q: q}
	switch kind {
	case ReduceBarrett:
		r.mu, _ = bits.Div64(1, 0, q)
	case ReduceMontgomery:
		// Newton iteration doubles the number of correct low bits; an odd
		// q is its own inverse mod 8.
		inv := uint32(q)
		for i := 0; i < 4; i++ {
			inv *= 2 - uint32(q)*inv
		}
		r.qInvNeg = -inv
		r.r2 = bits.Rem64(1, 0, q)
	}
	return r
}

// generic returns a * b mod q through the full 128-bit product.
func (r *reducer) generic(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, r.q)
}

// barrett returns a * b mod q for q < 2^32.
func (r *reducer) barrett(a, b uint64) uint64 {
	x := a * b
	qhat, _ := bits.Mul64(x, r.mu)
	// qhat undershoots floor(x/q) by at most one.
	return reduceOnce(x-qhat*r.q, r.q)
}

// montRed returns t * 2^-32 mod q for t < q * 2^32.
func (r *reducer) montRed(t uint64) uint64 {
	m := uint32(t) * r.qInvNeg
	u := (t + uint64(m)*r.q) >> 32
	return reduceOnce(u, r.q)
}

// montgomery returns a * b mod q. The first step leaves a*b*R^-1, the second
// multiplies by R^2 and removes the other R^-1.
func (r *reducer) montgomery(a, b uint64) uint64 {
	return r.montRed(r.montRed(a*b) * r.r2)
}

// epsilon is 2^64 mod q for the Goldilocks prime.
const epsilon uint64 = 0xffffffff

// goldilocks returns a value congruent to a * b in [0, 2^64).
func goldilocks(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return reduce128(hi, lo)
}

// reduce128 folds hi*2^64 + lo using 2^64 = epsilon and 2^96 = -1 mod q.
// The result may lie in [q, 2^64).
func reduce128(hi, lo uint64) uint64 {
	hiHi := hi >> 32
	hiLo := hi & epsilon

	t0, borrow := bits.Sub64(lo, hiHi, 0)
	t0 -= epsilon * borrow
	t1 := hiLo * epsilon

	res, carry := bits.Add64(t0, t1, 0)
	return res + epsilon*carry
}
