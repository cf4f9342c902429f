package field

import "math/bits"

// Branch-free helpers. Every condition is a uint64 that is exactly 0 or 1.

// ctSelect returns a when c == 1 and b when c == 0.
func ctSelect(c, a, b uint64) uint64 {
	return b ^ (-c & (a ^ b))
}

// ctNonZero returns 1 when x != 0.
func ctNonZero(x uint64) uint64 {
	return (x | -x) >> 63
}

// ctEq returns 1 when a == b.
func ctEq(a, b uint64) uint64 {
	return 1 ^ ctNonZero(a^b)
}

// ctLess returns 1 when a < b.
func ctLess(a, b uint64) uint64 {
	_, borrow := bits.Sub64(a, b, 0)
	return borrow
}

// reduceOnce maps x in [0, 2q) to [0, q).
func reduceOnce(x, q uint64) uint64 {
	d, borrow := bits.Sub64(x, q, 0)
	return ctSelect(borrow, x, d)
}

// addMod returns a + b mod q for a, b < q, including q close to 2^64.
func addMod(a, b, q uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	d, borrow := bits.Sub64(s, q, 0)
	// The wrapped difference is the answer when the sum overflowed or
	// reached q.
	return ctSelect(carry|(1^borrow), d, s)
}

// subMod returns a - b mod q for a, b < q.
func subMod(a, b, q uint64) uint64 {
	d, borrow := bits.Sub64(a, b, 0)
	return d + (q & -borrow)
}
