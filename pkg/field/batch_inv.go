package field

// BatchInvert computes the modular inverse of each element in place.
// Uses Montgomery's trick: n inversions with 1 inversion + 3(n-1) multiplications.
// Elements that are 0 remain 0. Zero handling is branch-free: a zero is
// replaced by 1 in the running product and masked out of the result.
func (f *Field[T]) BatchInvert(xs []Element[T]) {
	n := len(xs)
	if n == 0 {
		return
	}

	one, zero := f.One(), f.Zero()

	// prods[i] = safe(xs[0]) * ... * safe(xs[i])
	prods := make([]Element[T], n)
	acc := one
	for i, x := range xs {
		acc = f.Mul(acc, f.Select(f.isZero(x), one, x))
		prods[i] = acc
	}

	// The running product is never zero.
	inv, _ := f.Invert(acc)

	// Work backwards: inv holds prods[i]^-1 at the top of each iteration.
	for i := n - 1; i > 0; i-- {
		x := xs[i]
		z := f.isZero(x)
		xs[i] = f.Select(z, zero, f.Mul(inv, prods[i-1]))
		inv = f.Mul(inv, f.Select(z, one, x))
	}
	xs[0] = f.Select(f.isZero(xs[0]), zero, inv)
}
