// Package ntt provides the Number Theoretic Transform over Z_q[X]/(X^n + 1).
//
// A Table holds the twiddle factors for one (field, degree) pair. With base
// degree k = 1 the transform is complete and the evaluation domain holds n
// point values. With k > 1 the last log2(k) layers are skipped and the
// evaluation domain holds n/k residues modulo X^k - gamma_j, which is how a
// modulus such as 3329 without a primitive 2n-th root is handled.
package ntt

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
)

// ErrNoRootOfUnity is returned when the field has no suitable root of unity
// or the supplied root has the wrong order.
var ErrNoRootOfUnity = errors.New("ntt: no primitive root of unity")

// BitReverse reverses the low n bits of x.
func BitReverse(x uint, n int) uint {
	if n == 0 {
		return 0
	}
	return bits.Reverse(x) >> (bits.UintSize - n)
}

// Table contains the precomputed powers of the root in plain form.
type Table[T constraints.Unsigned] struct {
	f     *field.Field[T]
	dim   int
	k     int
	m     int // dim / k
	logM  int
	root  field.Element[T]
	fwd   []field.Element[T] // fwd[i] = root^brv(i)
	inv   []field.Element[T] // inv[i] = fwd[i]^-1
	gamma []field.Element[T] // gamma[j] = root^(2 brv(j) + 1)
	nInv  field.Element[T]   // m^-1
}

func isPow2(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// FindRoot returns an element of order exactly 2m, derived from the
// smallest quadratic non-residue.
func FindRoot[T constraints.Unsigned](f *field.Field[T], m int) (field.Element[T], error) {
	q := f.Modulus()
	order := 2 * uint64(m)
	if !isPow2(m) || (q-1)%order != 0 {
		return field.Element[T]{}, fmt.Errorf("%w: %d does not divide q-1 = %d", ErrNoRootOfUnity, order, q-1)
	}
	minusOne := f.New(q - 1)
	for g := uint64(2); g < q; g++ {
		if !f.Equal(f.PowVartime(f.New(g), (q-1)/2), minusOne) {
			continue
		}
		return f.PowVartime(f.New(g), (q-1)/order), nil
	}
	return field.Element[T]{}, fmt.Errorf("%w: no quadratic non-residue mod %d", ErrNoRootOfUnity, q)
}

// NewTable builds the tables for polynomials of dim coefficients split into
// blocks of baseDegree coefficients. root must have order 2*dim/baseDegree;
// zero means derive one with FindRoot.
func NewTable[T constraints.Unsigned](f *field.Field[T], dim, baseDegree int, root uint64) (*Table[T], error) {
	if !isPow2(dim) || dim < 2 {
		return nil, fmt.Errorf("ntt: degree %d is not a power of two >= 2", dim)
	}
	if !isPow2(baseDegree) || baseDegree >= dim {
		return nil, fmt.Errorf("ntt: base degree %d is not a power of two below %d", baseDegree, dim)
	}
	m := dim / baseDegree
	q := f.Modulus()
	if (q-1)%(2*uint64(m)) != 0 {
		return nil, fmt.Errorf("%w: %s: 2*%d does not divide q-1 = %d", ErrNoRootOfUnity, f.Name(), m, q-1)
	}

	var r field.Element[T]
	if root == 0 {
		var err error
		if r, err = FindRoot(f, m); err != nil {
			return nil, err
		}
	} else {
		if root >= q {
			return nil, fmt.Errorf("ntt: root %d is not below the modulus %d", root, q)
		}
		r = f.New(root)
	}
	if !f.Equal(f.PowVartime(r, uint64(m)), f.New(q-1)) {
		return nil, fmt.Errorf("%w: %v^%d != -1 mod %d", ErrNoRootOfUnity, r, m, q)
	}

	t := &Table[T]{
		f:     f,
		dim:   dim,
		k:     baseDegree,
		m:     m,
		logM:  bits.TrailingZeros(uint(m)),
		root:  r,
		fwd:   make([]field.Element[T], m),
		inv:   make([]field.Element[T], m),
		gamma: make([]field.Element[T], m),
	}

	// Powers of the root in natural order, then permuted.
	pow := make([]field.Element[T], 2*m)
	pow[0] = f.One()
	for i := 1; i < 2*m; i++ {
		pow[i] = f.Mul(pow[i-1], r)
	}
	for i := 0; i < m; i++ {
		b := int(BitReverse(uint(i), t.logM))
		t.fwd[i] = f.Normalize(pow[b])
		t.gamma[i] = f.Normalize(pow[2*b+1])
	}
	copy(t.inv, t.fwd)
	f.BatchInvert(t.inv)

	nInv, err := f.Invert(f.Reduce(uint64(m)))
	if err != nil {
		return nil, fmt.Errorf("ntt: %s: %d is not invertible", f.Name(), m)
	}
	t.nInv = nInv
	return t, nil
}

// MustNewTable is NewTable for parameters known to be valid.
func MustNewTable[T constraints.Unsigned](f *field.Field[T], dim, baseDegree int, root uint64) *Table[T] {
	t, err := NewTable(f, dim, baseDegree, root)
	if err != nil {
		panic(err)
	}
	return t
}

// Field returns the coefficient field.
func (t *Table[T]) Field() *field.Field[T] { return t.f }

// Dim returns the number of coefficients.
func (t *Table[T]) Dim() int { return t.dim }

// BaseDegree returns the block size of the evaluation domain.
func (t *Table[T]) BaseDegree() int { return t.k }

// Blocks returns Dim / BaseDegree.
func (t *Table[T]) Blocks() int { return t.m }

// Root returns the root of unity of order 2*Blocks.
func (t *Table[T]) Root() field.Element[T] { return t.root }

// Twiddle returns root^brv(i).
func (t *Table[T]) Twiddle(i int) field.Element[T] { return t.fwd[i] }

// InverseTwiddle returns root^-brv(i).
func (t *Table[T]) InverseTwiddle(i int) field.Element[T] { return t.inv[i] }

// Gamma returns the constant of block j: the evaluation domain holds
// a mod (X^k - Gamma(j)).
func (t *Table[T]) Gamma(j int) field.Element[T] { return t.gamma[j] }

// NInv returns Blocks^-1.
func (t *Table[T]) NInv() field.Element[T] { return t.nInv }

func (t *Table[T]) check(a []field.Element[T]) {
	if len(a) != t.dim {
		panic(fmt.Sprintf("ntt: length %d, want %d", len(a), t.dim))
	}
}

// butterfly performs the Cooley-Tukey step for butterflies [lo, hi) of the
// layer with half-length l.
func (t *Table[T]) butterfly(a []field.Element[T], l, lo, hi int) {
	f := t.f
	base := t.dim / (2 * l)
	for i := lo; i < hi; i++ {
		b := i / l
		j := b*2*l + i%l
		tv := f.Mul(t.fwd[base+b], a[j+l])
		a[j+l] = f.Sub(a[j], tv)
		a[j] = f.Add(a[j], tv)
	}
}

// invButterfly performs the Gentleman-Sande step without the factor 1/2.
func (t *Table[T]) invButterfly(a []field.Element[T], l, lo, hi int) {
	f := t.f
	base := t.dim / (2 * l)
	for i := lo; i < hi; i++ {
		b := i / l
		j := b*2*l + i%l
		u, v := a[j], a[j+l]
		a[j] = f.Add(u, v)
		a[j+l] = f.Mul(f.Sub(u, v), t.inv[base+b])
	}
}

func (t *Table[T]) scale(a []field.Element[T], lo, hi int) {
	for i := lo; i < hi; i++ {
		a[i] = t.f.Mul(a[i], t.nInv)
	}
}

// Forward computes the transform of a in place.
// Input: coefficients in standard order.
// Output: evaluation domain in bit-reversed block order.
func (t *Table[T]) Forward(a []field.Element[T]) {
	t.check(a)
	half := t.dim / 2
	for l := half; l >= t.k; l /= 2 {
		t.butterfly(a, l, 0, half)
	}
}

// Inverse computes the inverse transform of a in place.
// Input: evaluation domain.
// Output: coefficients in standard order.
func (t *Table[T]) Inverse(a []field.Element[T]) {
	t.check(a)
	half := t.dim / 2
	for l := t.k; l <= half; l *= 2 {
		t.invButterfly(a, l, 0, half)
	}
	t.scale(a, 0, t.dim)
}

// MulPointwise sets dst to the product of a and b in the evaluation domain.
// dst may alias a or b.
func (t *Table[T]) MulPointwise(dst, a, b []field.Element[T]) {
	t.check(dst)
	t.check(a)
	t.check(b)
	t.mulBlocks(dst, a, b, 0, t.m)
}

// mulBlocks multiplies blocks [lo, hi) modulo X^k - gamma_j.
func (t *Table[T]) mulBlocks(dst, a, b []field.Element[T], lo, hi int) {
	f := t.f
	if t.k == 1 {
		for i := lo; i < hi; i++ {
			dst[i] = f.Mul(a[i], b[i])
		}
		return
	}

	k := t.k
	acc := make([]field.Element[T], 2*k-1)
	for j := lo; j < hi; j++ {
		x, y := a[j*k:(j+1)*k], b[j*k:(j+1)*k]
		clear(acc)
		for i := 0; i < k; i++ {
			for l := 0; l < k; l++ {
				acc[i+l] = f.Add(acc[i+l], f.Mul(x[i], y[l]))
			}
		}
		g := t.gamma[j]
		for i := 0; i < k; i++ {
			c := acc[i]
			if i+k < len(acc) {
				c = f.Add(c, f.Mul(g, acc[i+k]))
			}
			dst[j*k+i] = c
		}
	}
}
