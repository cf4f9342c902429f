package poly

import (
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/encoding"
	"lattice-algebra/pkg/field"
)

// Poly is a ring element by its coefficients, index 0 the constant term.
type Poly[T constraints.Unsigned] struct {
	Coeffs []field.Element[T]
}

// Zero returns the zero polynomial.
func (r *Ring[T]) Zero() Poly[T] {
	return Poly[T]{Coeffs: make([]field.Element[T], r.dim)}
}

// One returns the constant polynomial 1.
func (r *Ring[T]) One() Poly[T] {
	p := r.Zero()
	p.Coeffs[0] = r.f.One()
	return p
}

// FromCoefficientsUnchecked copies cs into a polynomial. The caller
// guarantees the elements belong to the ring's field.
func (r *Ring[T]) FromCoefficientsUnchecked(cs []field.Element[T]) Poly[T] {
	r.check(cs)
	return Poly[T]{Coeffs: append([]field.Element[T](nil), cs...)}
}

// FromValues builds a polynomial from canonical integers.
func (r *Ring[T]) FromValues(vs []uint64) (Poly[T], error) {
	if len(vs) != r.dim {
		return Poly[T]{}, fmt.Errorf("poly: %s: %w: %d coefficients, want %d", r.name, encoding.ErrLength, len(vs), r.dim)
	}
	p := r.Zero()
	for i, v := range vs {
		if v >= r.f.Modulus() {
			return Poly[T]{}, fmt.Errorf("poly: %s: %w: coefficient %d is %d", r.name, encoding.ErrOutOfRange, i, v)
		}
		p.Coeffs[i] = r.f.New(v)
	}
	return p, nil
}

// FromInt64s builds a polynomial from signed integers, reducing each.
func (r *Ring[T]) FromInt64s(xs []int64) Poly[T] {
	if len(xs) != r.dim {
		panic(fmt.Sprintf("poly: %s: length %d, want %d", r.name, len(xs), r.dim))
	}
	p := r.Zero()
	for i, x := range xs {
		p.Coeffs[i] = r.f.FromInt64(x)
	}
	return p
}

// Copy returns a deep copy of p.
func (r *Ring[T]) Copy(p Poly[T]) Poly[T] {
	return r.FromCoefficientsUnchecked(p.Coeffs)
}

// Equal reports whether a and b have the same coefficients. The comparison
// does not stop at the first difference.
func (r *Ring[T]) Equal(a, b Poly[T]) bool {
	return r.equal(a.Coeffs, b.Coeffs)
}

func (r *Ring[T]) equal(a, b []field.Element[T]) bool {
	r.check(a)
	r.check(b)
	eq := uint64(1)
	for i := range a {
		eq &= r.f.CtEqual(a[i], b[i])
	}
	return eq == 1
}

func (r *Ring[T]) zip(a, b []field.Element[T], op func(x, y field.Element[T]) field.Element[T]) []field.Element[T] {
	r.check(a)
	r.check(b)
	out := make([]field.Element[T], r.dim)
	for i := range out {
		out[i] = op(a[i], b[i])
	}
	return out
}

func (r *Ring[T]) apply(a []field.Element[T], op func(x field.Element[T]) field.Element[T]) []field.Element[T] {
	r.check(a)
	out := make([]field.Element[T], r.dim)
	for i, x := range a {
		out[i] = op(x)
	}
	return out
}

// Add returns a + b.
func (r *Ring[T]) Add(a, b Poly[T]) Poly[T] {
	return Poly[T]{Coeffs: r.zip(a.Coeffs, b.Coeffs, r.f.Add)}
}

// Sub returns a - b.
func (r *Ring[T]) Sub(a, b Poly[T]) Poly[T] {
	return Poly[T]{Coeffs: r.zip(a.Coeffs, b.Coeffs, r.f.Sub)}
}

// Neg returns -a.
func (r *Ring[T]) Neg(a Poly[T]) Poly[T] {
	return Poly[T]{Coeffs: r.apply(a.Coeffs, r.f.Neg)}
}

// Scale returns c*a.
func (r *Ring[T]) Scale(a Poly[T], c field.Element[T]) Poly[T] {
	return Poly[T]{Coeffs: r.apply(a.Coeffs, func(x field.Element[T]) field.Element[T] {
		return r.f.Mul(x, c)
	})}
}

// Sum returns the sum of ps.
func (r *Ring[T]) Sum(ps ...Poly[T]) Poly[T] {
	acc := r.Zero()
	for _, p := range ps {
		acc = r.Add(acc, p)
	}
	return acc
}

// IsBinary reports whether every coefficient is 0 or 1.
func (r *Ring[T]) IsBinary(p Poly[T]) bool {
	r.check(p.Coeffs)
	for _, c := range p.Coeffs {
		if v := r.f.Value(c); v > 1 {
			return false
		}
	}
	return true
}

// IsTernary reports whether every coefficient is -1, 0 or 1.
func (r *Ring[T]) IsTernary(p Poly[T]) bool {
	r.check(p.Coeffs)
	for _, c := range p.Coeffs {
		if l := r.f.Lift(c); l < -1 || l > 1 {
			return false
		}
	}
	return true
}

// IsConst reports whether p has no terms of positive degree.
func (r *Ring[T]) IsConst(p Poly[T]) bool {
	return r.Degree(p) == 0
}

// Degree returns the index of the highest nonzero coefficient. The zero
// polynomial has degree 0.
func (r *Ring[T]) Degree(p Poly[T]) int {
	r.check(p.Coeffs)
	for i := r.dim - 1; i > 0; i-- {
		if !r.f.IsZero(p.Coeffs[i]) {
			return i
		}
	}
	return 0
}

func abs64(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

// InfinityNorm returns the largest absolute balanced coefficient, saturated
// at math.MaxUint32.
func (r *Ring[T]) InfinityNorm(p Poly[T]) uint32 {
	r.check(p.Coeffs)
	var n uint64
	for _, c := range p.Coeffs {
		n = max(n, abs64(r.f.Lift(c)))
	}
	return uint32(min(n, math.MaxUint32))
}

// L2Norm returns floor(sqrt(sum of squared balanced coefficients)),
// saturated at math.MaxUint32. The sum is accumulated in 128 bits.
func (r *Ring[T]) L2Norm(p Poly[T]) uint32 {
	r.check(p.Coeffs)
	var hi, lo, overflow uint64
	for _, c := range p.Coeffs {
		a := abs64(r.f.Lift(c))
		sqHi, sqLo := bits.Mul64(a, a)
		var carry uint64
		lo, carry = bits.Add64(lo, sqLo, 0)
		hi, carry = bits.Add64(hi, sqHi, carry)
		overflow |= carry
	}
	if hi != 0 || overflow != 0 {
		return math.MaxUint32
	}
	return uint32(isqrt(lo))
}

// isqrt returns floor(sqrt(x)).
func isqrt(x uint64) uint64 {
	s := uint64(math.Sqrt(float64(x)))
	if s > math.MaxUint32 {
		s = math.MaxUint32
	}
	for s*s > x {
		s--
	}
	for s < math.MaxUint32 && (s+1)*(s+1) <= x {
		s++
	}
	return s
}

// Lift returns the balanced representative of every coefficient.
func (r *Ring[T]) Lift(p Poly[T]) []int64 {
	r.check(p.Coeffs)
	out := make([]int64, r.dim)
	for i, c := range p.Coeffs {
		out[i] = r.f.Lift(c)
	}
	return out
}

// Normalize returns p with every coefficient stored canonically.
func (r *Ring[T]) Normalize(p Poly[T]) Poly[T] {
	return Poly[T]{Coeffs: r.apply(p.Coeffs, r.f.Normalize)}
}
