// Package field provides prime field arithmetic for lattice rings.
//
// A Field is built once from a Config and is read-only afterwards. Elements
// are plain values; every operation returns a new Element.
package field

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"

	"golang.org/x/exp/constraints"
)

// ErrNotInvertible is returned when inverting zero.
var ErrNotInvertible = errors.New("field: zero has no inverse")

// Source is a caller-supplied generator of uniform 64-bit words.
// *math/rand/v2.Rand and the streams in package prng satisfy it.
type Source interface {
	Uint64() uint64
}

// Element is a residue stored in the primitive width T. The zero value is
// the field zero.
type Element[T constraints.Unsigned] struct {
	v T
}

// Raw returns the stored representation, which is non-canonical for lazy
// fields.
func (e Element[T]) Raw() T {
	return e.v
}

func (e Element[T]) String() string {
	return strconv.FormatUint(uint64(e.v), 10)
}

// Field is Z_q stored in T.
type Field[T constraints.Unsigned] struct {
	name          string
	q             uint64
	half          uint64 // floor(q/2)
	qBits         int
	primitiveBits int
	productBits   int
	lazy          bool
	reduction     Reduction
	r             reducer
}

// New validates cfg and builds the field.
func New[T constraints.Unsigned](cfg Config) (*Field[T], error) {
	primitiveBits := bits.Len64(uint64(^T(0)))
	productBits, err := cfg.validate(primitiveBits)
	if err != nil {
		return nil, err
	}
	return &Field[T]{
		name:          cfg.Name,
		q:             cfg.Modulus,
		half:          cfg.Modulus / 2,
		qBits:         bits.Len64(cfg.Modulus),
		primitiveBits: primitiveBits,
		productBits:   productBits,
		lazy:          cfg.Lazy,
		reduction:     cfg.Reduction,
		r:             newReducer(cfg.Modulus, cfg.Reduction),
	}, nil
}

// MustNew is New for parameter sets known to be valid. It panics otherwise.
func MustNew[T constraints.Unsigned](cfg Config) *Field[T] {
	f, err := New[T](cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the configuration label.
func (f *Field[T]) Name() string { return f.name }

// Modulus returns q.
func (f *Field[T]) Modulus() uint64 { return f.q }

// Bits returns the bit length of q.
func (f *Field[T]) Bits() int { return f.qBits }

// PrimitiveBits returns the storage width of an element.
func (f *Field[T]) PrimitiveBits() int { return f.primitiveBits }

// ProductBits returns the width reserved for products. It does not affect
// arithmetic.
func (f *Field[T]) ProductBits() int { return f.productBits }

// Bytes returns the encoded size of an element.
func (f *Field[T]) Bytes() int { return (f.primitiveBits + 7) / 8 }

// Lazy reports whether elements may be stored non-canonically.
func (f *Field[T]) Lazy() bool { return f.lazy }

// Reduction returns the product reduction hook in use.
func (f *Field[T]) Reduction() Reduction { return f.reduction }

func (f *Field[T]) canon(a Element[T]) uint64 {
	v := uint64(a.v)
	if f.lazy {
		v = reduceOnce(v, f.q)
	}
	return v
}

// Zero returns the additive identity.
func (f *Field[T]) Zero() Element[T] { return Element[T]{} }

// One returns the multiplicative identity.
func (f *Field[T]) One() Element[T] { return Element[T]{v: 1} }

// New converts a canonical integer. It panics if x >= q.
func (f *Field[T]) New(x uint64) Element[T] {
	if x >= f.q {
		panic(fmt.Sprintf("field: %s: value %d is not below the modulus %d", f.name, x, f.q))
	}
	return Element[T]{v: T(x)}
}

// Reduce returns x mod q.
func (f *Field[T]) Reduce(x uint64) Element[T] {
	return Element[T]{v: T(x % f.q)}
}

// FromInt64 returns x mod q, handling negative values correctly.
func (f *Field[T]) FromInt64(x int64) Element[T] {
	if x >= 0 {
		return f.Reduce(uint64(x))
	}
	// -(x+1)+1 stays in range for math.MinInt64.
	return f.Neg(f.Reduce(uint64(-(x + 1)) + 1))
}

// Value returns the canonical representative in [0, q).
func (f *Field[T]) Value(a Element[T]) uint64 {
	return f.canon(a)
}

// Add returns (a + b) mod q.
func (f *Field[T]) Add(a, b Element[T]) Element[T] {
	return Element[T]{v: T(addMod(f.canon(a), f.canon(b), f.q))}
}

// Sub returns (a - b) mod q.
func (f *Field[T]) Sub(a, b Element[T]) Element[T] {
	return Element[T]{v: T(subMod(f.canon(a), f.canon(b), f.q))}
}

// Neg returns (-a) mod q.
func (f *Field[T]) Neg(a Element[T]) Element[T] {
	return Element[T]{v: T(subMod(0, f.canon(a), f.q))}
}

// Double returns 2a mod q.
func (f *Field[T]) Double(a Element[T]) Element[T] {
	return f.Add(a, a)
}

// Mul returns (a * b) mod q.
func (f *Field[T]) Mul(a, b Element[T]) Element[T] {
	return Element[T]{v: T(f.mul(f.canon(a), f.canon(b)))}
}

func (f *Field[T]) mul(a, b uint64) uint64 {
	switch f.reduction {
	case ReduceBarrett:
		return f.r.barrett(a, b)
	case ReduceMontgomery:
		return f.r.montgomery(a, b)
	case ReduceGoldilocks:
		return goldilocks(a, b)
	default:
		return f.r.generic(a, b)
	}
}

// Square returns a^2 mod q.
func (f *Field[T]) Square(a Element[T]) Element[T] {
	return f.Mul(a, a)
}

// Select returns a when c == 1 and b when c == 0, without branching on c.
func (f *Field[T]) Select(c uint64, a, b Element[T]) Element[T] {
	return Element[T]{v: T(ctSelect(c, uint64(a.v), uint64(b.v)))}
}

// CtEqual returns 1 when a and b are the same residue and 0 otherwise.
func (f *Field[T]) CtEqual(a, b Element[T]) uint64 {
	return ctEq(f.canon(a), f.canon(b))
}

// Equal reports whether a and b are the same residue. The comparison itself
// is constant time.
func (f *Field[T]) Equal(a, b Element[T]) bool {
	return f.CtEqual(a, b) == 1
}

func (f *Field[T]) isZero(a Element[T]) uint64 {
	return 1 ^ ctNonZero(f.canon(a))
}

// IsZero reports whether a is zero.
func (f *Field[T]) IsZero(a Element[T]) bool {
	return f.isZero(a) == 1
}

// powBits returns a^e looking at the low n bits of e. The sequence of
// operations depends only on n.
func (f *Field[T]) powBits(a Element[T], e uint64, n int) Element[T] {
	res := f.One()
	for i := n - 1; i >= 0; i-- {
		res = f.Square(res)
		res = f.Select((e>>uint(i))&1, f.Mul(res, a), res)
	}
	return res
}

// Pow returns a^e mod q, constant time in a for every e.
func (f *Field[T]) Pow(a Element[T], e uint64) Element[T] {
	return f.powBits(a, e, 64)
}

// PowVartime returns a^e mod q. Timing depends on e; use it only when the
// exponent is public.
func (f *Field[T]) PowVartime(a Element[T], e uint64) Element[T] {
	res := f.One()
	for i := bits.Len64(e) - 1; i >= 0; i-- {
		res = f.Square(res)
		if (e>>uint(i))&1 == 1 {
			res = f.Mul(res, a)
		}
	}
	return res
}

// Invert returns a^(q-2) mod q using Fermat's little theorem, with a fixed
// number of steps derived from the modulus.
func (f *Field[T]) Invert(a Element[T]) (Element[T], error) {
	inv := f.powBits(a, f.q-2, f.qBits)
	if f.IsZero(a) {
		return Element[T]{}, ErrNotInvertible
	}
	return inv, nil
}

// Lift returns the balanced representative of a in (-q/2, q/2].
func (f *Field[T]) Lift(a Element[T]) int64 {
	v := f.canon(a)
	neg := ctLess(f.half, v)
	return int64(v - (f.q & -neg))
}

// Normalize returns a with its canonical representative stored.
func (f *Field[T]) Normalize(a Element[T]) Element[T] {
	return Element[T]{v: T(f.canon(a))}
}

// Random draws one word from src and reduces it mod q.
//
// The reduction is biased by up to q/2^64 and is not rejection sampled; it is
// meant for test vectors and non-adversarial parameter derivation. Use
// sampling.UniformXOF where an unbiased draw is required.
func (f *Field[T]) Random(src Source) Element[T] {
	return Element[T]{v: T(src.Uint64() % f.q)}
}

// Sum returns the sum of xs.
func (f *Field[T]) Sum(xs ...Element[T]) Element[T] {
	acc := f.Zero()
	for _, x := range xs {
		acc = f.Add(acc, x)
	}
	return acc
}

// Product returns the product of xs.
func (f *Field[T]) Product(xs ...Element[T]) Element[T] {
	acc := f.One()
	for _, x := range xs {
		acc = f.Mul(acc, x)
	}
	return acc
}
