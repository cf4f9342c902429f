// Package sampling draws random polynomials.
//
// Samplers take a field.Source with exclusive access; the result depends
// only on the words it produces. Uniform and Binary consume exactly Dim and
// Dim/64 words. The other samplers reject and so consume a variable number.
package sampling

import (
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
	"lattice-algebra/pkg/poly"
	"lattice-algebra/pkg/prng"
)

// Uniform samples every coefficient with field.Random, one word each. The
// reduction is biased by up to q/2^64; use UniformXOF where that matters.
func Uniform[T constraints.Unsigned](r *poly.Ring[T], src field.Source) poly.Poly[T] {
	f := r.Field()
	p := r.Zero()
	for i := range p.Coeffs {
		p.Coeffs[i] = f.Random(src)
	}
	return p
}

// UniformMod samples coefficients uniformly from [0, m), rejecting words
// above the largest multiple of m. m = 0 means the field modulus. It panics
// if m > q.
//
// Unlike Uniform, which reduces one word per coefficient and keeps the
// bias, UniformMod may consume more than Dim words.
func UniformMod[T constraints.Unsigned](r *poly.Ring[T], src field.Source, m uint64) poly.Poly[T] {
	f := r.Field()
	if m == 0 {
		m = f.Modulus()
	}
	if m > f.Modulus() {
		panic(fmt.Sprintf("sampling: modulus %d exceeds q = %d", m, f.Modulus()))
	}
	p := r.Zero()
	for i := range p.Coeffs {
		p.Coeffs[i] = f.Reduce(below(src, m))
	}
	return p
}

// Centered samples coefficients uniformly from [-bound, bound]. It panics
// unless 2*bound+1 <= q.
func Centered[T constraints.Unsigned](r *poly.Ring[T], src field.Source, bound uint64) poly.Poly[T] {
	f := r.Field()
	if bound > (f.Modulus()-1)/2 {
		panic(fmt.Sprintf("sampling: bound %d exceeds (q-1)/2 for q = %d", bound, f.Modulus()))
	}
	shift := f.Reduce(bound)

	p := r.Zero()
	for i := range p.Coeffs {
		p.Coeffs[i] = f.Sub(f.Reduce(below(src, 2*bound+1)), shift)
	}
	return p
}

// below returns a uniform value in [0, m).
func below(src field.Source, m uint64) uint64 {
	limit := math.MaxUint64 / m * m
	w := src.Uint64()
	for w >= limit {
		w = src.Uint64()
	}
	return w % m
}

// Binary samples coefficients in {0, 1}, one bit of the source each.
func Binary[T constraints.Unsigned](r *poly.Ring[T], src field.Source) poly.Poly[T] {
	f := r.Field()
	p := r.Zero()
	var w uint64
	for i := range p.Coeffs {
		if i%64 == 0 {
			w = src.Uint64()
		}
		p.Coeffs[i] = f.Reduce(w & 1)
		w >>= 1
	}
	return p
}

// Ternary samples a polynomial with exactly weight coefficients in
// {-1, 1}, the rest zero. Each attempt uses one word: the low log2(Dim) bits
// pick the position, the next bit the sign. Filled positions are rejected.
func Ternary[T constraints.Unsigned](r *poly.Ring[T], src field.Source, weight int) poly.Poly[T] {
	dim := r.Dim()
	if weight < 0 || weight > dim {
		panic(fmt.Sprintf("sampling: weight %d out of range for dimension %d", weight, dim))
	}
	f := r.Field()
	one, minusOne := f.One(), f.Neg(f.One())
	logDim := bits.TrailingZeros(uint(dim))

	p := r.Zero()
	filled := make([]bool, dim)
	for ct := 0; ct < weight; {
		w := src.Uint64()
		idx := int(w & uint64(dim-1))
		if filled[idx] {
			continue
		}
		filled[idx] = true
		ct++
		if (w>>logDim)&1 == 1 {
			p.Coeffs[idx] = one
		} else {
			p.Coeffs[idx] = minusOne
		}
	}
	return p
}

// TernaryBalanced samples a polynomial with exactly halfWeight coefficients
// equal to 1 and halfWeight equal to -1. Positions come from consecutive
// log2(Dim)-bit windows of each word; filled positions are rejected. It
// panics if 2*halfWeight > Dim.
func TernaryBalanced[T constraints.Unsigned](r *poly.Ring[T], src field.Source, halfWeight int) poly.Poly[T] {
	dim := r.Dim()
	if halfWeight < 0 || 2*halfWeight > dim {
		panic(fmt.Sprintf("sampling: half weight %d out of range for dimension %d", halfWeight, dim))
	}
	f := r.Field()
	logDim := bits.TrailingZeros(uint(dim))
	perWord := 64 / logDim
	mask := uint64(dim - 1)

	p := r.Zero()
	filled := make([]bool, dim)
	var w uint64
	left := 0
	next := func() int {
		if left == 0 {
			w = src.Uint64()
			left = perWord
		}
		idx := int(w & mask)
		w >>= logDim
		left--
		return idx
	}

	for _, v := range []field.Element[T]{f.One(), f.Neg(f.One())} {
		for ct := 0; ct < halfWeight; {
			idx := next()
			if filled[idx] {
				continue
			}
			filled[idx] = true
			p.Coeffs[idx] = v
			ct++
		}
	}
	return p
}

// hashStream expands SHA3-256(msg) with ChaCha20.
func hashStream(msg []byte) *prng.Stream {
	return prng.NewChaCha20(sha3.Sum256(msg))
}

// FromHashMessage deterministically maps msg to a uniform polynomial:
// SHA3-256(msg) keys a ChaCha20 stream that drives Uniform.
func FromHashMessage[T constraints.Unsigned](r *poly.Ring[T], msg []byte) poly.Poly[T] {
	return Uniform(r, hashStream(msg))
}

// TernaryFromHashMessage is FromHashMessage with a ternary polynomial of
// the given weight.
func TernaryFromHashMessage[T constraints.Unsigned](r *poly.Ring[T], msg []byte, weight int) poly.Poly[T] {
	return Ternary(r, hashStream(msg), weight)
}

// ChallengeFromHashMessage is FromHashMessage with a balanced challenge of
// halfWeight coefficients of each sign.
func ChallengeFromHashMessage[T constraints.Unsigned](r *poly.Ring[T], msg []byte, halfWeight int) poly.Poly[T] {
	return TernaryBalanced(r, hashStream(msg), halfWeight)
}
