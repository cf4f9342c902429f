package poly

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotTernary is returned by ToSparse for a coefficient outside {-1, 0, 1}.
var ErrNotTernary = errors.New("poly: not a ternary polynomial")

// Sparse lists the positions of the +1 and -1 coefficients of a ternary
// polynomial, in increasing order.
type Sparse struct {
	Pos []int
	Neg []int
}

// Weight returns the number of nonzero coefficients.
func (s Sparse) Weight() int {
	return len(s.Pos) + len(s.Neg)
}

// ToSparse returns the support of a ternary polynomial.
func (r *Ring[T]) ToSparse(p Poly[T]) (Sparse, error) {
	r.check(p.Coeffs)
	var s Sparse
	for i, c := range p.Coeffs {
		switch r.f.Lift(c) {
		case 0:
		case 1:
			s.Pos = append(s.Pos, i)
		case -1:
			s.Neg = append(s.Neg, i)
		default:
			return Sparse{}, fmt.Errorf("%w: coefficient %d is %d", ErrNotTernary, i, r.f.Lift(c))
		}
	}
	return s, nil
}

func (r *Ring[T]) checkSparse(s Sparse) {
	seen := make([]bool, r.dim)
	for _, idx := range slices.Concat(s.Pos, s.Neg) {
		if idx < 0 || idx >= r.dim {
			panic(fmt.Sprintf("poly: %s: sparse index %d out of range", r.name, idx))
		}
		if seen[idx] {
			panic(fmt.Sprintf("poly: %s: sparse index %d repeated", r.name, idx))
		}
		seen[idx] = true
	}
}

// FromSparse returns the ternary polynomial with support s.
func (r *Ring[T]) FromSparse(s Sparse) Poly[T] {
	r.checkSparse(s)
	p := r.Zero()
	for _, i := range s.Pos {
		p.Coeffs[i] = r.f.One()
	}
	minusOne := r.f.Neg(r.f.One())
	for _, i := range s.Neg {
		p.Coeffs[i] = minusOne
	}
	return p
}

// MulSparse returns s*p mod X^n + 1 by shifting and adding p once per
// nonzero coefficient of s, Weight*Dim additions in total.
func (r *Ring[T]) MulSparse(s Sparse, p Poly[T]) Poly[T] {
	r.check(p.Coeffs)
	r.checkSparse(s)
	f := r.f
	out := r.Zero()
	acc := out.Coeffs

	for _, i := range s.Pos {
		for j, c := range p.Coeffs {
			if k := i + j; k < r.dim {
				acc[k] = f.Add(acc[k], c)
			} else {
				acc[k-r.dim] = f.Sub(acc[k-r.dim], c)
			}
		}
	}
	for _, i := range s.Neg {
		for j, c := range p.Coeffs {
			if k := i + j; k < r.dim {
				acc[k] = f.Sub(acc[k], c)
			} else {
				acc[k-r.dim] = f.Add(acc[k-r.dim], c)
			}
		}
	}
	return out
}
