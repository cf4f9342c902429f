package poly

import (
	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
)

// Vector is a ring element in the evaluation domain, in the block order
// produced by the forward transform. Obtain one from NTT or from arithmetic
// on other Vectors.
type Vector[T constraints.Unsigned] struct {
	Evals []field.Element[T]
}

// ZeroVector returns the transform of the zero polynomial.
func (r *Ring[T]) ZeroVector() Vector[T] {
	return Vector[T]{Evals: make([]field.Element[T], r.dim)}
}

// OneVector returns the transform of the constant polynomial 1. It is all
// ones only for a complete transform.
func (r *Ring[T]) OneVector() Vector[T] {
	return Vector[T]{Evals: append([]field.Element[T](nil), r.one...)}
}

// AddVector returns a + b.
func (r *Ring[T]) AddVector(a, b Vector[T]) Vector[T] {
	return Vector[T]{Evals: r.zip(a.Evals, b.Evals, r.f.Add)}
}

// SubVector returns a - b.
func (r *Ring[T]) SubVector(a, b Vector[T]) Vector[T] {
	return Vector[T]{Evals: r.zip(a.Evals, b.Evals, r.f.Sub)}
}

// NegVector returns -a.
func (r *Ring[T]) NegVector(a Vector[T]) Vector[T] {
	return Vector[T]{Evals: r.apply(a.Evals, r.f.Neg)}
}

// MulVector returns the evaluation-domain product of a and b.
func (r *Ring[T]) MulVector(a, b Vector[T]) Vector[T] {
	out := r.ZeroVector()
	r.mulInto(out.Evals, a.Evals, b.Evals)
	return out
}

// MulVectorAssign sets a to a*b.
func (r *Ring[T]) MulVectorAssign(a *Vector[T], b Vector[T]) {
	r.mulInto(a.Evals, a.Evals, b.Evals)
}

func (r *Ring[T]) mulInto(dst, a, b []field.Element[T]) {
	if r.workers > 1 {
		r.table.MulPointwiseParallel(dst, a, b, r.workers)
		return
	}
	r.table.MulPointwise(dst, a, b)
}

// EqualVector reports whether a and b hold the same values.
func (r *Ring[T]) EqualVector(a, b Vector[T]) bool {
	return r.equal(a.Evals, b.Evals)
}
