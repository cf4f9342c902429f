// Package poly provides polynomial arithmetic in Z_q[X]/(X^n + 1).
//
// A Ring fixes the field, the degree and the NTT tables. Polynomials (the
// coefficient domain) and Vectors (the evaluation domain) are plain values
// whose operations live on the Ring; every operation returns a fresh value
// unless its name ends in Assign.
package poly

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
	"lattice-algebra/pkg/ntt"
)

// Config describes the polynomial side of a parameter set.
type Config struct {
	// Name labels the ring in errors and wire envelopes.
	Name string

	// Dim is the number of coefficients, a power of two.
	Dim int

	// BaseDegree is the block size of the evaluation domain. Zero means 1,
	// a complete transform. Use 2 when q-1 is not divisible by 2*Dim.
	BaseDegree int

	// Root is a root of unity of order 2*Dim/BaseDegree. Zero derives one.
	Root uint64

	// Workers splits transforms and pointwise products over this many
	// goroutines. Zero or one runs them on the calling goroutine.
	Workers int
}

// Ring is immutable after construction and safe for concurrent use.
type Ring[T constraints.Unsigned] struct {
	name    string
	f       *field.Field[T]
	dim     int
	workers int
	table   *ntt.Table[T]
	one     []field.Element[T] // NTT(1)
}

// NewRing builds the ring of polynomials over f described by cfg.
func NewRing[T constraints.Unsigned](f *field.Field[T], cfg Config) (*Ring[T], error) {
	k := cfg.BaseDegree
	if k == 0 {
		k = 1
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("poly: %s: negative worker count %d", cfg.Name, cfg.Workers)
	}
	table, err := ntt.NewTable(f, cfg.Dim, k, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("poly: %s: %w", cfg.Name, err)
	}

	r := &Ring[T]{
		name:    cfg.Name,
		f:       f,
		dim:     cfg.Dim,
		workers: cfg.Workers,
		table:   table,
	}
	r.one = r.NTT(r.One()).Evals
	return r, nil
}

// MustNewRing is NewRing for parameter sets known to be valid. A field that
// lacks the required root of unity is a configuration error and panics.
func MustNewRing[T constraints.Unsigned](f *field.Field[T], cfg Config) *Ring[T] {
	r, err := NewRing(f, cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the ring label.
func (r *Ring[T]) Name() string { return r.name }

// Field returns the coefficient field.
func (r *Ring[T]) Field() *field.Field[T] { return r.f }

// Dim returns the number of coefficients.
func (r *Ring[T]) Dim() int { return r.dim }

// Table returns the NTT tables.
func (r *Ring[T]) Table() *ntt.Table[T] { return r.table }

// Workers returns the configured parallelism.
func (r *Ring[T]) Workers() int { return r.workers }

func (r *Ring[T]) check(cs []field.Element[T]) {
	if len(cs) != r.dim {
		panic(fmt.Sprintf("poly: %s: length %d, want %d", r.name, len(cs), r.dim))
	}
}

// NTT returns the evaluation-domain form of p.
func (r *Ring[T]) NTT(p Poly[T]) Vector[T] {
	r.check(p.Coeffs)
	evals := make([]field.Element[T], r.dim)
	copy(evals, p.Coeffs)
	if r.workers > 1 {
		r.table.ForwardParallel(evals, r.workers)
	} else {
		r.table.Forward(evals)
	}
	return Vector[T]{Evals: evals}
}

// INTT returns the coefficient-domain form of v.
func (r *Ring[T]) INTT(v Vector[T]) Poly[T] {
	r.check(v.Evals)
	cs := make([]field.Element[T], r.dim)
	copy(cs, v.Evals)
	if r.workers > 1 {
		r.table.InverseParallel(cs, r.workers)
	} else {
		r.table.Inverse(cs)
	}
	return Poly[T]{Coeffs: cs}
}

// Mul returns a*b mod X^n + 1.
func (r *Ring[T]) Mul(a, b Poly[T]) Poly[T] {
	x := r.NTT(a)
	r.MulVectorAssign(&x, r.NTT(b))
	return r.INTT(x)
}

// Product returns the product of ps; the empty product is One.
func (r *Ring[T]) Product(ps ...Poly[T]) Poly[T] {
	acc := r.OneVector()
	for _, p := range ps {
		r.MulVectorAssign(&acc, r.NTT(p))
	}
	return r.INTT(acc)
}
