package ntt

import (
	"golang.org/x/sync/errgroup"

	"lattice-algebra/pkg/field"
)

// split runs fn over [0, n) cut into at most workers contiguous ranges and
// waits for all of them.
func split(n, workers int, fn func(lo, hi int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	// Butterflies never fail.
	_ = g.Wait()
}

// ForwardParallel is Forward with each layer's butterflies spread over up to
// workers goroutines. Layers run one after another.
func (t *Table[T]) ForwardParallel(a []field.Element[T], workers int) {
	t.check(a)
	half := t.dim / 2
	for l := half; l >= t.k; l /= 2 {
		split(half, workers, func(lo, hi int) {
			t.butterfly(a, l, lo, hi)
		})
	}
}

// InverseParallel is the parallel counterpart of Inverse.
func (t *Table[T]) InverseParallel(a []field.Element[T], workers int) {
	t.check(a)
	half := t.dim / 2
	for l := t.k; l <= half; l *= 2 {
		split(half, workers, func(lo, hi int) {
			t.invButterfly(a, l, lo, hi)
		})
	}
	split(t.dim, workers, func(lo, hi int) {
		t.scale(a, lo, hi)
	})
}

// MulPointwiseParallel is the parallel counterpart of MulPointwise.
func (t *Table[T]) MulPointwiseParallel(dst, a, b []field.Element[T], workers int) {
	t.check(dst)
	t.check(a)
	t.check(b)
	split(t.m, workers, func(lo, hi int) {
		t.mulBlocks(dst, a, b, lo, hi)
	})
}
