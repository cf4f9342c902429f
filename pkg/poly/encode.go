package poly

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"lattice-algebra/pkg/encoding"
	"lattice-algebra/pkg/field"
)

// DigestSize is the length of Digest and DigestVector outputs.
const DigestSize = 32

// EncodePoly writes coefficients 0..Dim-1, each as its canonical value in
// ElementSize little-endian bytes.
func (r *Ring[T]) EncodePoly(p Poly[T]) []byte {
	r.check(p.Coeffs)
	return encoding.PackElements(r.f, p.Coeffs)
}

// DecodePoly parses the output of EncodePoly.
func (r *Ring[T]) DecodePoly(b []byte) (Poly[T], error) {
	cs, err := r.decode(b)
	if err != nil {
		return Poly[T]{}, err
	}
	return Poly[T]{Coeffs: cs}, nil
}

// EncodeVector writes the evaluation-domain values in stored order, with the
// same layout as EncodePoly.
func (r *Ring[T]) EncodeVector(v Vector[T]) []byte {
	r.check(v.Evals)
	return encoding.PackElements(r.f, v.Evals)
}

// DecodeVector parses the output of EncodeVector.
func (r *Ring[T]) DecodeVector(b []byte) (Vector[T], error) {
	es, err := r.decode(b)
	if err != nil {
		return Vector[T]{}, err
	}
	return Vector[T]{Evals: es}, nil
}

func (r *Ring[T]) decode(b []byte) ([]field.Element[T], error) {
	if want := r.dim * r.f.Bytes(); len(b) != want {
		return nil, fmt.Errorf("poly: %s: %w: %d bytes, want %d", r.name, encoding.ErrLength, len(b), want)
	}
	es, err := encoding.UnpackElements(r.f, b)
	if err != nil {
		return nil, fmt.Errorf("poly: %s: %w", r.name, err)
	}
	return es, nil
}

// Digest returns SHA3-256 of EncodePoly(p).
func (r *Ring[T]) Digest(p Poly[T]) [DigestSize]byte {
	return sha3.Sum256(r.EncodePoly(p))
}

// DigestVector returns SHA3-256 of EncodeVector(v).
func (r *Ring[T]) DigestVector(v Vector[T]) [DigestSize]byte {
	return sha3.Sum256(r.EncodeVector(v))
}
