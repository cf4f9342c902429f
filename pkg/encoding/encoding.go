// Package encoding provides byte serialization for field elements.
//
// Elements are written at the primitive width of their field, little-endian,
// always in canonical form.
package encoding

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
)

var (
	// ErrLength is returned when an input is not a whole number of elements.
	ErrLength = errors.New("encoding: invalid length")
	// ErrOutOfRange is returned when a decoded value is not a canonical residue.
	ErrOutOfRange = errors.New("encoding: value out of range")
)

// ElementSize returns the number of bytes per encoded element.
func ElementSize[T constraints.Unsigned](f *field.Field[T]) int {
	return f.Bytes()
}

// PackElement encodes a single element.
func PackElement[T constraints.Unsigned](f *field.Field[T], x field.Element[T]) []byte {
	return AppendElements(make([]byte, 0, f.Bytes()), f, []field.Element[T]{x})
}

// UnpackElement decodes a single element.
func UnpackElement[T constraints.Unsigned](f *field.Field[T], b []byte) (field.Element[T], error) {
	if len(b) != f.Bytes() {
		return field.Element[T]{}, fmt.Errorf("%w: %d bytes, want %d", ErrLength, len(b), f.Bytes())
	}
	v := readLE(b)
	if v >= f.Modulus() {
		return field.Element[T]{}, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, v, f.Modulus())
	}
	return f.New(v), nil
}

// AppendElements appends the encoding of xs to dst and returns the extended
// buffer.
func AppendElements[T constraints.Unsigned](dst []byte, f *field.Field[T], xs []field.Element[T]) []byte {
	w := f.Bytes()
	for _, x := range xs {
		v := f.Value(x)
		for j := 0; j < w; j++ {
			dst = append(dst, byte(v>>(8*j)))
		}
	}
	return dst
}

// PackElements encodes xs, ElementSize(f) bytes per element.
func PackElements[T constraints.Unsigned](f *field.Field[T], xs []field.Element[T]) []byte {
	return AppendElements(make([]byte, 0, len(xs)*f.Bytes()), f, xs)
}

// UnpackElements decodes b. Every value must be below the modulus.
func UnpackElements[T constraints.Unsigned](f *field.Field[T], b []byte) ([]field.Element[T], error) {
	w := f.Bytes()
	if len(b)%w != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrLength, len(b), w)
	}
	out := make([]field.Element[T], len(b)/w)
	for i := range out {
		v := readLE(b[i*w : (i+1)*w])
		if v >= f.Modulus() {
			return nil, fmt.Errorf("%w: element %d is %d, modulus %d", ErrOutOfRange, i, v, f.Modulus())
		}
		out[i] = f.New(v)
	}
	return out, nil
}

func readLE(b []byte) uint64 {
	var v uint64
	for j := len(b) - 1; j >= 0; j-- {
		v = v<<8 | uint64(b[j])
	}
	return v
}

// BytesToElements maps arbitrary bytes to field elements.
// Adds 1 to each byte and packs pairs as b0 + 257*b1, which distinguishes
// b'h' from b'h\0'. The map is injective when q > 257^2.
func BytesToElements[T constraints.Unsigned](f *field.Field[T], bs []byte) []field.Element[T] {
	out := make([]field.Element[T], (len(bs)+1)/2)
	for i := range out {
		lo := uint64(bs[2*i]) + 1
		var hi uint64
		if 2*i+1 < len(bs) {
			hi = uint64(bs[2*i+1]) + 1
		}
		out[i] = f.Reduce(lo + 257*hi)
	}
	return out
}

// CenteredBits returns the bit width PackCentered uses for bound.
func CenteredBits(bound uint64) int {
	return bits.Len64(2 * bound)
}

// PackCentered packs elements whose balanced representative lies in
// [-bound, bound]. Each is stored as bound - x in CenteredBits(bound) bits,
// least significant bit first.
func PackCentered[T constraints.Unsigned](f *field.Field[T], xs []field.Element[T], bound uint64) ([]byte, error) {
	if bound >= f.Modulus()/2 {
		return nil, fmt.Errorf("encoding: bound %d is not below q/2", bound)
	}
	w := CenteredBits(bound)
	out := make([]byte, (len(xs)*w+7)/8)

	pos := 0
	for i, x := range xs {
		c := f.Lift(x)
		if c < -int64(bound) || c > int64(bound) {
			return nil, fmt.Errorf("%w: element %d is %d, bound %d", ErrOutOfRange, i, c, bound)
		}
		v := uint64(int64(bound) - c)
		for j := 0; j < w; j++ {
			out[pos>>3] |= byte((v>>j)&1) << (pos & 7)
			pos++
		}
	}
	return out, nil
}

// UnpackCentered reverses PackCentered for n elements.
func UnpackCentered[T constraints.Unsigned](f *field.Field[T], b []byte, n int, bound uint64) ([]field.Element[T], error) {
	if bound >= f.Modulus()/2 {
		return nil, fmt.Errorf("encoding: bound %d is not below q/2", bound)
	}
	w := CenteredBits(bound)
	if want := (n*w + 7) / 8; len(b) != want {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrLength, len(b), want)
	}

	out := make([]field.Element[T], n)
	pos := 0
	for i := range out {
		var v uint64
		for j := 0; j < w; j++ {
			v |= uint64(b[pos>>3]>>(pos&7)&1) << j
			pos++
		}
		if v > 2*bound {
			return nil, fmt.Errorf("%w: element %d encodes %d, bound %d", ErrOutOfRange, i, v, 2*bound)
		}
		out[i] = f.FromInt64(int64(bound) - int64(v))
	}
	return out, nil
}
