package sampling

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/poly"
	"lattice-algebra/pkg/prng"
)

// UniformXOF samples uniform coefficients by rejection from a byte stream.
// Each candidate is ceil(bitlen(q)/8) little-endian bytes masked to bitlen(q)
// bits and accepted when below q.
func UniformXOF[T constraints.Unsigned](r *poly.Ring[T], stream *prng.Stream) poly.Poly[T] {
	f := r.Field()
	q := f.Modulus()
	nb := (f.Bits() + 7) / 8
	mask := uint64(1)<<f.Bits() - 1
	if f.Bits() == 64 {
		mask = ^uint64(0)
	}

	p := r.Zero()
	for i := 0; i < len(p.Coeffs); {
		b := stream.Next(nb)
		var d uint64
		for j := nb - 1; j >= 0; j-- {
			d = d<<8 | uint64(b[j])
		}
		d &= mask
		if d < q {
			p.Coeffs[i] = f.New(d)
			i++
		}
	}
	return p
}

// BoundedXOF samples coefficients in [-eta, eta] from the nibbles of a byte
// stream, low nibble first. eta must be 2 or 4.
func BoundedXOF[T constraints.Unsigned](r *poly.Ring[T], stream *prng.Stream, eta int) poly.Poly[T] {
	var accept byte
	switch eta {
	case 2:
		accept = 15
	case 4:
		accept = 9
	default:
		panic(fmt.Sprintf("sampling: unsupported eta %d", eta))
	}
	f := r.Field()
	p := r.Zero()
	i := 0
	for i < len(p.Coeffs) {
		b := stream.Next(1)[0]
		for _, d := range [2]byte{b & 15, b >> 4} {
			if d >= accept || i >= len(p.Coeffs) {
				continue
			}
			if eta == 2 {
				d %= 5
			}
			p.Coeffs[i] = f.FromInt64(int64(eta) - int64(d))
			i++
		}
	}
	return p
}
