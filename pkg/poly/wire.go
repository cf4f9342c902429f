package poly

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrEnvelope is returned when a wire envelope is malformed or was produced
// for another ring or domain.
var ErrEnvelope = errors.New("poly: invalid envelope")

// Domain tags a wire envelope.
type Domain uint8

const (
	// Coefficients marks a Poly.
	Coefficients Domain = iota
	// Evaluations marks a Vector.
	Evaluations
)

func (d Domain) String() string {
	switch d {
	case Coefficients:
		return "coefficients"
	case Evaluations:
		return "evaluations"
	}
	return fmt.Sprintf("Domain(%d)", uint8(d))
}

// envelope is encoded as the CBOR array [ring, domain, data].
type envelope struct {
	_      struct{} `cbor:",toarray"`
	Ring   string
	Domain Domain
	Data   []byte
}

func (r *Ring[T]) open(b []byte, d Domain) ([]byte, error) {
	var env envelope
	if err := cbor.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	if env.Ring != r.name {
		return nil, fmt.Errorf("%w: ring %q, want %q", ErrEnvelope, env.Ring, r.name)
	}
	if env.Domain != d {
		return nil, fmt.Errorf("%w: domain %v, want %v", ErrEnvelope, env.Domain, d)
	}
	return env.Data, nil
}

// MarshalPoly wraps EncodePoly(p) in a CBOR envelope naming the ring.
func (r *Ring[T]) MarshalPoly(p Poly[T]) ([]byte, error) {
	return cbor.Marshal(envelope{Ring: r.name, Domain: Coefficients, Data: r.EncodePoly(p)})
}

// UnmarshalPoly reverses MarshalPoly.
func (r *Ring[T]) UnmarshalPoly(b []byte) (Poly[T], error) {
	data, err := r.open(b, Coefficients)
	if err != nil {
		return Poly[T]{}, err
	}
	return r.DecodePoly(data)
}

// MarshalVector wraps EncodeVector(v) in a CBOR envelope naming the ring.
func (r *Ring[T]) MarshalVector(v Vector[T]) ([]byte, error) {
	return cbor.Marshal(envelope{Ring: r.name, Domain: Evaluations, Data: r.EncodeVector(v)})
}

// UnmarshalVector reverses MarshalVector.
func (r *Ring[T]) UnmarshalVector(b []byte) (Vector[T], error) {
	data, err := r.open(b, Evaluations)
	if err != nil {
		return Vector[T]{}, err
	}
	return r.DecodeVector(data)
}
