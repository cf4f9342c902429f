package params

import (
	"sync"

	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
	"lattice-algebra/pkg/poly"
)

var (
	kyberSet       = Set{Name: "kyber-3329-256", Modulus: 3329, Dim: 256, BaseDegree: 2, Root: 17, Reduction: "barrett"}
	falconSet      = Set{Name: "falcon-12289-512", Modulus: 12289, Dim: 512, BaseDegree: 1, Reduction: "barrett"}
	dilithiumSet   = Set{Name: "dilithium-8380417-256", Modulus: 8380417, Dim: 256, BaseDegree: 1, Root: 1753, Reduction: "montgomery"}
	zkDilithiumSet = Set{Name: "zkdilithium-7340033-256", Modulus: 7340033, Dim: 256, BaseDegree: 1, Root: 3483618, Reduction: "montgomery"}
	hvcSet         = Set{Name: "hvc-202753-512", Modulus: 202753, Dim: 512, BaseDegree: 1, Reduction: "generic"}
	sisSet         = Set{Name: "sis-3168257-512", Modulus: 3168257, Dim: 512, BaseDegree: 1, Reduction: "barrett"}
	goldilocksSet  = Set{Name: "goldilocks-512", Modulus: Modulus(field.GoldilocksModulus), Dim: 512, BaseDegree: 1, Reduction: "goldilocks", Lazy: true}
)

func mustRing[T constraints.Unsigned](s Set) func() *poly.Ring[T] {
	return func() *poly.Ring[T] {
		r, err := NewRing[T](s)
		if err != nil {
			panic(err)
		}
		return r
	}
}

// The predefined rings are built on first use and shared.
var (
	Kyber       = sync.OnceValue(mustRing[uint16](kyberSet))
	Falcon      = sync.OnceValue(mustRing[uint16](falconSet))
	Dilithium   = sync.OnceValue(mustRing[uint32](dilithiumSet))
	ZkDilithium = sync.OnceValue(mustRing[uint32](zkDilithiumSet))
	HVC         = sync.OnceValue(mustRing[uint32](hvcSet))
	SIS         = sync.OnceValue(mustRing[uint32](sisSet))
	Goldilocks  = sync.OnceValue(mustRing[uint64](goldilocksSet))
)

// Catalog returns the predefined sets. The slice is a fresh copy.
func Catalog() []Set {
	return []Set{kyberSet, falconSet, dilithiumSet, zkDilithiumSet, hvcSet, sisSet, goldilocksSet}
}

// Lookup returns the predefined set called name.
func Lookup(name string) (Set, bool) {
	f := File{Ring: Catalog()}
	return f.Lookup(name)
}
