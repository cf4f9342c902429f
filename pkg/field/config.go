package field

import (
	"fmt"
	"math/big"
	"math/bits"
	"strings"
)

// Reduction selects the algorithm used to reduce a double-width product.
type Reduction int

const (
	// ReduceGeneric reduces the 128-bit product with a hardware remainder.
	ReduceGeneric Reduction = iota
	// ReduceBarrett uses a precomputed floor(2^64/q); requires q < 2^32.
	ReduceBarrett
	// ReduceMontgomery uses two Montgomery steps with R = 2^32 so the
	// result is the plain product; requires odd q < 2^31.
	ReduceMontgomery
	// ReduceGoldilocks uses the q = 2^64 - 2^32 + 1 folding trick and
	// leaves results in [0, 2^64). Requires Lazy.
	ReduceGoldilocks
)

var reductionNames = [...]string{"generic", "barrett", "montgomery", "goldilocks"}

func (r Reduction) String() string {
	if r < 0 || int(r) >= len(reductionNames) {
		return fmt.Sprintf("Reduction(%d)", int(r))
	}
	return reductionNames[r]
}

// ParseReduction maps a reduction name back to its value. The empty string
// means ReduceGeneric.
func ParseReduction(s string) (Reduction, error) {
	if s == "" {
		return ReduceGeneric, nil
	}
	for i, name := range reductionNames {
		if strings.EqualFold(s, name) {
			return Reduction(i), nil
		}
	}
	return 0, fmt.Errorf("field: unknown reduction %q", s)
}

// GoldilocksModulus is 2^64 - 2^32 + 1.
const GoldilocksModulus uint64 = 0xffffffff00000001

// Config describes a prime modulus. The primitive storage width is the type
// parameter of the Field built from it.
type Config struct {
	// Name labels the configuration in errors and wire envelopes.
	Name string

	// Modulus is the prime q.
	Modulus uint64

	// ProductBits is the width reserved for the product of two elements.
	// Zero means twice the primitive width. It is validated and reported
	// only: every product is formed in 128 bits with bits.Mul64, so the
	// value never changes the result.
	ProductBits int

	// Reduction picks the product reduction hook.
	Reduction Reduction

	// Lazy allows elements to be stored non-canonically, up to one extra
	// multiple of the modulus.
	Lazy bool
}

func (c Config) validate(primitiveBits int) (productBits int, err error) {
	q := c.Modulus
	if q < 2 {
		return 0, fmt.Errorf("field: %s: modulus %d is too small", c.Name, q)
	}
	if primitiveBits < 64 && q>>primitiveBits != 0 {
		return 0, fmt.Errorf("field: %s: modulus %d does not fit in %d bits", c.Name, q, primitiveBits)
	}
	if !new(big.Int).SetUint64(q).ProbablyPrime(0) {
		return 0, fmt.Errorf("field: %s: modulus %d is not prime", c.Name, q)
	}

	productBits = c.ProductBits
	if productBits == 0 {
		productBits = 2 * primitiveBits
	}
	if productBits > 128 {
		return 0, fmt.Errorf("field: %s: product width %d exceeds 128 bits", c.Name, productBits)
	}
	if productBits < 2*primitiveBits || productBits < 2*bits.Len64(q) {
		return 0, fmt.Errorf("field: %s: product width %d cannot hold a product of two %d-bit elements", c.Name, productBits, primitiveBits)
	}

	switch c.Reduction {
	case ReduceGeneric:
	case ReduceBarrett:
		if q>>32 != 0 {
			return 0, fmt.Errorf("field: %s: barrett reduction needs q < 2^32", c.Name)
		}
	case ReduceMontgomery:
		if q&1 == 0 || q>>31 != 0 {
			return 0, fmt.Errorf("field: %s: montgomery reduction needs odd q < 2^31", c.Name)
		}
	case ReduceGoldilocks:
		if q != GoldilocksModulus {
			return 0, fmt.Errorf("field: %s: goldilocks reduction needs q = 2^64 - 2^32 + 1", c.Name)
		}
		if !c.Lazy {
			return 0, fmt.Errorf("field: %s: goldilocks reduction produces non-canonical values and needs Lazy", c.Name)
		}
	default:
		return 0, fmt.Errorf("field: %s: unknown reduction %v", c.Name, c.Reduction)
	}
	return productBits, nil
}
