package field

import (
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"
)

const q7340033 = 7340033

func zkField(red Reduction) *Field[uint32] {
	return MustNew[uint32](Config{Name: "zkdilithium", Modulus: q7340033, Reduction: red})
}

func goldilocksField() *Field[uint64] {
	return MustNew[uint64](Config{Name: "goldilocks", Modulus: GoldilocksModulus, Reduction: ReduceGoldilocks, Lazy: true})
}

// Test modular inverse with known values from Python
func TestInv(t *testing.T) {
	tests := []struct {
		input, want uint64
	}{
		{1, 1},
		{2, 3670017},
		{3, 2446678},
		{1000, 2224030},
		{q7340033 - 1, 7340032},
		{123456, 2165041},
	}
	for _, red := range []Reduction{ReduceGeneric, ReduceBarrett, ReduceMontgomery} {
		f := zkField(red)
		for _, tc := range tests {
			got, err := f.Invert(f.New(tc.input))
			if err != nil {
				t.Fatalf("%v: Invert(%d): %v", red, tc.input, err)
			}
			if f.Value(got) != tc.want {
				t.Errorf("%v: Invert(%d) = %d, want %d", red, tc.input, f.Value(got), tc.want)
			}
		}
	}
}

// Test that Invert actually computes inverse (catches hardcoded returns)
func TestInvProperty(t *testing.T) {
	f := zkField(ReduceMontgomery)
	testCases := []uint64{1, 2, 3, 7, 13, 1000, 123456, q7340033 - 1, q7340033 - 2, q7340033 / 2}
	for _, a := range testCases {
		aInv, err := f.Invert(f.New(a))
		require.NoError(t, err)
		if product := f.Mul(f.New(a), aInv); !f.Equal(product, f.One()) {
			t.Errorf("Invert(%d) = %v, but product = %v (want 1)", a, aInv, product)
		}
	}
}

// Test that Invert matches Pow(a, Q-2) and PowVartime(a, Q-2)
func TestInvMatchesPow(t *testing.T) {
	f := zkField(ReduceGeneric)
	testCases := []uint64{1, 2, 3, 7, 13, 42, 100, 1000, 12345, 123456, 1000000, q7340033 - 1, q7340033 - 2, q7340033 / 2, q7340033 / 3}
	for _, a := range testCases {
		got, err := f.Invert(f.New(a))
		require.NoError(t, err)
		if want := f.Pow(f.New(a), q7340033-2); !f.Equal(got, want) {
			t.Errorf("Invert(%d) = %v, but Pow(%d, Q-2) = %v", a, got, a, want)
		}
		if want := f.PowVartime(f.New(a), q7340033-2); !f.Equal(got, want) {
			t.Errorf("Invert(%d) = %v, but PowVartime(%d, Q-2) = %v", a, got, a, want)
		}
	}
}

func TestInvZero(t *testing.T) {
	f := zkField(ReduceMontgomery)
	_, err := f.Invert(f.Zero())
	require.ErrorIs(t, err, ErrNotInvertible)

	g := goldilocksField()
	_, err = g.Invert(Element[uint64]{v: GoldilocksModulus})
	require.ErrorIs(t, err, ErrNotInvertible, "a stored q is zero in a lazy field")
}

// Test basic arithmetic
func TestArithmetic(t *testing.T) {
	f := zkField(ReduceMontgomery)
	Q := uint64(q7340033)

	if got := f.Value(f.Add(f.New(Q-1), f.New(1))); got != 0 {
		t.Errorf("Add(Q-1, 1) = %d, want 0", got)
	}
	if got := f.Value(f.Add(f.New(Q-1), f.New(2))); got != 1 {
		t.Errorf("Add(Q-1, 2) = %d, want 1", got)
	}
	if got := f.Value(f.Sub(f.New(0), f.New(1))); got != Q-1 {
		t.Errorf("Sub(0, 1) = %d, want %d", got, Q-1)
	}
	if got := f.Value(f.Sub(f.New(100), f.New(30))); got != 70 {
		t.Errorf("Sub(100, 30) = %d, want 70", got)
	}
	if got := f.Value(f.Mul(f.New(2), f.New(3))); got != 6 {
		t.Errorf("Mul(2, 3) = %d, want 6", got)
	}
	if got := f.Value(f.Neg(f.New(1))); got != Q-1 {
		t.Errorf("Neg(1) = %d, want %d", got, Q-1)
	}
	if got := f.Value(f.Neg(f.Zero())); got != 0 {
		t.Errorf("Neg(0) = %d, want 0", got)
	}
	if got := f.Value(f.FromInt64(-1)); got != Q-1 {
		t.Errorf("FromInt64(-1) = %d, want %d", got, Q-1)
	}
	if got := f.Value(f.Double(f.New(Q - 1))); got != Q-2 {
		t.Errorf("Double(Q-1) = %d, want %d", got, Q-2)
	}
	if got := f.Value(f.Square(f.New(Q - 1))); got != 1 {
		t.Errorf("Square(Q-1) = %d, want 1", got)
	}
}

func TestFromInt64Extremes(t *testing.T) {
	f := zkField(ReduceGeneric)
	for _, x := range []int64{0, 1, -1, q7340033, -q7340033, 1<<62 + 12345, -(1 << 62), -9223372036854775808, 9223372036854775807} {
		want := new(big.Int).Mod(big.NewInt(x), big.NewInt(q7340033)).Uint64()
		require.Equal(t, want, f.Value(f.FromInt64(x)), "FromInt64(%d)", x)
	}

	g := goldilocksField()
	require.Equal(t, GoldilocksModulus-1, g.Value(g.FromInt64(-1)))
	require.Equal(t, GoldilocksModulus-(1<<63), g.Value(g.FromInt64(-9223372036854775808)))
}

// Test the Montgomery constants match the hand-derived ones for Q = 7340033
func TestMontgomeryConstants(t *testing.T) {
	r := newReducer(q7340033, ReduceMontgomery)
	if r.qInvNeg != 7340031 {
		t.Errorf("qInvNeg = %d, want 7340031", r.qInvNeg)
	}
	if r.r2 != 3338324 {
		t.Errorf("R^2 mod Q = %d, want 3338324", r.r2)
	}
	if uint32(q7340033)*r.qInvNeg != ^uint32(0) {
		t.Errorf("Q * qInvNeg != -1 mod 2^32")
	}
}

func TestReductionsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, q := range []uint64{3329, 12289, 202753, 3168257, q7340033, 8380417, 2147483647} {
		generic := newReducer(q, ReduceGeneric)
		barrett := newReducer(q, ReduceBarrett)
		mont := newReducer(q, ReduceMontgomery)

		edges := []uint64{0, 1, 2, q / 2, q - 2, q - 1}
		for _, a := range edges {
			for _, b := range edges {
				want := generic.generic(a, b)
				require.Equal(t, want, barrett.barrett(a, b), "barrett q=%d %d*%d", q, a, b)
				require.Equal(t, want, mont.montgomery(a, b), "montgomery q=%d %d*%d", q, a, b)
			}
		}
		for i := 0; i < 2000; i++ {
			a, b := rng.Uint64N(q), rng.Uint64N(q)
			want := generic.generic(a, b)
			require.Equal(t, want, barrett.barrett(a, b), "barrett q=%d %d*%d", q, a, b)
			require.Equal(t, want, mont.montgomery(a, b), "montgomery q=%d %d*%d", q, a, b)
		}
	}
}

func TestGoldilocksMatchesBigInt(t *testing.T) {
	f := goldilocksField()
	rng := rand.New(rand.NewPCG(3, 5))
	bq := new(big.Int).SetUint64(GoldilocksModulus)

	values := []uint64{0, 1, 2, epsilon, epsilon + 1, 1 << 32, 1 << 63, GoldilocksModulus - 2, GoldilocksModulus - 1}
	for i := 0; i < 500; i++ {
		values = append(values, rng.Uint64N(GoldilocksModulus))
	}
	for i, a := range values {
		b := values[(i*7+3)%len(values)]
		ea, eb := f.New(a), f.New(b)

		want := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		want.Mod(want, bq)
		require.Equal(t, want.Uint64(), f.Value(f.Mul(ea, eb)), "%d * %d", a, b)

		sum := new(big.Int).Add(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		sum.Mod(sum, bq)
		require.Equal(t, sum.Uint64(), f.Value(f.Add(ea, eb)), "%d + %d", a, b)

		diff := new(big.Int).Sub(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
		diff.Mod(diff, bq)
		require.Equal(t, diff.Uint64(), f.Value(f.Sub(ea, eb)), "%d - %d", a, b)
	}
}

func TestLazyEquality(t *testing.T) {
	f := goldilocksField()
	for _, v := range []uint64{0, 1, 5, epsilon - 1} {
		canonical := f.New(v)
		shifted := Element[uint64]{v: v + GoldilocksModulus}
		require.True(t, f.Equal(canonical, shifted), "%d and %d+q", v, v)
		require.Equal(t, v, f.Value(shifted))
		require.Equal(t, v, f.Normalize(shifted).Raw())
		require.Equal(t, f.Lift(canonical), f.Lift(shifted))
	}
	require.False(t, f.Equal(f.New(1), f.New(2)))
	require.True(t, f.IsZero(Element[uint64]{v: GoldilocksModulus}))

	// Arithmetic on a non-canonical input treats it as its residue.
	x := Element[uint64]{v: 7 + GoldilocksModulus}
	require.Equal(t, uint64(14), f.Value(f.Add(x, x)))
	require.Equal(t, uint64(49), f.Value(f.Mul(x, x)))
	require.Equal(t, GoldilocksModulus-7, f.Value(f.Neg(x)))
}

func checkAxioms[T constraints.Unsigned](t *testing.T, f *Field[T], rng *rand.Rand) {
	t.Helper()
	zero, one := f.Zero(), f.One()
	for i := 0; i < 300; i++ {
		a, b, c := f.Random(rng), f.Random(rng), f.Random(rng)

		require.True(t, f.Equal(f.Add(a, b), f.Add(b, a)), "a+b == b+a")
		require.True(t, f.Equal(f.Mul(a, b), f.Mul(b, a)), "a*b == b*a")
		require.True(t, f.Equal(f.Add(f.Add(a, b), c), f.Add(a, f.Add(b, c))), "(a+b)+c == a+(b+c)")
		require.True(t, f.Equal(f.Mul(f.Mul(a, b), c), f.Mul(a, f.Mul(b, c))), "(ab)c == a(bc)")
		require.True(t, f.Equal(f.Mul(a, f.Add(b, c)), f.Add(f.Mul(a, b), f.Mul(a, c))), "a(b+c) == ab+ac")
		require.True(t, f.Equal(f.Add(a, zero), a), "a+0 == a")
		require.True(t, f.Equal(f.Mul(a, one), a), "a*1 == a")
		require.True(t, f.Equal(f.Add(a, f.Neg(a)), zero), "a-a == 0")
		require.True(t, f.Equal(f.Sub(a, b), f.Add(a, f.Neg(b))), "a-b == a+(-b)")
		require.True(t, f.Equal(f.Double(a), f.Add(a, a)), "2a == a+a")
		require.True(t, f.Equal(f.Square(a), f.Mul(a, a)), "a^2 == a*a")

		if !f.IsZero(a) {
			inv, err := f.Invert(a)
			require.NoError(t, err)
			require.True(t, f.Equal(f.Mul(a, inv), one), "a * a^-1 == 1")
		}
	}
	_, err := f.Invert(zero)
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestFieldAxioms(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("F3329/uint16/barrett", func(t *testing.T) {
		checkAxioms(t, MustNew[uint16](Config{Name: "3329", Modulus: 3329, Reduction: ReduceBarrett}), rng)
	})
	t.Run("F12289/uint16/generic", func(t *testing.T) {
		checkAxioms(t, MustNew[uint16](Config{Name: "12289", Modulus: 12289}), rng)
	})
	t.Run("F202753/uint32/generic", func(t *testing.T) {
		checkAxioms(t, MustNew[uint32](Config{Name: "202753", Modulus: 202753}), rng)
	})
	t.Run("F3168257/uint32/barrett", func(t *testing.T) {
		checkAxioms(t, MustNew[uint32](Config{Name: "3168257", Modulus: 3168257, Reduction: ReduceBarrett}), rng)
	})
	t.Run("F8380417/uint32/montgomery", func(t *testing.T) {
		checkAxioms(t, MustNew[uint32](Config{Name: "8380417", Modulus: 8380417, Reduction: ReduceMontgomery}), rng)
	})
	t.Run("F7340033/uint32/montgomery", func(t *testing.T) {
		checkAxioms(t, zkField(ReduceMontgomery), rng)
	})
	t.Run("Goldilocks/uint64/lazy", func(t *testing.T) {
		checkAxioms(t, goldilocksField(), rng)
	})
	t.Run("F2/uint8", func(t *testing.T) {
		checkAxioms(t, MustNew[uint8](Config{Name: "2", Modulus: 2}), rng)
	})
}

func TestNewPanicsOutOfRange(t *testing.T) {
	f := MustNew[uint16](Config{Name: "3329", Modulus: 3329})
	require.NotPanics(t, func() { f.New(3328) })
	require.Panics(t, func() { f.New(3329) })
	require.Panics(t, func() { f.New(1 << 40) })
}

func TestLiftNormalize(t *testing.T) {
	f := zkField(ReduceMontgomery)
	half := int64(q7340033 / 2)

	require.Equal(t, int64(0), f.Lift(f.Zero()))
	require.Equal(t, int64(-1), f.Lift(f.New(q7340033-1)))
	require.Equal(t, half, f.Lift(f.New(uint64(half))))
	require.Equal(t, -half, f.Lift(f.New(uint64(half)+1)))

	rng := rand.New(rand.NewPCG(9, 9))
	for i := 0; i < 1000; i++ {
		x := int64(rng.Uint64())
		lifted := f.Lift(f.Normalize(f.FromInt64(x)))
		require.True(t, lifted > -half-1 && lifted <= half, "lift out of balanced range: %d", lifted)

		dev := new(big.Int).Sub(big.NewInt(lifted), big.NewInt(x))
		require.Zero(t, new(big.Int).Mod(dev, big.NewInt(q7340033)).Sign(), "lift(normalize(%d)) = %d", x, lifted)
	}

	g := goldilocksField()
	require.Equal(t, int64(-1), g.Lift(g.New(GoldilocksModulus-1)))
	require.Equal(t, int64(GoldilocksModulus/2), g.Lift(g.New(GoldilocksModulus/2)))
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"prime", Config{Modulus: 3329}, true},
		{"composite", Config{Modulus: 3330}, false},
		{"one", Config{Modulus: 1}, false},
		{"too wide", Config{Modulus: 65537}, false},
		{"narrow product", Config{Modulus: 3329, ProductBits: 24}, false},
		{"wide product", Config{Modulus: 3329, ProductBits: 64}, true},
		{"product over 128", Config{Modulus: 3329, ProductBits: 256}, false},
		{"goldilocks on small q", Config{Modulus: 3329, Reduction: ReduceGoldilocks, Lazy: true}, false},
		{"unknown reduction", Config{Modulus: 3329, Reduction: Reduction(42)}, false},
	}
	for _, tc := range tests {
		_, err := New[uint16](tc.cfg)
		if tc.ok {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}

	_, err := New[uint64](Config{Modulus: GoldilocksModulus, Reduction: ReduceGoldilocks})
	require.Error(t, err, "goldilocks without Lazy")
	_, err = New[uint64](Config{Modulus: 4294967311, Reduction: ReduceBarrett})
	require.Error(t, err, "barrett above 2^32")
	_, err = New[uint32](Config{Modulus: 3221225473, Reduction: ReduceMontgomery})
	require.Error(t, err, "montgomery above 2^31")

	require.Panics(t, func() { MustNew[uint16](Config{Modulus: 3330}) })
}

func TestParseReduction(t *testing.T) {
	for _, r := range []Reduction{ReduceGeneric, ReduceBarrett, ReduceMontgomery, ReduceGoldilocks} {
		got, err := ParseReduction(r.String())
		require.NoError(t, err)
		require.Equal(t, r, got)
	}
	got, err := ParseReduction("")
	require.NoError(t, err)
	require.Equal(t, ReduceGeneric, got)
	_, err = ParseReduction("karatsuba")
	require.Error(t, err)
}

func TestWidths(t *testing.T) {
	f16 := MustNew[uint16](Config{Modulus: 3329})
	require.Equal(t, 16, f16.PrimitiveBits())
	require.Equal(t, 32, f16.ProductBits())
	require.Equal(t, 2, f16.Bytes())
	require.Equal(t, 12, f16.Bits())

	g := goldilocksField()
	require.Equal(t, 64, g.PrimitiveBits())
	require.Equal(t, 128, g.ProductBits())
	require.Equal(t, 8, g.Bytes())
	require.True(t, g.Lazy())
}

func TestProductBitsDoesNotChangeProducts(t *testing.T) {
	narrow := MustNew[uint16](Config{Modulus: 3329, Reduction: ReduceBarrett})
	wide := MustNew[uint16](Config{Modulus: 3329, ProductBits: 128, Reduction: ReduceBarrett})
	require.Equal(t, 128, wide.ProductBits())
	for a := uint64(0); a < 3329; a += 37 {
		for b := uint64(1); b < 3329; b += 41 {
			require.Equal(t, narrow.Value(narrow.Mul(narrow.New(a), narrow.New(b))), wide.Value(wide.Mul(wide.New(a), wide.New(b))))
		}
	}
}

func TestSelectAndCtEqual(t *testing.T) {
	f := zkField(ReduceMontgomery)
	a, b := f.New(11), f.New(22)
	require.Equal(t, a, f.Select(1, a, b))
	require.Equal(t, b, f.Select(0, a, b))
	require.Equal(t, uint64(1), f.CtEqual(a, f.New(11)))
	require.Equal(t, uint64(0), f.CtEqual(a, b))
}

func TestSumProduct(t *testing.T) {
	f := zkField(ReduceMontgomery)
	xs := []Element[uint32]{f.New(1), f.New(2), f.New(3), f.New(4)}
	require.Equal(t, uint64(10), f.Value(f.Sum(xs...)))
	require.Equal(t, uint64(24), f.Value(f.Product(xs...)))
	require.True(t, f.Equal(f.Sum(), f.Zero()))
	require.True(t, f.Equal(f.Product(), f.One()))
}
