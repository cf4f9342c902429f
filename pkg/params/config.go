// Package params names concrete parameter sets and loads custom ones from
// TOML.
package params

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/constraints"

	"lattice-algebra/pkg/field"
	"lattice-algebra/pkg/poly"
)

// Modulus is a prime that may not fit in a TOML integer. It decodes from an
// integer or a string and encodes values above 2^63-1 as hex strings.
type Modulus uint64

// UnmarshalTOML implements toml.Unmarshaler.
func (m *Modulus) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("params: negative modulus %d", v)
		}
		*m = Modulus(v)
	case string:
		x, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("params: modulus %q: %w", v, err)
		}
		*m = Modulus(x)
	default:
		return fmt.Errorf("params: modulus has type %T", v)
	}
	return nil
}

// MarshalTOML implements toml.Marshaler.
func (m Modulus) MarshalTOML() ([]byte, error) {
	if m > math.MaxInt64 {
		return strconv.AppendQuote(nil, fmt.Sprintf("%#x", uint64(m))), nil
	}
	return strconv.AppendUint(nil, uint64(m), 10), nil
}

// Set is one parameter set: a field and the ring over it.
type Set struct {
	// Name labels the field and the ring.
	Name string

	// Modulus is the prime q.
	Modulus Modulus

	// Dim is the ring degree, a power of two.
	Dim int

	// BaseDegree is the NTT block size. Zero means 1.
	BaseDegree int `toml:",omitempty"`

	// Root is the NTT root of unity. Zero derives one.
	Root uint64 `toml:",omitempty"`

	// Reduction names the reduction hook. Empty means generic.
	Reduction string `toml:",omitempty"`

	// Lazy allows non-canonical element storage.
	Lazy bool `toml:",omitempty"`

	// Workers bounds the goroutines used per transform.
	Workers int `toml:",omitempty"`
}

// FixupAndValidate applies defaults and checks the set without building
// its tables.
func (s *Set) FixupAndValidate() error {
	if s.Name == "" {
		return errors.New("params: ring without a Name")
	}
	if s.Modulus < 2 {
		return fmt.Errorf("params: %s: Modulus %d is too small", s.Name, s.Modulus)
	}
	if s.Dim < 2 || bits.OnesCount(uint(s.Dim)) != 1 {
		return fmt.Errorf("params: %s: Dim %d is not a power of two", s.Name, s.Dim)
	}
	if s.BaseDegree == 0 {
		s.BaseDegree = 1
	}
	if s.BaseDegree < 0 || s.Dim%s.BaseDegree != 0 {
		return fmt.Errorf("params: %s: BaseDegree %d does not divide Dim %d", s.Name, s.BaseDegree, s.Dim)
	}
	if s.Root >= uint64(s.Modulus) {
		return fmt.Errorf("params: %s: Root %d is not reduced", s.Name, s.Root)
	}
	red, err := field.ParseReduction(s.Reduction)
	if err != nil {
		return fmt.Errorf("params: %s: %w", s.Name, err)
	}
	s.Reduction = red.String()
	if s.Workers < 0 {
		return fmt.Errorf("params: %s: Workers %d is negative", s.Name, s.Workers)
	}
	return nil
}

func (s *Set) fieldConfig() (field.Config, error) {
	red, err := field.ParseReduction(s.Reduction)
	if err != nil {
		return field.Config{}, err
	}
	return field.Config{
		Name:      s.Name,
		Modulus:   uint64(s.Modulus),
		Reduction: red,
		Lazy:      s.Lazy,
	}, nil
}

func (s *Set) ringConfig() poly.Config {
	return poly.Config{
		Name:       s.Name,
		Dim:        s.Dim,
		BaseDegree: s.BaseDegree,
		Root:       s.Root,
		Workers:    s.Workers,
	}
}

// NewRing builds the ring described by s with elements stored in T.
func NewRing[T constraints.Unsigned](s Set) (*poly.Ring[T], error) {
	cfg, err := s.fieldConfig()
	if err != nil {
		return nil, fmt.Errorf("params: %s: %w", s.Name, err)
	}
	f, err := field.New[T](cfg)
	if err != nil {
		return nil, err
	}
	return poly.NewRing(f, s.ringConfig())
}

// Ring builds the ring described by s with 64-bit element storage.
func (s *Set) Ring() (*poly.Ring[uint64], error) {
	return NewRing[uint64](*s)
}

// File is the TOML document: a list of [[Ring]] tables.
type File struct {
	Ring []Set
}

// FixupAndValidate checks every set and rejects duplicate names.
func (f *File) FixupAndValidate() error {
	if len(f.Ring) == 0 {
		return errors.New("params: no Ring tables were present")
	}
	seen := make(map[string]bool, len(f.Ring))
	for i := range f.Ring {
		s := &f.Ring[i]
		if err := s.FixupAndValidate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("params: duplicate ring %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Lookup returns the set called name.
func (f *File) Lookup(name string) (Set, bool) {
	for _, s := range f.Ring {
		if s.Name == name {
			return s, true
		}
	}
	return Set{}, false
}

// Load parses and validates the provided buffer b as a parameter file body.
func Load(b []byte) (*File, error) {
	f := new(File)
	md, err := toml.Decode(string(b), f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("params: unknown keys %v", undecoded)
	}
	if err := f.FixupAndValidate(); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadFile loads, parses and validates the provided file.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Marshal encodes f as TOML.
func (f *File) Marshal() ([]byte, error) {
	return toml.Marshal(f)
}
