package prng

import (
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"
)

func absorb(h io.Writer, seed []byte, nonce uint16) {
	h.Write(seed)
	h.Write([]byte{byte(nonce & 0xFF), byte(nonce >> 8)})
}

// NewShake128 returns SHAKE-128 output for seed||nonce, nonce little-endian.
func NewShake128(seed []byte, nonce uint16) *Stream {
	h := sha3.NewShake128()
	absorb(h, seed, nonce)
	return NewStream(h)
}

// NewShake256 returns SHAKE-256 output for seed||nonce, nonce little-endian.
func NewShake256(seed []byte, nonce uint16) *Stream {
	h := sha3.NewShake256()
	absorb(h, seed, nonce)
	return NewStream(h)
}

// clonable interface for sha3.ShakeHash
type clonable interface {
	Clone() sha3.ShakeHash
}

// SeededShake128 keeps the state after absorbing the seed so that streams for
// successive nonces skip re-hashing it.
type SeededShake128 struct {
	*Stream
	seedState sha3.ShakeHash
}

// NewSeededShake128 absorbs seed. Call SetNonce before reading; until then
// the stream yields SHAKE-128(seed).
func NewSeededShake128(seed []byte) *SeededShake128 {
	h := sha3.NewShake128()
	h.Write(seed)
	return &SeededShake128{
		Stream:    NewStream(h.(clonable).Clone()),
		seedState: h,
	}
}

// SetNonce restarts the stream at SHAKE-128(seed||nonce).
func (x *SeededShake128) SetNonce(nonce uint16) {
	h := x.seedState.(clonable).Clone()
	h.Write([]byte{byte(nonce & 0xFF), byte(nonce >> 8)})
	x.reset(h)
}

// keystream reads raw ChaCha20 key stream.
type keystream struct {
	c *chacha20.Cipher
}

func (k keystream) Read(p []byte) (int, error) {
	clear(p)
	k.c.XORKeyStream(p, p)
	return len(p), nil
}

// NewChaCha20 returns the ChaCha20 key stream under key with an all-zero
// nonce.
func NewChaCha20(key [chacha20.KeySize]byte) *Stream {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// Sizes are fixed by the types above.
		panic(err)
	}
	return NewStream(keystream{c: c})
}

// NewBlake2b returns the BLAKE2b XOF keyed with key over seed. key may be
// nil; a stream with an empty key is only as secret as seed.
func NewBlake2b(key, seed []byte) (*Stream, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	if err != nil {
		return nil, err
	}
	xof.Write(seed)
	return NewStream(xof), nil
}

// NewBlake3 returns the BLAKE3 extendable output for seed.
func NewBlake3(seed []byte) *Stream {
	hasher := blake3.New()
	hasher.Write(seed)
	return NewStream(hasher.Digest())
}
