package chip8

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

// DefaultSeed seeds the random source of a Cpu built without WithRandomSource
const DefaultSeed uint64 = 7

// RandomSource provides the bytes used by RND
type RandomSource interface {
	RandomByte() byte
}

// SeededRandom is a deterministic RandomSource
type SeededRandom struct {
	rng *mrand.Rand
}

func NewSeededRandom(seed uint64) *SeededRandom {
	return &SeededRandom{
		rng: mrand.New(mrand.NewPCG(seed, seed)),
	}
}

func (r *SeededRandom) RandomByte() byte {
	return byte(r.rng.UintN(256))
}

// CryptoRandom reads from crypto/rand. It is not reproducible.
type CryptoRandom struct{}

func (CryptoRandom) RandomByte() byte {
	buff := [1]byte{}
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(buff[:])

	return buff[0]
}

// RandomFunc adapts a function to RandomSource
type RandomFunc func() byte

func (f RandomFunc) RandomByte() byte {
	return f()
}
