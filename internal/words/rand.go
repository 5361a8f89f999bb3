package words

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Rand is the randomness MissionKeywords needs. *rand.Rand satisfies it.
type Rand interface {
	Perm(n int) []int
}

// Seeded returns a generator with a fixed seed, so the same seed always
// yields the same keyword set.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRand returns a generator seeded from crypto/rand.
func NewRand() (*rand.Rand, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return Seeded(binary.LittleEndian.Uint64(b[:])), nil
}
