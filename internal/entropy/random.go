// Package entropy builds the pseudo-random sources sessions draw from.
// A configured seed gives a reproducible contest; otherwise the seed comes
// from crypto/rand and is reported so the contest can be replayed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
)

// NewSeed returns a seed read from crypto/rand. It is never zero.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}

// NewRand returns a PRNG for one session and the seed it was built from.
// A zero seed asks for a fresh crypto seed.
func NewRand(seed int64) (*mrand.Rand, int64, error) {
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, 0, err
		}
	}
	return mrand.New(mrand.NewSource(seed)), seed, nil
}
