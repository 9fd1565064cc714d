// Package random provides the uniform integer source used to draw secrets.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Source draws uniform integers from closed ranges. It is safe for
// concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Source whose sequence is fully determined by seed.
func New(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntInRange returns a uniform integer in [low, high]. It panics if low > high.
func (s *Source) IntInRange(low, high int) int {
	if low > high {
		panic(fmt.Sprintf("random: empty range [%d, %d]", low, high))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	span := uint64(high) - uint64(low)
	if span == math.MaxUint64 {
		return int(s.rng.Uint64())
	}
	return int(uint64(low) + s.rng.Uint64N(span+1))
}
