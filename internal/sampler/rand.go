package sampler

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mathext/prng"
)

// globalSource backs every Sample call that does not supply its own Source.
// It is not cryptographically secure; samples only need to vary between calls.
var globalSource = NewSource(uint64(time.Now().UnixNano()))

// Source produces pseudo-random 64-bit values.
type Source interface {
	// Uint64 returns a random number in [0, MaxUint64] and advances the
	// generator's state.
	Uint64() uint64
}

// NewSource returns a Source backed by a Mersenne Twister seeded with seed.
// The returned Source is safe for concurrent use.
func NewSource(seed uint64) Source {
	mt := prng.NewMT19937()
	mt.Seed(seed)
	return &lockedSource{src: mt}
}

type lockedSource struct {
	mu  sync.Mutex
	src *prng.MT19937
}

func (s *lockedSource) Uint64() uint64 {
	// MT19937 mutates internal state on every draw.
	s.mu.Lock()
	n := s.src.Uint64()
	s.mu.Unlock()
	return n
}

// uint64Inclusive returns a pseudo-random number in [0,n] without modulo bias.
func uint64Inclusive(src Source, n uint64) uint64 {
	switch {
	// n+1 is a power of two, so masking is exact. This also covers
	// n == MaxUint64 because n+1 overflows to zero.
	case n&(n+1) == 0:
		return src.Uint64() & n

	case n > math.MaxInt64:
		v := src.Uint64()
		for v > n {
			v = src.Uint64()
		}
		return v

	// Reject draws above the largest multiple of n+1 that fits in 63 bits.
	default:
		maximum := uint64((1<<63)-1) - uint64(1<<63)%(n+1)
		v := src.Uint64() & math.MaxInt64
		for v > maximum {
			v = src.Uint64() & math.MaxInt64
		}
		return v % (n + 1)
	}
}

// sourceReader adapts a Source to io.Reader so UUID keys can be drawn from it.
type sourceReader struct {
	src Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.src.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}
