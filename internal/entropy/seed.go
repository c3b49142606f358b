// Package entropy provides the deterministic random streams that drive every generation stage,
// plus crypto/rand helpers for picking fresh seeds.
//
// A seed string is folded to a 32-bit state with an xmur3-style hash and fed to mulberry32.
// Both are fixed here because shared permalinks must reproduce bit-for-bit:
//
//	hash:  h = 1779033703 ^ runeCount
//	       for each code point c: h = rotl32((h ^ c) * 3432918353, 13)
//	       h = (h ^ h>>16) * 2246822507; h = (h ^ h>>13) * 3266489909; h ^= h>>16
//	next:  s += 0x6D2B79F5; t = (s ^ s>>15) * (s | 1); t ^= t + (t ^ t>>7) * (t | 61)
//	       out = t ^ t>>14; float = out / 2^32
package entropy

import (
	"math/bits"
	"unicode/utf8"
)

// Hash folds a seed string into a 32-bit generator state.
func Hash(seed string) uint32 {
	h := uint32(1779033703) ^ uint32(utf8.RuneCountInString(seed))
	for _, c := range seed {
		h = bits.RotateLeft32((h^uint32(c))*3432918353, 13)
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	return h
}

// Stream is a seeded mulberry32 generator. Not safe for concurrent use;
// each generation layer owns its own Stream.
type Stream struct {
	state uint32
	draws uint64
}

// New creates a stream seeded from the given string.
func New(seed string) *Stream {
	return &Stream{state: Hash(seed)}
}

// ForLayer derives the independent stream for one named layer. Toggling or
// reordering layers never shifts another layer's sequence.
func ForLayer(seed, layer string) *Stream {
	return New(seed + "_" + layer)
}

// Uint32 returns the next raw 32-bit output.
func (s *Stream) Uint32() uint32 {
	s.draws++
	s.state += 0x6D2B79F5
	t := (s.state ^ s.state>>15) * (s.state | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float returns a value in [0, 1).
func (s *Stream) Float() float64 {
	return float64(s.Uint32()) / 4294967296.0
}

// Int63 returns a non-negative int64 assembled from two draws (high word first).
func (s *Stream) Int63() int64 {
	hi := uint64(s.Uint32())
	lo := uint64(s.Uint32())
	return int64((hi<<32 | lo) >> 1)
}

// Intn returns an int in [0, n). Returns 0 when n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Float() * float64(n))
}

// IntRange returns an int in [lo, hi], both inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	return lo + s.Intn(hi-lo+1)
}

// Range returns a float in [lo, hi).
func (s *Stream) Range(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

// Shuffle performs a Fisher-Yates shuffle from the back of the slice.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}

// Draws reports how many raw values have been consumed.
func (s *Stream) Draws() uint64 {
	return s.draws
}

// SeedString draws an n-character seed from the same alphabet RandomSeed uses.
func (s *Stream) SeedString(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = seedAlphabet[s.Intn(len(seedAlphabet))]
	}
	return string(out)
}
