package entropy

import (
	"crypto/rand"
	"encoding/binary"
)

const seedAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomSeed returns a fresh 8-character seed string from crypto/rand.
// Used when no seed is supplied and by config randomization.
func RandomSeed() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms; keep a usable seed anyway.
		return "TOPOWALL"
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = seedAlphabet[int(b)%len(seedAlphabet)]
	}
	return string(out)
}

// CryptoFloat returns a non-deterministic float64 in [0, 1).
func CryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64.
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
