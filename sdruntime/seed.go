package sdruntime

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed returns a non-negative seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 42
	}
	// Clearing the sign bit keeps the value non-negative.
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}

// ResolveSeed returns seed, or a fresh random seed when seed is negative.
func ResolveSeed(seed int64) int64 {
	if seed < 0 {
		return RandomSeed()
	}
	return seed
}
