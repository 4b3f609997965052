package randpool

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Rand fills dst from the system CSPRNG. Randomness failure here means the
// platform cannot provide secure keys or IVs, so it panics instead of
// letting a caller continue with a predictable session key.
func Rand(dst []byte) {
	if len(dst) == 0 {
		return
	}
	if _, err := io.ReadFull(rand.Reader, dst); err != nil {
		panic(fmt.Errorf("randpool: failed to read crypto randomness: %w", err))
	}
}

// Rand16 draws a fresh 16-byte block, sized for both AES-128 session keys
// and CFB initialization vectors.
func Rand16() [16]byte {
	var block [16]byte
	Rand(block[:])
	return block
}
