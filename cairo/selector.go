package cairo

import (
	"golang.org/x/crypto/sha3"
)

// Selector returns the entry point or event selector of name: the Keccak-256
// hash of the ASCII name truncated to 250 bits.
func Selector(name string) Felt {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	sum := h.Sum(nil)
	sum[0] &= 0x03
	return feltFromBytes(sum)
}
