// Package cairo is the runtime used by generated bindings. It implements the
// Cairo serde layout: every value is a sequence of field elements (felts),
// integers up to 128 bits take one felt, u256 takes two (low, high), arrays
// are prefixed by their length and enum values by their variant index.
package cairo

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Felt is an element of the Stark prime field. The zero value is 0 and
// values are comparable with ==.
type Felt fp.Element

// FeltFromUint64 returns v as a felt.
func FeltFromUint64(v uint64) Felt {
	var e fp.Element
	e.SetUint64(v)
	return Felt(e)
}

// FeltFromInt64 returns v as a felt; negative values wrap to P - |v|.
func FeltFromInt64(v int64) Felt {
	if v >= 0 {
		return FeltFromUint64(uint64(v))
	}
	var e fp.Element
	e.SetUint64(uint64(-(v + 1)) + 1)
	e.Neg(&e)
	return Felt(e)
}

// FeltFromBig returns b as a felt. b must lie in [0, P).
func FeltFromBig(b *big.Int) (Felt, error) {
	if b.Sign() < 0 || b.Cmp(fp.Modulus()) >= 0 {
		return Felt{}, fmt.Errorf("%w: %s is not a field element", ErrOutOfRange, b)
	}
	var e fp.Element
	e.SetBigInt(b)
	return Felt(e), nil
}

// FeltFromHex parses a 0x-prefixed hexadecimal felt.
func FeltFromHex(s string) (Felt, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, ok := new(big.Int).SetString(digits, 16)
	if !ok || digits == "" {
		return Felt{}, fmt.Errorf("invalid felt %q", s)
	}
	return FeltFromBig(b)
}

// MustFelt is FeltFromHex for constants; it panics on invalid input.
func MustFelt(s string) Felt {
	f, err := FeltFromHex(s)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Felt) elem() *fp.Element {
	return (*fp.Element)(f)
}

// Big returns f as a non-negative integer.
func (f Felt) Big() *big.Int {
	return f.elem().BigInt(new(big.Int))
}

// Uint64 returns f if it fits in 64 bits.
func (f Felt) Uint64() (uint64, bool) {
	if !f.elem().IsUint64() {
		return 0, false
	}
	return f.elem().Uint64(), true
}

// IsZero reports whether f is 0.
func (f Felt) IsZero() bool {
	return f.elem().IsZero()
}

// Bytes returns the big-endian encoding of f.
func (f Felt) Bytes() [32]byte {
	return f.elem().Bytes()
}

// String returns f in 0x-prefixed hexadecimal.
func (f Felt) String() string {
	return "0x" + f.Big().Text(16)
}

// MarshalText implements encoding.TextMarshaler.
func (f Felt) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Felt) UnmarshalText(text []byte) error {
	v, err := FeltFromHex(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
