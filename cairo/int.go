package cairo

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/holiman/uint256"
)

var (
	two128  = new(big.Int).Lsh(big.NewInt(1), 128)
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	halfP   = new(big.Int).Rsh(fp.Modulus(), 1)
	mask128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	modulus = fp.Modulus()
)

// I128 is a signed 128-bit integer in two's complement, split into its high
// and low 64-bit halves.
type I128 struct {
	Hi int64
	Lo uint64
}

// NewI128 returns v as an I128.
func NewI128(v int64) I128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return I128{Hi: hi, Lo: uint64(v)}
}

// I128FromBig returns b as an I128; b must fit in 128 signed bits.
func I128FromBig(b *big.Int) (I128, error) {
	if b.Cmp(minI128) < 0 || b.Cmp(maxI128) > 0 {
		return I128{}, fmt.Errorf("%w: %s does not fit in i128", ErrOutOfRange, b)
	}
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return I128{Hi: int64(hi), Lo: lo}, nil
}

// Big returns v as an integer.
func (v I128) Big() *big.Int {
	b := new(big.Int).SetInt64(v.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(v.Lo))
}

// String returns v in decimal.
func (v I128) String() string {
	return v.Big().String()
}

// signedFelt maps a signed integer onto the field: negative values become P + v.
func signedFelt(v *big.Int) Felt {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		u.Add(u, modulus)
	}
	var e fp.Element
	e.SetBigInt(u)
	return Felt(e)
}

// feltSigned maps a felt back onto a signed integer; values above P/2 are negative.
func feltSigned(f Felt) *big.Int {
	b := f.Big()
	if b.Cmp(halfP) > 0 {
		b.Sub(b, modulus)
	}
	return b
}

// feltFromU256 converts a value known to be below 2^128.
func feltFromU256(v *uint256.Int) Felt {
	var e fp.Element
	b := v.Bytes32()
	e.SetBytes(b[:])
	return Felt(e)
}

// u256FromFelt converts a felt into a 256-bit integer.
func u256FromFelt(f Felt) *uint256.Int {
	b := f.Bytes()
	return new(uint256.Int).SetBytes32(b[:])
}
