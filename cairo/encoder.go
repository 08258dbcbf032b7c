package cairo

import (
	"fmt"

	"github.com/holiman/uint256"
)

// bytes31 words of a ByteArray.
const byteArrayWord = 31

// Encoder appends values to a felt sequence in Cairo serde layout.
type Encoder struct {
	felts []Felt
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Felts returns the encoded sequence.
func (e *Encoder) Felts() []Felt {
	return e.felts
}

// Len returns the number of encoded felts.
func (e *Encoder) Len() int {
	return len(e.felts)
}

// PutFelt appends f.
func (e *Encoder) PutFelt(f Felt) {
	e.felts = append(e.felts, f)
}

// PutBool appends 1 for true and 0 for false.
func (e *Encoder) PutBool(b bool) {
	if b {
		e.PutUint64(1)
		return
	}
	e.PutUint64(0)
}

// PutUint64 appends an unsigned integer of up to 64 bits.
func (e *Encoder) PutUint64(v uint64) {
	e.PutFelt(FeltFromUint64(v))
}

// PutInt64 appends a signed integer of up to 64 bits.
func (e *Encoder) PutInt64(v int64) {
	e.PutFelt(FeltFromInt64(v))
}

// PutLen appends an array length.
func (e *Encoder) PutLen(n int) {
	e.PutUint64(uint64(n))
}

// PutU128 appends v as one felt; v must fit in 128 bits.
func (e *Encoder) PutU128(v *uint256.Int) error {
	if v.BitLen() > 128 {
		return fmt.Errorf("%w: %s does not fit in u128", ErrOutOfRange, v.Dec())
	}
	e.PutFelt(feltFromU256(v))
	return nil
}

// PutU256 appends v as its low and high 128-bit halves.
func (e *Encoder) PutU256(v *uint256.Int) {
	low := new(uint256.Int).And(v, mask128)
	high := new(uint256.Int).Rsh(v, 128)
	e.PutFelt(feltFromU256(low))
	e.PutFelt(feltFromU256(high))
}

// PutI128 appends v as one felt.
func (e *Encoder) PutI128(v *I128) {
	e.PutFelt(signedFelt(v.Big()))
}

// PutByteArray appends s in ByteArray layout: the count of full 31-byte
// words, the words, the pending word and its length.
func (e *Encoder) PutByteArray(s string) {
	data := []byte(s)
	full := len(data) / byteArrayWord
	e.PutLen(full)
	for i := 0; i < full; i++ {
		e.PutFelt(feltFromBytes(data[i*byteArrayWord : (i+1)*byteArrayWord]))
	}
	pending := data[full*byteArrayWord:]
	e.PutFelt(feltFromBytes(pending))
	e.PutLen(len(pending))
}

// Encodable is implemented by every generated struct and enum.
type Encodable interface {
	EncodeCairo(enc *Encoder) error
}

// Encode serializes v.
func Encode(v Encodable) ([]Felt, error) {
	enc := NewEncoder()
	if err := v.EncodeCairo(enc); err != nil {
		return nil, err
	}
	return enc.Felts(), nil
}
