package cairo

import (
	"errors"
	"fmt"
	"math"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/holiman/uint256"
)

var (
	// ErrUnexpectedEnd is returned when a value extends past the input.
	ErrUnexpectedEnd = errors.New("cairo: unexpected end of felt sequence")
	// ErrOutOfRange is returned when a felt does not fit the target type.
	ErrOutOfRange = errors.New("cairo: value out of range")
	// ErrTrailingData is returned by Decode when felts remain after the value.
	ErrTrailingData = errors.New("cairo: trailing felts after value")
	// ErrUnknownVariant is returned for an enum discriminant without variant.
	ErrUnknownVariant = errors.New("cairo: unknown enum variant")
	// ErrUnknownEvent is returned when no event variant matches the keys.
	ErrUnknownEvent = errors.New("cairo: unknown event")
)

// maxZeroSizedLen bounds array lengths that exceed the remaining input.
const maxZeroSizedLen = 1 << 16

// UnknownVariant reports an unexpected discriminant for enumType.
func UnknownVariant(enumType string, tag uint64) error {
	return fmt.Errorf("%w: %s has no variant %d", ErrUnknownVariant, enumType, tag)
}

// Decoder reads values from a felt sequence in Cairo serde layout.
type Decoder struct {
	felts []Felt
	pos   int
}

// NewDecoder creates a decoder over felts.
func NewDecoder(felts []Felt) *Decoder {
	return &Decoder{felts: felts}
}

// Remaining returns the number of unread felts.
func (d *Decoder) Remaining() int {
	return len(d.felts) - d.pos
}

// Finish fails if any felt is left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n > 0 {
		return fmt.Errorf("%w: %d left", ErrTrailingData, n)
	}
	return nil
}

// ReadFelt reads one felt.
func (d *Decoder) ReadFelt(dst *Felt) error {
	if d.pos >= len(d.felts) {
		return ErrUnexpectedEnd
	}
	*dst = d.felts[d.pos]
	d.pos++
	return nil
}

// PeekFelt reads the next felt without consuming it.
func (d *Decoder) PeekFelt(dst *Felt) error {
	if d.pos >= len(d.felts) {
		return ErrUnexpectedEnd
	}
	*dst = d.felts[d.pos]
	return nil
}

// Skip consumes n felts.
func (d *Decoder) Skip(n int) error {
	if n > d.Remaining() {
		return ErrUnexpectedEnd
	}
	d.pos += n
	return nil
}

func (d *Decoder) readUint(bits int) (uint64, error) {
	var f Felt
	if err := d.ReadFelt(&f); err != nil {
		return 0, err
	}
	v, ok := f.Uint64()
	if !ok || (bits < 64 && v >= 1<<bits) {
		return 0, fmt.Errorf("%w: %s is not a u%d", ErrOutOfRange, f, bits)
	}
	return v, nil
}

func (d *Decoder) readInt(bits int) (int64, error) {
	var f Felt
	if err := d.ReadFelt(&f); err != nil {
		return 0, err
	}
	b := feltSigned(f)
	if !b.IsInt64() {
		return 0, fmt.Errorf("%w: %s is not an i%d", ErrOutOfRange, b, bits)
	}
	v := b.Int64()
	if bits < 64 && (v < -(1<<(bits-1)) || v >= 1<<(bits-1)) {
		return 0, fmt.Errorf("%w: %d is not an i%d", ErrOutOfRange, v, bits)
	}
	return v, nil
}

// ReadBool reads a felt that must be 0 or 1.
func (d *Decoder) ReadBool(dst *bool) error {
	v, err := d.readUint(1)
	if err != nil {
		return err
	}
	*dst = v == 1
	return nil
}

// ReadUint8 reads a u8.
func (d *Decoder) ReadUint8(dst *uint8) error {
	v, err := d.readUint(8)
	*dst = uint8(v)
	return err
}

// ReadUint16 reads a u16.
func (d *Decoder) ReadUint16(dst *uint16) error {
	v, err := d.readUint(16)
	*dst = uint16(v)
	return err
}

// ReadUint32 reads a u32.
func (d *Decoder) ReadUint32(dst *uint32) error {
	v, err := d.readUint(32)
	*dst = uint32(v)
	return err
}

// ReadUint64 reads a u64.
func (d *Decoder) ReadUint64(dst *uint64) error {
	v, err := d.readUint(64)
	*dst = v
	return err
}

// ReadInt8 reads an i8.
func (d *Decoder) ReadInt8(dst *int8) error {
	v, err := d.readInt(8)
	*dst = int8(v)
	return err
}

// ReadInt16 reads an i16.
func (d *Decoder) ReadInt16(dst *int16) error {
	v, err := d.readInt(16)
	*dst = int16(v)
	return err
}

// ReadInt32 reads an i32.
func (d *Decoder) ReadInt32(dst *int32) error {
	v, err := d.readInt(32)
	*dst = int32(v)
	return err
}

// ReadInt64 reads an i64.
func (d *Decoder) ReadInt64(dst *int64) error {
	v, err := d.readInt(64)
	*dst = v
	return err
}

// ReadLen reads an array length.
func (d *Decoder) ReadLen(dst *int) error {
	v, err := d.readUint(32)
	if err != nil {
		return err
	}
	// Only zero-sized elements can outnumber the remaining felts. The
	// comparison stays in uint64 so 32-bit ints never see a wrapped length.
	if (v > uint64(d.Remaining()) && v > maxZeroSizedLen) || v > math.MaxInt {
		return fmt.Errorf("%w: array length %d exceeds input", ErrOutOfRange, v)
	}
	*dst = int(v)
	return nil
}

// ReadU128 reads a u128.
func (d *Decoder) ReadU128(dst *uint256.Int) error {
	var f Felt
	if err := d.ReadFelt(&f); err != nil {
		return err
	}
	v := u256FromFelt(f)
	if v.BitLen() > 128 {
		return fmt.Errorf("%w: %s is not a u128", ErrOutOfRange, f)
	}
	dst.Set(v)
	return nil
}

// ReadU256 reads a u256 from its low and high halves.
func (d *Decoder) ReadU256(dst *uint256.Int) error {
	var low, high uint256.Int
	if err := d.ReadU128(&low); err != nil {
		return err
	}
	if err := d.ReadU128(&high); err != nil {
		return err
	}
	dst.Lsh(&high, 128)
	dst.Or(dst, &low)
	return nil
}

// ReadI128 reads an i128.
func (d *Decoder) ReadI128(dst *I128) error {
	var f Felt
	if err := d.ReadFelt(&f); err != nil {
		return err
	}
	v, err := I128FromBig(feltSigned(f))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// ReadByteArray reads a ByteArray into a string.
func (d *Decoder) ReadByteArray(dst *string) error {
	var words int
	if err := d.ReadLen(&words); err != nil {
		return err
	}
	buf := make([]byte, 0, words*byteArrayWord)
	for i := 0; i < words; i++ {
		var w Felt
		if err := d.ReadFelt(&w); err != nil {
			return err
		}
		word, err := feltToBytes(w, byteArrayWord)
		if err != nil {
			return err
		}
		buf = append(buf, word...)
	}
	var pending Felt
	if err := d.ReadFelt(&pending); err != nil {
		return err
	}
	var pendingLen uint8
	if err := d.ReadUint8(&pendingLen); err != nil {
		return err
	}
	if pendingLen >= byteArrayWord {
		return fmt.Errorf("%w: pending word length %d", ErrOutOfRange, pendingLen)
	}
	tail, err := feltToBytes(pending, int(pendingLen))
	if err != nil {
		return err
	}
	*dst = string(append(buf, tail...))
	return nil
}

// Decodable is implemented by every generated struct and enum.
type Decodable interface {
	DecodeCairo(dec *Decoder) error
}

// Decode deserializes felts into v and fails on trailing felts.
func Decode(felts []Felt, v Decodable) error {
	dec := NewDecoder(felts)
	if err := v.DecodeCairo(dec); err != nil {
		return err
	}
	return dec.Finish()
}

// feltFromBytes interprets up to 31 big-endian bytes as a felt.
func feltFromBytes(b []byte) Felt {
	var e fp.Element
	e.SetBytes(b)
	return Felt(e)
}

// feltToBytes returns the low n bytes of f, big-endian; f must fit in n bytes.
func feltToBytes(f Felt, n int) ([]byte, error) {
	all := f.Bytes()
	for _, b := range all[:32-n] {
		if b != 0 {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrOutOfRange, f, n)
		}
	}
	out := make([]byte, n)
	copy(out, all[32-n:])
	return out, nil
}
