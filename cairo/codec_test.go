package cairo

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func felts(vs ...uint64) []Felt {
	out := make([]Felt, len(vs))
	for i, v := range vs {
		out[i] = FeltFromUint64(v)
	}
	return out
}

func TestEncoder_Scalars(t *testing.T) {
	require := require.New(t)

	enc := NewEncoder()
	enc.PutBool(true)
	enc.PutBool(false)
	enc.PutUint64(300)
	enc.PutInt64(-2)
	enc.PutLen(3)

	want := append(felts(1, 0, 300), FeltFromInt64(-2), FeltFromUint64(3))
	require.Equal(want, enc.Felts())
	require.Equal(5, enc.Len())

	dec := NewDecoder(enc.Felts())
	var (
		b1, b2 bool
		u      uint16
		i      int8
		n      int
	)
	require.NoError(dec.ReadBool(&b1))
	require.NoError(dec.ReadBool(&b2))
	require.NoError(dec.ReadUint16(&u))
	require.NoError(dec.ReadInt8(&i))
	require.NoError(dec.ReadLen(&n))
	require.NoError(dec.Finish())

	require.True(b1)
	require.False(b2)
	require.Equal(uint16(300), u)
	require.Equal(int8(-2), i)
	require.Equal(3, n)
}

func TestEncoder_U256(t *testing.T) {
	require := require.New(t)

	v := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	v.AddUint64(v, 5)

	enc := NewEncoder()
	enc.PutU256(v)
	require.Equal(felts(5, 1), enc.Felts())

	var out uint256.Int
	dec := NewDecoder(enc.Felts())
	require.NoError(dec.ReadU256(&out))
	require.NoError(dec.Finish())
	require.Equal(v.Dec(), out.Dec())
}

func TestEncoder_U128(t *testing.T) {
	require := require.New(t)

	enc := NewEncoder()
	require.NoError(enc.PutU128(uint256.NewInt(77)))
	require.ErrorIs(enc.PutU128(new(uint256.Int).Lsh(uint256.NewInt(1), 128)), ErrOutOfRange)
	require.Equal(felts(77), enc.Felts())

	// 2^128 is one past the largest u128.
	dec := NewDecoder([]Felt{feltFromU256(new(uint256.Int).Lsh(uint256.NewInt(1), 128))})
	var out uint256.Int
	require.ErrorIs(dec.ReadU128(&out), ErrOutOfRange)
}

func TestEncoder_I128(t *testing.T) {
	require := require.New(t)

	in := NewI128(-5)
	enc := NewEncoder()
	enc.PutI128(&in)
	require.Equal([]Felt{FeltFromInt64(-5)}, enc.Felts())

	var out I128
	require.NoError(NewDecoder(enc.Felts()).ReadI128(&out))
	require.Equal(in, out)
}

func TestEncoder_ByteArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Felt
	}{
		{
			name: "empty",
			in:   "",
			want: felts(0, 0, 0),
		},
		{
			name: "short",
			in:   "hello",
			want: felts(0, 0x68656c6c6f, 5),
		},
		{
			name: "one full word plus pending",
			in:   strings.Repeat("a", 31) + "bc",
			want: []Felt{
				FeltFromUint64(1),
				feltFromBytes([]byte(strings.Repeat("a", 31))),
				FeltFromUint64(0x6263),
				FeltFromUint64(2),
			},
		},
		{
			name: "exact word",
			in:   strings.Repeat("z", 31),
			want: []Felt{
				FeltFromUint64(1),
				feltFromBytes([]byte(strings.Repeat("z", 31))),
				FeltFromUint64(0),
				FeltFromUint64(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			enc := NewEncoder()
			enc.PutByteArray(tt.in)
			require.Equal(tt.want, enc.Felts())

			var out string
			dec := NewDecoder(enc.Felts())
			require.NoError(dec.ReadByteArray(&out))
			require.NoError(dec.Finish())
			require.Equal(tt.in, out)
		})
	}
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		felts []Felt
		read  func(*Decoder) error
		want  error
	}{
		{
			name:  "empty input",
			felts: nil,
			read:  func(d *Decoder) error { var f Felt; return d.ReadFelt(&f) },
			want:  ErrUnexpectedEnd,
		},
		{
			name:  "bool out of range",
			felts: felts(2),
			read:  func(d *Decoder) error { var b bool; return d.ReadBool(&b) },
			want:  ErrOutOfRange,
		},
		{
			name:  "u8 out of range",
			felts: felts(256),
			read:  func(d *Decoder) error { var v uint8; return d.ReadUint8(&v) },
			want:  ErrOutOfRange,
		},
		{
			name:  "i8 below range",
			felts: []Felt{FeltFromInt64(-129)},
			read:  func(d *Decoder) error { var v int8; return d.ReadInt8(&v) },
			want:  ErrOutOfRange,
		},
		{
			name:  "hostile array length",
			felts: felts(1 << 30),
			read:  func(d *Decoder) error { var n int; return d.ReadLen(&n) },
			want:  ErrOutOfRange,
		},
		{
			name:  "truncated u256",
			felts: felts(1),
			read:  func(d *Decoder) error { var v uint256.Int; return d.ReadU256(&v) },
			want:  ErrUnexpectedEnd,
		},
		{
			name:  "pending word too long",
			felts: felts(0, 0, 31),
			read:  func(d *Decoder) error { var s string; return d.ReadByteArray(&s) },
			want:  ErrOutOfRange,
		},
		{
			name:  "pending word wider than its length",
			felts: felts(0, 0x6162, 1),
			read:  func(d *Decoder) error { var s string; return d.ReadByteArray(&s) },
			want:  ErrOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.read(NewDecoder(tt.felts)), tt.want)
		})
	}
}

func TestDecoder_ReadLenBounds(t *testing.T) {
	tests := []struct {
		name    string
		length  uint64
		wantErr bool
	}{
		{name: "zero sized elements", length: maxZeroSizedLen},
		{name: "just past zero sized bound", length: maxZeroSizedLen + 1, wantErr: true},
		{name: "sign bit of int32", length: 1 << 31, wantErr: true},
		{name: "largest u32", length: 1<<32 - 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			n := -1
			err := NewDecoder([]Felt{FeltFromUint64(tt.length)}).ReadLen(&n)
			if tt.wantErr {
				require.ErrorIs(err, ErrOutOfRange)
				require.Equal(-1, n)
				return
			}
			require.NoError(err)
			require.Equal(int(tt.length), n)
		})
	}
}

type pair struct {
	A uint8
	B Felt
}

func (p *pair) EncodeCairo(enc *Encoder) error {
	enc.PutUint64(uint64(p.A))
	enc.PutFelt(p.B)
	return nil
}

func (p *pair) DecodeCairo(dec *Decoder) error {
	if err := dec.ReadUint8(&p.A); err != nil {
		return err
	}
	return dec.ReadFelt(&p.B)
}

func TestEncodeDecode(t *testing.T) {
	require := require.New(t)

	in := pair{A: 9, B: FeltFromUint64(10)}
	out, err := Encode(&in)
	require.NoError(err)
	require.Equal(felts(9, 10), out)

	var got pair
	require.NoError(Decode(out, &got))
	require.Equal(in, got)

	require.ErrorIs(Decode(felts(9, 10, 11), &got), ErrTrailingData)
}

func TestUnknownVariant(t *testing.T) {
	err := UnknownVariant("Status", 7)
	require.ErrorIs(t, err, ErrUnknownVariant)
	require.Contains(t, err.Error(), "Status has no variant 7")
}

func TestResult(t *testing.T) {
	ok := Ok[uint8, Felt](3)
	require.False(t, ok.IsErr)
	require.Equal(t, uint8(3), ok.Ok)

	failed := Err[uint8](FeltFromUint64(1))
	require.True(t, failed.IsErr)
	require.Equal(t, FeltFromUint64(1), failed.Err)
}
