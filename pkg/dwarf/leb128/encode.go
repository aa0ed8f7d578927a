package leb128

import (
	"io"

	"lukechampine.com/uint128"
)

// EncodeUnsigned encodes x to the unsigned Little Endian Base 128 format
// into out.
func EncodeUnsigned[T Unsigned](out io.ByteWriter, x T) error {
	return encode(out, false, uint128.From64(uint64(x)))
}

// EncodeSigned encodes x to the signed Little Endian Base 128 format
// into out.
func EncodeSigned[T Signed](out io.ByteWriter, x T) error {
	return encode(out, true, fromInt64(int64(x)))
}

// EncodeUint128 encodes x to the unsigned Little Endian Base 128 format
// into out.
func EncodeUint128(out io.ByteWriter, x uint128.Uint128) error {
	return encode(out, false, x)
}

// EncodeInt128 encodes x to the signed Little Endian Base 128 format
// into out.
func EncodeInt128(out io.ByteWriter, x Int128) error {
	return encode(out, true, x.Bits())
}

// AppendUnsigned appends the encoding of x to buf and returns the extended
// buffer.
func AppendUnsigned[T Unsigned](buf []byte, x T) []byte {
	a := appender(buf)
	encode(&a, false, uint128.From64(uint64(x)))
	return a
}

// AppendSigned appends the encoding of x to buf and returns the extended
// buffer.
func AppendSigned[T Signed](buf []byte, x T) []byte {
	a := appender(buf)
	encode(&a, true, fromInt64(int64(x)))
	return a
}

// UnsignedLen returns the number of bytes EncodeUnsigned writes for x.
func UnsignedLen[T Unsigned](x T) int {
	var c counter
	encode(&c, false, uint128.From64(uint64(x)))
	return int(c)
}

// SignedLen returns the number of bytes EncodeSigned writes for x.
func SignedLen[T Signed](x T) int {
	var c counter
	encode(&c, true, fromInt64(int64(x)))
	return int(c)
}

// encode writes x one group at a time, least significant group first.
// Signed values must already be sign extended to 128 bits, the loop ends
// once the remaining bits are all copies of the last group's bit 6.
// The output is always the minimal encoding of x.
func encode(out io.ByteWriter, signed bool, x uint128.Uint128) error {
	for {
		b := byte(x.Lo & payloadMask)
		if signed {
			x = sar(x, groupBits)
		} else {
			x = x.Rsh(groupBits)
		}
		if lastGroup(x, b, signed) {
			return out.WriteByte(b)
		}
		if err := out.WriteByte(b | continuationBit); err != nil {
			return err
		}
	}
}

func lastGroup(rest uint128.Uint128, b byte, signed bool) bool {
	if !signed || b&signBit == 0 {
		return rest.IsZero()
	}
	return rest.Equals(uint128.Max)
}

type appender []byte

func (a *appender) WriteByte(b byte) error {
	*a = append(*a, b)
	return nil
}

type counter int

func (c *counter) WriteByte(byte) error {
	*c++
	return nil
}
