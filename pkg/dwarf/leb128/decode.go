package leb128

import (
	"errors"
	"fmt"
	"io"

	"lukechampine.com/uint128"
)

// ErrOverflow is returned, wrapped in an *OverflowError, when the decoded
// value can not be represented by the requested type.
var ErrOverflow = errors.New("leb128: integer overflow")

// OverflowError describes a value that does not fit the requested type.
type OverflowError struct {
	Width  uint // width in bits of the requested type
	Signed bool
	Offset int // offset of the group that could not be accepted
}

func (e *OverflowError) Error() string {
	kind := "u"
	if e.Signed {
		kind = "i"
	}
	return fmt.Sprintf("leb128: value does not fit in %s%d (group at offset %d)", kind, e.Width, e.Offset)
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}

// DecodeUnsigned decodes an unsigned Little Endian Base 128
// represented number.
func DecodeUnsigned[T Unsigned](buf io.ByteReader) (T, error) {
	x, err := decode(buf, unsignedFormat[T]())
	if err != nil {
		return 0, err
	}
	return T(x.Lo), nil
}

// DecodeSigned decodes a signed Little Endian Base 128
// represented number.
func DecodeSigned[T Signed](buf io.ByteReader) (T, error) {
	x, err := decode(buf, signedFormat[T]())
	if err != nil {
		return 0, err
	}
	return T(int64(x.Lo)), nil
}

// DecodeUint128 decodes an unsigned Little Endian Base 128 represented
// number of up to 128 bits.
func DecodeUint128(buf io.ByteReader) (uint128.Uint128, error) {
	return decode(buf, format{width: 128})
}

// DecodeInt128 decodes a signed Little Endian Base 128 represented
// number of up to 128 bits.
func DecodeInt128(buf io.ByteReader) (Int128, error) {
	x, err := decode(buf, format{width: 128, signed: true})
	if err != nil {
		return Int128{}, err
	}
	return Int128FromBits(x), nil
}

// decode reads one encoded integer of format f from buf. Signed results
// are returned sign extended to 128 bits.
func decode(buf io.ByteReader, f format) (uint128.Uint128, error) {
	var (
		result uint128.Uint128
		shift  uint
		length int
	)

	for {
		if shift >= f.width {
			return uint128.Zero, &OverflowError{Width: f.width, Signed: f.signed, Offset: length}
		}

		b, err := buf.ReadByte()
		if err != nil {
			if err == io.EOF && length > 0 {
				err = io.ErrUnexpectedEOF
			}
			return uint128.Zero, err
		}

		payload := uint64(b & payloadMask)
		if room := f.width - shift; room < groupBits && !f.fits(payload, room) {
			return uint128.Zero, &OverflowError{Width: f.width, Signed: f.signed, Offset: length}
		}
		result = result.Or(uint128.From64(payload).Lsh(shift))
		shift += groupBits
		length++

		if b&continuationBit == 0 {
			break
		}
	}

	if f.signed {
		result = signExtend(result, min(shift, f.width))
	}
	return result, nil
}
