package leb128

import (
	"unsafe"

	"lukechampine.com/uint128"
)

// Unsigned is the set of native unsigned integer types handled by
// EncodeUnsigned and DecodeUnsigned.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Signed is the set of native signed integer types handled by
// EncodeSigned and DecodeSigned.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int
}

// Maximum encoded length, in bytes, of an integer of each width.
const (
	MaxLen8   = 2
	MaxLen16  = 3
	MaxLen32  = 5
	MaxLen64  = 10
	MaxLen128 = 19
)

const (
	groupBits       = 7
	payloadMask     = 0x7f
	continuationBit = 0x80
	signBit         = 0x40
)

// format is the width and signedness of the integer being encoded or
// decoded.
type format struct {
	width  uint
	signed bool
}

func unsignedFormat[T Unsigned]() format {
	return format{width: Width[T]()}
}

func signedFormat[T Signed]() format {
	return format{width: Width[T](), signed: true}
}

// Width returns the size in bits of T.
func Width[T Unsigned | Signed]() uint {
	var v T
	return uint(unsafe.Sizeof(v)) * 8
}

// MaxLen returns the maximum number of bytes an encoded T can use.
func MaxLen[T Unsigned | Signed]() int {
	return maxLen(Width[T]())
}

func maxLen(width uint) int {
	return int((width + groupBits - 1) / groupBits)
}

// fits reports whether a group with room bits left in the target type
// (room < 7) carries no information above the type's width. Unsigned
// groups must be zero there, signed groups must repeat the sign bit.
func (f format) fits(payload uint64, room uint) bool {
	if !f.signed {
		return payload>>room == 0
	}
	high := payload >> (room - 1)
	return high == 0 || high == payloadMask>>(room-1)
}

// sar is an arithmetic right shift of x by n bits, n < 64.
func sar(x uint128.Uint128, n uint) uint128.Uint128 {
	r := x.Rsh(n)
	if int64(x.Hi) < 0 {
		r.Hi |= ^uint64(0) << (64 - n)
	}
	return r
}

// signExtend replicates bit n-1 of x into all the bits above it.
func signExtend(x uint128.Uint128, n uint) uint128.Uint128 {
	if n >= 128 || x.Rsh(n-1).Lo&1 == 0 {
		return x
	}
	return x.Or(uint128.Max.Lsh(n))
}

func fromInt64(v int64) uint128.Uint128 {
	return uint128.New(uint64(v), uint64(v>>63))
}
