package leb128

import (
	"math"
	"math/big"
	"math/bits"
	"strconv"

	"lukechampine.com/uint128"
)

// Int128 is a signed 128 bit integer in two's complement representation.
type Int128 struct {
	Lo uint64
	Hi int64
}

var (
	// MinInt128 is the smallest value an Int128 can hold.
	MinInt128 = Int128{Lo: 0, Hi: math.MinInt64}
	// MaxInt128 is the largest value an Int128 can hold.
	MaxInt128 = Int128{Lo: math.MaxUint64, Hi: math.MaxInt64}

	minInt128Big = MinInt128.Big()
	maxInt128Big = MaxInt128.Big()
	twoTo128     = new(big.Int).Lsh(big.NewInt(1), 128)
)

// Int128From64 returns v as an Int128.
func Int128From64(v int64) Int128 {
	return Int128{Lo: uint64(v), Hi: v >> 63}
}

// Int128FromBits returns the Int128 whose two's complement representation
// is u.
func Int128FromBits(u uint128.Uint128) Int128 {
	return Int128{Lo: u.Lo, Hi: int64(u.Hi)}
}

// Int128FromBig converts b to an Int128. The second return value is false
// if b is out of range.
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minInt128Big) < 0 || b.Cmp(maxInt128Big) > 0 {
		return Int128{}, false
	}
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, twoTo128)
	}
	return Int128FromBits(uint128.FromBig(u)), true
}

// ParseInt128 parses s with the same base prefix rules as
// strconv.ParseInt with base 0.
func ParseInt128(s string) (Int128, error) {
	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Int128{}, &strconv.NumError{Func: "ParseInt128", Num: s, Err: strconv.ErrSyntax}
	}
	x, ok := Int128FromBig(b)
	if !ok {
		return Int128{}, &strconv.NumError{Func: "ParseInt128", Num: s, Err: strconv.ErrRange}
	}
	return x, nil
}

// Bits returns the two's complement representation of x.
func (x Int128) Bits() uint128.Uint128 {
	return uint128.New(x.Lo, uint64(x.Hi))
}

// Add64 returns x+n, wrapping around on overflow.
func (x Int128) Add64(n int64) Int128 {
	lo, carry := bits.Add64(x.Lo, uint64(n), 0)
	hi, _ := bits.Add64(uint64(x.Hi), uint64(n>>63), carry)
	return Int128{Lo: lo, Hi: int64(hi)}
}

// Sub64 returns x-n, wrapping around on overflow.
func (x Int128) Sub64(n int64) Int128 {
	lo, borrow := bits.Sub64(x.Lo, uint64(n), 0)
	hi, _ := bits.Sub64(uint64(x.Hi), uint64(n>>63), borrow)
	return Int128{Lo: lo, Hi: int64(hi)}
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

// Sign returns -1, 0 or +1 depending on the sign of x.
func (x Int128) Sign() int {
	switch {
	case x.Hi < 0:
		return -1
	case x.Hi == 0 && x.Lo == 0:
		return 0
	}
	return 1
}

// IsInt64 reports whether x can be represented as an int64.
func (x Int128) IsInt64() bool {
	return x.Hi == int64(x.Lo)>>63
}

// Big returns x as a big.Int.
func (x Int128) Big() *big.Int {
	b := big.NewInt(x.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(x.Lo))
}

func (x Int128) String() string {
	return x.Big().String()
}
