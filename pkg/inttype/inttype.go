// Package inttype maps the names of the integer types supported by
// package leb128 to their encoders and decoders, so that the type of a
// value can be chosen at run time (from a command line flag, a
// configuration file or the terminal).
package inttype

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"lukechampine.com/uint128"

	"github.com/go-delve/leb128/pkg/dwarf/leb128"
	"github.com/go-delve/leb128/pkg/logflags"
)

// Kind is an integer type: a width and a signedness.
type Kind uint8

const (
	Invalid Kind = iota
	U8
	U16
	U32
	U64
	U128
	Usize
	I8
	I16
	I32
	I64
	I128
	Isize
)

var kindNames = [...]string{
	Invalid: "invalid",
	U8:      "u8",
	U16:     "u16",
	U32:     "u32",
	U64:     "u64",
	U128:    "u128",
	Usize:   "usize",
	I8:      "i8",
	I16:     "i16",
	I32:     "i32",
	I64:     "i64",
	I128:    "i128",
	Isize:   "isize",
}

var aliases = map[string]Kind{
	"uint8":   U8,
	"byte":    U8,
	"uint16":  U16,
	"uint32":  U32,
	"uint64":  U64,
	"uint128": U128,
	"uint":    Usize,
	"uintptr": Usize,
	"int8":    I8,
	"int16":   I16,
	"int32":   I32,
	"int64":   I64,
	"int128":  I128,
	"int":     Isize,
}

// All returns every valid Kind.
func All() []Kind {
	r := make([]Kind, 0, len(kindNames)-1)
	for k := U8; k <= Isize; k++ {
		r = append(r, k)
	}
	return r
}

// Names returns the canonical names of all kinds, followed by the
// accepted aliases, sorted.
func Names() []string {
	r := make([]string, 0, len(kindNames)+len(aliases))
	for _, k := range All() {
		r = append(r, k.String())
	}
	for name := range aliases {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}

// ParseKind returns the Kind called name.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range All() {
		if kindNames[k] == name {
			return k, nil
		}
	}
	if k, ok := aliases[name]; ok {
		return k, nil
	}
	return Invalid, fmt.Errorf("unknown integer type %q (known types: %s)", name, strings.Join(kindNames[U8:], ", "))
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return kindNames[Invalid]
	}
	return kindNames[k]
}

// Signed reports whether k is a signed integer type.
func (k Kind) Signed() bool {
	return k >= I8 && k <= Isize
}

// Width returns the size of k in bits.
func (k Kind) Width() uint {
	switch k {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32:
		return 32
	case U64, I64:
		return 64
	case U128, I128:
		return 128
	case Usize:
		return leb128.Width[uint]()
	case Isize:
		return leb128.Width[int]()
	}
	return 0
}

// MaxLen returns the maximum length of an encoded value of type k.
func (k Kind) MaxLen() int {
	return int((k.Width() + 6) / 7)
}

var (
	_ pflag.Value = (*Kind)(nil)
	_ pflag.Value = (*Output)(nil)
)

// Set implements pflag.Value.
func (k *Kind) Set(s string) error {
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Type implements pflag.Value.
func (k *Kind) Type() string {
	return "type"
}

// Encode parses text as a value of type k and writes its encoding to out.
// Text follows the syntax of Go integer literals: decimal, 0x, 0o and 0b
// prefixes and underscores are accepted.
func (k Kind) Encode(out io.ByteWriter, text string) error {
	text = strings.TrimSpace(text)
	var err error
	switch k {
	case U8:
		err = encodeUnsigned[uint8](out, text)
	case U16:
		err = encodeUnsigned[uint16](out, text)
	case U32:
		err = encodeUnsigned[uint32](out, text)
	case U64:
		err = encodeUnsigned[uint64](out, text)
	case Usize:
		err = encodeUnsigned[uint](out, text)
	case I8:
		err = encodeSigned[int8](out, text)
	case I16:
		err = encodeSigned[int16](out, text)
	case I32:
		err = encodeSigned[int32](out, text)
	case I64:
		err = encodeSigned[int64](out, text)
	case Isize:
		err = encodeSigned[int](out, text)
	case U128:
		var v uint128.Uint128
		v, err = parseUint128(text)
		if err == nil {
			err = leb128.EncodeUint128(out, v)
		}
	case I128:
		var v leb128.Int128
		v, err = leb128.ParseInt128(text)
		if err == nil {
			err = leb128.EncodeInt128(out, v)
		}
	default:
		return fmt.Errorf("can not encode values of type %s", k)
	}
	if err != nil {
		logflags.CodecLogger().WithError(err).Debugf("encode %s %q", k, text)
		return fmt.Errorf("encoding %q as %s: %w", text, k, err)
	}
	return nil
}

// Decode reads one encoded value of type k from in and returns it
// formatted in decimal.
func (k Kind) Decode(in io.ByteReader) (string, error) {
	var (
		s   string
		err error
	)
	switch k {
	case U8:
		s, err = decodeUnsigned[uint8](in)
	case U16:
		s, err = decodeUnsigned[uint16](in)
	case U32:
		s, err = decodeUnsigned[uint32](in)
	case U64:
		s, err = decodeUnsigned[uint64](in)
	case Usize:
		s, err = decodeUnsigned[uint](in)
	case I8:
		s, err = decodeSigned[int8](in)
	case I16:
		s, err = decodeSigned[int16](in)
	case I32:
		s, err = decodeSigned[int32](in)
	case I64:
		s, err = decodeSigned[int64](in)
	case Isize:
		s, err = decodeSigned[int](in)
	case U128:
		var v uint128.Uint128
		v, err = leb128.DecodeUint128(in)
		s = v.String()
	case I128:
		var v leb128.Int128
		v, err = leb128.DecodeInt128(in)
		s = v.String()
	default:
		return "", fmt.Errorf("can not decode values of type %s", k)
	}
	if err != nil {
		logflags.CodecLogger().WithError(err).Debugf("decode %s", k)
		return "", err
	}
	return s, nil
}

func encodeUnsigned[T leb128.Unsigned](out io.ByteWriter, text string) error {
	v, err := strconv.ParseUint(text, 0, int(leb128.Width[T]()))
	if err != nil {
		return err
	}
	return leb128.EncodeUnsigned(out, T(v))
}

func encodeSigned[T leb128.Signed](out io.ByteWriter, text string) error {
	v, err := strconv.ParseInt(text, 0, int(leb128.Width[T]()))
	if err != nil {
		return err
	}
	return leb128.EncodeSigned(out, T(v))
}

func decodeUnsigned[T leb128.Unsigned](in io.ByteReader) (string, error) {
	v, err := leb128.DecodeUnsigned[T](in)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(v), 10), nil
}

func decodeSigned[T leb128.Signed](in io.ByteReader) (string, error) {
	v, err := leb128.DecodeSigned[T](in)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(int64(v), 10), nil
}

func parseUint128(text string) (uint128.Uint128, error) {
	b, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return uint128.Zero, &strconv.NumError{Func: "ParseUint128", Num: text, Err: strconv.ErrSyntax}
	}
	if b.Sign() < 0 || b.BitLen() > 128 {
		return uint128.Zero, &strconv.NumError{Func: "ParseUint128", Num: text, Err: strconv.ErrRange}
	}
	return uint128.FromBig(b), nil
}
