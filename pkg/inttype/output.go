package inttype

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Output is the textual representation used for encoded bytes.
type Output string

const (
	// Hex prints the bytes as a contiguous hexadecimal string: c6fdff7f.
	Hex Output = "hex"
	// Bytes prints the bytes as a list of decimal numbers: [198 253 255 127].
	Bytes Output = "bytes"
	// Binary prints every group with its continuation bit split off:
	// 1_1000110 1_1111101 1_1111111 0_1111111.
	Binary Output = "binary"
)

// ParseOutput returns the Output called name.
func ParseOutput(name string) (Output, error) {
	switch o := Output(strings.ToLower(name)); o {
	case Hex, Bytes, Binary:
		return o, nil
	case "":
		return Hex, nil
	}
	return "", fmt.Errorf("unknown output format %q (known formats: hex, bytes, binary)", name)
}

// Format returns data formatted according to o.
func (o Output) Format(data []byte) string {
	switch o {
	case Bytes:
		return fmt.Sprint(data)
	case Binary:
		groups := make([]string, len(data))
		for i, b := range data {
			groups[i] = fmt.Sprintf("%d_%07b", b>>7, b&0x7f)
		}
		return strings.Join(groups, " ")
	}
	return hex.EncodeToString(data)
}

// Set implements pflag.Value.
func (o *Output) Set(s string) error {
	v, err := ParseOutput(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o *Output) String() string {
	return string(*o)
}

// Type implements pflag.Value.
func (o *Output) Type() string {
	return "format"
}

// ParseHex parses a sequence of bytes written in hexadecimal. Bytes can be
// separated by spaces, commas or colons and can have a 0x prefix.
func ParseHex(s string) ([]byte, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == ':'
	})
	var buf []byte
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		if len(f) == 1 {
			f = "0" + f
		}
		b, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", s, err)
		}
		buf = append(buf, b...)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("no bytes in %q", s)
	}
	return buf, nil
}
