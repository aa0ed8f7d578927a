package leb128

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
	"math/rand"
	"testing"

	"lukechampine.com/uint128"
)

func TestEncodeUnsigned(t *testing.T) {
	tc := []uint64{0x00, 0x7f, 0x80, 0x8f, 0xffff, 0xfffffff7}
	for i := range tc {
		var buf bytes.Buffer
		if err := EncodeUnsigned(&buf, tc[i]); err != nil {
			t.Fatal(err)
		}
		enc := append([]byte{}, buf.Bytes()...)
		buf.Write([]byte{0x1, 0x2, 0x3})
		out, err := DecodeUnsigned[uint64](&buf)
		t.Logf("input %x output %x encoded %x", tc[i], out, enc)
		if err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 3 {
			t.Errorf("wrong encode")
		}
		if out != tc[i] {
			t.Errorf("wrong encode")
		}
	}
}

func TestEncodeSigned(t *testing.T) {
	tc := []int64{2, -2, 127, -127, 128, -128, 129, -129}
	for i := range tc {
		var buf bytes.Buffer
		if err := EncodeSigned(&buf, tc[i]); err != nil {
			t.Fatal(err)
		}
		enc := append([]byte{}, buf.Bytes()...)
		buf.Write([]byte{0x1, 0x2, 0x3})
		out, err := DecodeSigned[int64](&buf)
		t.Logf("input %x output %x encoded %x", tc[i], out, enc)
		if err != nil {
			t.Fatal(err)
		}
		if buf.Len() != 3 {
			t.Errorf("wrong encode")
		}
		if out != tc[i] {
			t.Errorf("wrong encode")
		}
	}
}

func TestEncodeReferenceVectors(t *testing.T) {
	unsigned := []struct {
		in  uint16
		out []byte
	}{
		{2, []byte{2}},
		{127, []byte{127}},
		{128, []byte{0x80, 1}},
		{12857, []byte{0xb9, 100}},
	}
	for _, tgt := range unsigned {
		if out := AppendUnsigned(nil, tgt.in); !bytes.Equal(out, tgt.out) {
			t.Errorf("uint16 %d: expected %x, got %x", tgt.in, tgt.out, out)
		}
	}

	signed := []struct {
		in  int16
		out []byte
	}{
		{2, []byte{2}},
		{-2, []byte{0x7e}},
		{127, []byte{0xff, 0}},
		{-127, []byte{0x81, 0x7f}},
		{128, []byte{0x80, 1}},
		{-128, []byte{0x80, 0x7f}},
		{63, []byte{0x3f}},
		{-64, []byte{0x40}},
		{64, []byte{0xc0, 0}},
		{-65, []byte{0xbf, 0x7f}},
	}
	for _, tgt := range signed {
		if out := AppendSigned(nil, tgt.in); !bytes.Equal(out, tgt.out) {
			t.Errorf("int16 %d: expected %x, got %x", tgt.in, tgt.out, out)
		}
	}

	if out := AppendUnsigned(nil, uint64(268435142)); !bytes.Equal(out, []byte{198, 253, 255, 127}) {
		t.Errorf("uint64 268435142: got %v", out)
	}
}

func TestEncodeSignedMinimalAtGroupBoundary(t *testing.T) {
	// -64 * 128^k fits in k+1 groups, the final one being 0x40.
	tests := []struct {
		in  int64
		out []byte
	}{
		{-64, []byte{0x40}},
		{-64 * 128, []byte{0x80, 0x40}},
		{-64 * 128 * 128, []byte{0x80, 0x80, 0x40}},
	}
	for _, tgt := range tests {
		if out := AppendSigned(nil, tgt.in); !bytes.Equal(out, tgt.out) {
			t.Errorf("%d: expected %x, got %x", tgt.in, tgt.out, out)
		}
		if n := SignedLen(tgt.in); n != len(tgt.out) {
			t.Errorf("%d: expected length %d, got %d", tgt.in, len(tgt.out), n)
		}
	}

	// The longer form is still accepted by the decoder.
	n, err := DecodeSigned[int64](bytes.NewReader([]byte{0xc0, 0x7f}))
	if err != nil || n != -64 {
		t.Errorf("c07f: got %d, %v", n, err)
	}
}

func TestEncodeMatchesUvarint(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		x := r.Uint64() >> uint(r.Intn(64))
		expected := binary.AppendUvarint(nil, x)
		if out := AppendUnsigned(nil, x); !bytes.Equal(out, expected) {
			t.Fatalf("%#x: expected %x, got %x", x, expected, out)
		}
	}
}

func TestEncodeCanonicalLength(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 10000; i++ {
		u := r.Uint64() >> uint(r.Intn(64))
		expected := (bits.Len64(u) + 6) / 7
		if expected == 0 {
			expected = 1
		}
		if n := UnsignedLen(u); n != expected {
			t.Fatalf("%#x: expected length %d, got %d", u, expected, n)
		}

		s := int64(r.Uint64()) >> uint(r.Intn(64))
		// magnitude bits plus one sign bit
		expected = (bits.Len64(uint64(s^(s>>63))) + 1 + 6) / 7
		if n := SignedLen(s); n != expected {
			t.Fatalf("%d: expected length %d, got %d", s, expected, n)
		}
	}
}

func TestEncodeMaxLen(t *testing.T) {
	check := func(name string, n, expected int) {
		t.Helper()
		if n != expected {
			t.Errorf("%s: expected %d bytes, got %d", name, expected, n)
		}
	}
	check("uint8", UnsignedLen(uint8(math.MaxUint8)), MaxLen8)
	check("int8", SignedLen(int8(math.MinInt8)), MaxLen8)
	check("uint16", UnsignedLen(uint16(math.MaxUint16)), MaxLen16)
	check("int16", SignedLen(int16(math.MinInt16)), MaxLen16)
	check("uint32", UnsignedLen(uint32(math.MaxUint32)), MaxLen32)
	check("int32", SignedLen(int32(math.MaxInt32)), MaxLen32)
	check("uint64", UnsignedLen(uint64(math.MaxUint64)), MaxLen64)
	check("int64", SignedLen(int64(math.MinInt64)), MaxLen64)
	check("MaxLen[uint16]", MaxLen[uint16](), MaxLen16)
	check("MaxLen[int64]", MaxLen[int64](), MaxLen64)

	var buf bytes.Buffer
	EncodeUint128(&buf, uint128.Max)
	check("uint128", buf.Len(), MaxLen128)
	buf.Reset()
	EncodeInt128(&buf, MinInt128)
	check("int128", buf.Len(), MaxLen128)
}

func TestEncodeMinInt128(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeInt128(&buf, MinInt128); err != nil {
		t.Fatal(err)
	}
	expected := append(bytes.Repeat([]byte{0x80}, 18), 0x7e)
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Fatalf("expected %x, got %x", expected, buf.Bytes())
	}
}

func TestEncodeWriteError(t *testing.T) {
	errFull := errors.New("sink full")
	w := &failingWriter{n: 2, err: errFull}
	if err := EncodeUnsigned(w, uint32(math.MaxUint32)); err != errFull {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(w.written) != 2 {
		t.Fatalf("encoder kept writing after an error: %x", w.written)
	}

	w = &failingWriter{n: 0, err: errFull}
	if err := EncodeSigned(w, int8(1)); err != errFull {
		t.Fatalf("expected sink error, got %v", err)
	}
}

type failingWriter struct {
	n       int
	err     error
	written []byte
}

func (w *failingWriter) WriteByte(b byte) error {
	if len(w.written) >= w.n {
		return w.err
	}
	w.written = append(w.written, b)
	return nil
}
