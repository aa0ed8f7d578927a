package leb128_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-delve/leb128/pkg/dwarf/leb128"
)

func ExampleEncodeSigned() {
	var buf bytes.Buffer
	for _, v := range []int16{2, -2, 127, -127, 128, -128} {
		buf.Reset()
		leb128.EncodeSigned(&buf, v)
		fmt.Printf("%d %x\n", v, buf.Bytes())
	}
	// Output:
	// 2 02
	// -2 7e
	// 127 ff00
	// -127 817f
	// 128 8001
	// -128 807f
}

func ExampleDecodeUnsigned() {
	v, err := leb128.DecodeUnsigned[uint64](bytes.NewReader([]byte{198, 253, 255, 127}))
	fmt.Println(v, err)

	_, err = leb128.DecodeUnsigned[uint8](bytes.NewReader([]byte{128, 2}))
	fmt.Println(errors.Is(err, leb128.ErrOverflow))
	// Output:
	// 268435142 <nil>
	// true
}
