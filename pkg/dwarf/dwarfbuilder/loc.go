// Package dwarfbuilder provides a way to build DWARF location expressions
// with arbitrary contents.
package dwarfbuilder

import (
	"bytes"
	"fmt"

	"github.com/go-delve/leb128/pkg/dwarf/leb128"
	"github.com/go-delve/leb128/pkg/dwarf/op"
)

// LocationBlock returns a DWARF expression corresponding to the list of
// arguments. Opcodes are written as is, int values as SLEB128, uint values
// as ULEB128 and byte slices verbatim.
func LocationBlock(args ...interface{}) []byte {
	var buf bytes.Buffer
	for _, arg := range args {
		switch x := arg.(type) {
		case op.Opcode:
			buf.WriteByte(byte(x))
		case int:
			leb128.EncodeSigned(&buf, x)
		case int64:
			leb128.EncodeSigned(&buf, x)
		case uint:
			leb128.EncodeUnsigned(&buf, x)
		case uint64:
			leb128.EncodeUnsigned(&buf, x)
		case []byte:
			buf.Write(x)
		default:
			panic(fmt.Sprintf("unsupported value type %T", arg))
		}
	}
	return buf.Bytes()
}
