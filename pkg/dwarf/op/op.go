package op

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-delve/leb128/pkg/dwarf/leb128"
	"github.com/go-delve/leb128/pkg/logflags"
)

// Opcode represent a DWARF stack program instruction.
// See ./opcodes.go for a full list.
type Opcode byte

type stackfn func(Opcode, *context) error

type context struct {
	buf     *bytes.Buffer
	prog    []byte
	stack   []int64
	pieces  []Piece
	reg     bool
	ptrSize int

	DwarfRegisters
}

// Piece is a piece of memory stored either at an address or in a register.
type Piece struct {
	Size       int
	Addr       int64
	RegNum     uint64
	IsRegister bool
}

var errEmptyStack = errors.New("empty OP stack")

// ExecuteStackProgram executes a DWARF location expression and returns
// either an address (int64), or a slice of Pieces for location expressions
// that don't evaluate to an address (such as register and composite expressions).
func ExecuteStackProgram(regs DwarfRegisters, instructions []byte, ptrSize int) (int64, []Piece, error) {
	ctxt := &context{
		buf:            bytes.NewBuffer(instructions),
		prog:           instructions,
		stack:          make([]int64, 0, 3),
		DwarfRegisters: regs,
		ptrSize:        ptrSize,
	}

	for {
		off := ctxt.offset()
		opcodeByte, err := ctxt.buf.ReadByte()
		if err != nil {
			break
		}
		opcode := Opcode(opcodeByte)
		if ctxt.reg && opcode != DW_OP_piece {
			break
		}
		fn, ok := oplut[opcode]
		if !ok {
			logflags.DwarfOpLogger().Debugf("unsupported instruction %s at offset %d of %x", opcode, off, instructions)
			return 0, nil, fmt.Errorf("invalid instruction %s at offset %d", opcode, off)
		}

		err = fn(opcode, ctxt)
		if err != nil {
			logflags.DwarfOpLogger().WithError(err).Debugf("executing %s at offset %d of %x", opcode, off, instructions)
			return 0, nil, fmt.Errorf("%s at offset %d: %w", opcode, off, err)
		}
	}

	if ctxt.pieces != nil {
		return 0, ctxt.pieces, nil
	}

	if len(ctxt.stack) == 0 {
		return 0, nil, errEmptyStack
	}

	return ctxt.stack[len(ctxt.stack)-1], nil, nil
}

// PrettyPrint prints the DWARF stack program instructions to `out`.
// It stops at the first operand that can not be read and returns an error
// describing it.
func PrettyPrint(out io.Writer, instructions []byte) error {
	in := bytes.NewBuffer(instructions)

	for {
		off := len(instructions) - in.Len()
		opcode, err := in.ReadByte()
		if err != nil {
			return nil
		}
		if name, hasname := opcodeName[Opcode(opcode)]; hasname {
			io.WriteString(out, name)
			out.Write([]byte{' '})
		} else {
			fmt.Fprintf(out, "%#x ", opcode)
		}
		for _, arg := range opcodeArgs[Opcode(opcode)] {
			var err error
			switch arg {
			case 's':
				var n int64
				n, err = leb128.DecodeSigned[int64](in)
				fmt.Fprintf(out, "%#x ", n)
			case 'u':
				var n uint64
				n, err = leb128.DecodeUnsigned[uint64](in)
				fmt.Fprintf(out, "%#x ", n)
			case '1', '2', '4', '8':
				var x uint64
				x, err = readFixed(in, int(arg-'0'))
				fmt.Fprintf(out, "%#x ", x)
			case 'B':
				var data []byte
				data, err = readBlock(in)
				fmt.Fprintf(out, "%d [%x] ", len(data), data)
			}
			if err != nil {
				return fmt.Errorf("operand of %s at offset %d: %w", Opcode(opcode), off, err)
			}
		}
	}
}

func (ctxt *context) offset() int {
	return len(ctxt.prog) - ctxt.buf.Len()
}

func (ctxt *context) push(v int64) {
	ctxt.stack = append(ctxt.stack, v)
}

func (ctxt *context) pop() (int64, error) {
	if len(ctxt.stack) == 0 {
		return 0, errEmptyStack
	}
	v := ctxt.stack[len(ctxt.stack)-1]
	ctxt.stack = ctxt.stack[:len(ctxt.stack)-1]
	return v, nil
}

func (ctxt *context) top() (*int64, error) {
	if len(ctxt.stack) == 0 {
		return nil, errEmptyStack
	}
	return &ctxt.stack[len(ctxt.stack)-1], nil
}

func readFixed(buf *bytes.Buffer, size int) (uint64, error) {
	switch size {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("unsupported operand size %d", size)
	}
	data := buf.Next(size)
	if len(data) < size {
		return 0, io.ErrUnexpectedEOF
	}
	switch size {
	case 1:
		return uint64(data[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(data)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(data)), nil
	}
	return binary.LittleEndian.Uint64(data), nil
}

func readBlock(buf *bytes.Buffer) ([]byte, error) {
	sz, err := leb128.DecodeUnsigned[uint64](buf)
	if err != nil {
		return nil, err
	}
	if sz > uint64(buf.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Next(int(sz)), nil
}

func callframecfa(opcode Opcode, ctxt *context) error {
	if ctxt.CFA == 0 {
		return errors.New("could not retrieve CFA for current PC")
	}
	ctxt.push(ctxt.CFA)
	return nil
}

func addr(opcode Opcode, ctxt *context) error {
	stack, err := readFixed(ctxt.buf, ctxt.ptrSize)
	if err != nil {
		return err
	}
	ctxt.push(int64(stack + ctxt.StaticBase))
	return nil
}

func constfixed(opcode Opcode, ctxt *context) error {
	var (
		size   int
		signed = (opcode-DW_OP_const1u)%2 == 1
	)
	switch opcode {
	case DW_OP_const1u, DW_OP_const1s:
		size = 1
	case DW_OP_const2u, DW_OP_const2s:
		size = 2
	case DW_OP_const4u, DW_OP_const4s:
		size = 4
	default:
		size = 8
	}
	x, err := readFixed(ctxt.buf, size)
	if err != nil {
		return err
	}
	if signed && size < 8 {
		shift := 64 - 8*size
		ctxt.push(int64(x<<shift) >> shift)
		return nil
	}
	ctxt.push(int64(x))
	return nil
}

func constu(opcode Opcode, ctxt *context) error {
	num, err := leb128.DecodeUnsigned[uint64](ctxt.buf)
	if err != nil {
		return err
	}
	ctxt.push(int64(num))
	return nil
}

func consts(opcode Opcode, ctxt *context) error {
	num, err := leb128.DecodeSigned[int64](ctxt.buf)
	if err != nil {
		return err
	}
	ctxt.push(num)
	return nil
}

func literal(opcode Opcode, ctxt *context) error {
	ctxt.push(int64(opcode - DW_OP_lit0))
	return nil
}

func dup(opcode Opcode, ctxt *context) error {
	top, err := ctxt.top()
	if err != nil {
		return err
	}
	ctxt.push(*top)
	return nil
}

func drop(opcode Opcode, ctxt *context) error {
	_, err := ctxt.pop()
	return err
}

func over(opcode Opcode, ctxt *context) error {
	if len(ctxt.stack) < 2 {
		return errEmptyStack
	}
	ctxt.push(ctxt.stack[len(ctxt.stack)-2])
	return nil
}

func swap(opcode Opcode, ctxt *context) error {
	slen := len(ctxt.stack)
	if slen < 2 {
		return errEmptyStack
	}
	ctxt.stack[slen-1], ctxt.stack[slen-2] = ctxt.stack[slen-2], ctxt.stack[slen-1]
	return nil
}

func binop(opcode Opcode, ctxt *context) error {
	b, err := ctxt.pop()
	if err != nil {
		return err
	}
	a, err := ctxt.pop()
	if err != nil {
		return err
	}
	switch opcode {
	case DW_OP_and:
		ctxt.push(a & b)
	case DW_OP_minus:
		ctxt.push(a - b)
	case DW_OP_mul:
		ctxt.push(a * b)
	case DW_OP_or:
		ctxt.push(a | b)
	case DW_OP_plus:
		ctxt.push(a + b)
	case DW_OP_xor:
		ctxt.push(a ^ b)
	}
	return nil
}

func neg(opcode Opcode, ctxt *context) error {
	top, err := ctxt.top()
	if err != nil {
		return err
	}
	*top = -*top
	return nil
}

func plusuconsts(opcode Opcode, ctxt *context) error {
	top, err := ctxt.top()
	if err != nil {
		return err
	}
	num, err := leb128.DecodeUnsigned[uint64](ctxt.buf)
	if err != nil {
		return err
	}
	*top += int64(num)
	return nil
}

func framebase(opcode Opcode, ctxt *context) error {
	num, err := leb128.DecodeSigned[int64](ctxt.buf)
	if err != nil {
		return err
	}
	ctxt.push(ctxt.FrameBase + num)
	return nil
}

func register(opcode Opcode, ctxt *context) error {
	ctxt.reg = true
	if opcode == DW_OP_regx {
		n, err := leb128.DecodeUnsigned[uint64](ctxt.buf)
		if err != nil {
			return err
		}
		ctxt.pieces = append(ctxt.pieces, Piece{IsRegister: true, RegNum: n})
	} else {
		ctxt.pieces = append(ctxt.pieces, Piece{IsRegister: true, RegNum: uint64(opcode - DW_OP_reg0)})
	}
	return nil
}

func bregister(opcode Opcode, ctxt *context) error {
	var regnum uint64
	if opcode == DW_OP_bregx {
		var err error
		regnum, err = leb128.DecodeUnsigned[uint64](ctxt.buf)
		if err != nil {
			return err
		}
	} else {
		regnum = uint64(opcode - DW_OP_breg0)
	}
	offset, err := leb128.DecodeSigned[int64](ctxt.buf)
	if err != nil {
		return err
	}
	if ctxt.Reg(regnum) == nil {
		return fmt.Errorf("register %d not available", regnum)
	}
	ctxt.push(int64(ctxt.Uint64Val(regnum)) + offset)
	return nil
}

func piece(opcode Opcode, ctxt *context) error {
	sz, err := leb128.DecodeUnsigned[uint64](ctxt.buf)
	if err != nil {
		return err
	}
	if ctxt.reg {
		ctxt.reg = false
		ctxt.pieces[len(ctxt.pieces)-1].Size = int(sz)
		return nil
	}

	if len(ctxt.stack) == 0 {
		return errEmptyStack
	}

	addr := ctxt.stack[len(ctxt.stack)-1]
	ctxt.pieces = append(ctxt.pieces, Piece{Size: int(sz), Addr: addr})
	ctxt.stack = ctxt.stack[:0]
	return nil
}

func nop(opcode Opcode, ctxt *context) error {
	return nil
}
