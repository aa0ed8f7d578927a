package op_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/go-delve/leb128/pkg/dwarf/dwarfbuilder"
	"github.com/go-delve/leb128/pkg/dwarf/leb128"
	"github.com/go-delve/leb128/pkg/dwarf/op"
)

func TestExecuteStackProgram(t *testing.T) {
	var (
		instructions = []byte{byte(op.DW_OP_consts), 0x1c, byte(op.DW_OP_consts), 0x1c, byte(op.DW_OP_plus)}
		expected     = int64(56)
	)
	actual, _, err := op.ExecuteStackProgram(op.DwarfRegisters{}, instructions, 8)
	if err != nil {
		t.Fatal(err)
	}

	if actual != expected {
		t.Fatalf("actual %d != expected %d", actual, expected)
	}
}

func TestExecuteStackProgramOperands(t *testing.T) {
	regs := op.NewDwarfRegisters(0x1000, nil)
	regs.CFA = 0x7ff0
	regs.FrameBase = 0x8000
	regs.AddReg(7, op.DwarfRegisterFromUint64(0x2000))

	tc := []struct {
		name     string
		prog     []byte
		expected int64
	}{
		{"fbreg", dwarfbuilder.LocationBlock(op.DW_OP_fbreg, -128), 0x8000 - 128},
		{"breg7", dwarfbuilder.LocationBlock(op.DW_OP_breg0+7, 16), 0x2010},
		{"bregx", dwarfbuilder.LocationBlock(op.DW_OP_bregx, uint(7), -16), 0x1ff0},
		{"cfa", dwarfbuilder.LocationBlock(op.DW_OP_call_frame_cfa, op.DW_OP_plus_uconst, uint(16)), 0x8000},
		{"addr", dwarfbuilder.LocationBlock(op.DW_OP_addr, []byte{0x10, 0, 0, 0, 0, 0, 0, 0}), 0x1010},
		{"const2s", dwarfbuilder.LocationBlock(op.DW_OP_const2s, []byte{0xfe, 0xff}), -2},
		{"const1u", dwarfbuilder.LocationBlock(op.DW_OP_const1u, []byte{0xfe}), 0xfe},
		{"lits", dwarfbuilder.LocationBlock(op.DW_OP_lit0+3, op.DW_OP_lit0+5, op.DW_OP_swap, op.DW_OP_minus), 2},
		{"consts min", dwarfbuilder.LocationBlock(op.DW_OP_consts, int64(-1<<63)), -1 << 63},
		{"dup mul", dwarfbuilder.LocationBlock(op.DW_OP_constu, uint(12), op.DW_OP_dup, op.DW_OP_mul, op.DW_OP_neg), -144},
	}

	for _, tgt := range tc {
		actual, pieces, err := op.ExecuteStackProgram(*regs, tgt.prog, 8)
		if err != nil {
			t.Errorf("%s: %v", tgt.name, err)
			continue
		}
		if pieces != nil {
			t.Errorf("%s: unexpected pieces %v", tgt.name, pieces)
		}
		if actual != tgt.expected {
			t.Errorf("%s: actual %#x != expected %#x", tgt.name, actual, tgt.expected)
		}
	}
}

func TestExecuteStackProgramPieces(t *testing.T) {
	prog := dwarfbuilder.LocationBlock(op.DW_OP_reg0+3, op.DW_OP_piece, uint(8), op.DW_OP_regx, uint(130), op.DW_OP_piece, uint(4))
	_, pieces, err := op.ExecuteStackProgram(op.DwarfRegisters{}, prog, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(pieces) != 2 {
		t.Fatalf("expected two pieces, got %v", pieces)
	}
	if !pieces[0].IsRegister || pieces[0].RegNum != 3 || pieces[0].Size != 8 {
		t.Errorf("first piece %#v", pieces[0])
	}
	if !pieces[1].IsRegister || pieces[1].RegNum != 130 || pieces[1].Size != 4 {
		t.Errorf("second piece %#v", pieces[1])
	}
}

func TestExecuteStackProgramErrors(t *testing.T) {
	overflow := append([]byte{byte(op.DW_OP_constu)}, bytes.Repeat([]byte{0x80}, 9)...)
	overflow = append(overflow, 0x02)
	_, _, err := op.ExecuteStackProgram(op.DwarfRegisters{}, overflow, 8)
	if !errors.Is(err, leb128.ErrOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}

	_, _, err = op.ExecuteStackProgram(op.DwarfRegisters{}, []byte{byte(op.DW_OP_consts), 0x80}, 8)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}

	_, _, err = op.ExecuteStackProgram(op.DwarfRegisters{}, []byte{byte(op.DW_OP_plus)}, 8)
	if err == nil {
		t.Error("expected an error for an empty stack")
	}

	addr := append([]byte{byte(op.DW_OP_addr)}, make([]byte, 8)...)
	for _, ptrSize := range []int{-1, 0, 3, 16} {
		_, _, err = op.ExecuteStackProgram(op.DwarfRegisters{}, addr, ptrSize)
		if err == nil {
			t.Errorf("expected an error for pointer size %d", ptrSize)
		}
	}

	_, _, err = op.ExecuteStackProgram(op.DwarfRegisters{}, []byte{0xff}, 8)
	if err == nil {
		t.Error("expected an error for an invalid instruction")
	}

	_, _, err = op.ExecuteStackProgram(op.DwarfRegisters{}, dwarfbuilder.LocationBlock(op.DW_OP_breg0+1, 0), 8)
	if err == nil {
		t.Error("expected an error for a missing register")
	}
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	prog := dwarfbuilder.LocationBlock(op.DW_OP_fbreg, -128, op.DW_OP_plus_uconst, uint(12857), op.DW_OP_implicit_value, uint(2), []byte{0xaa, 0xbb}, op.DW_OP_stack_value)
	if err := op.PrettyPrint(&buf, prog); err != nil {
		t.Fatal(err)
	}
	expected := "DW_OP_fbreg -0x80 DW_OP_plus_uconst 0x3239 DW_OP_implicit_value 2 [aabb] DW_OP_stack_value "
	if buf.String() != expected {
		t.Fatalf("expected %q, got %q", expected, buf.String())
	}

	buf.Reset()
	err := op.PrettyPrint(&buf, []byte{byte(op.DW_OP_regx), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f})
	if !errors.Is(err, leb128.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}
