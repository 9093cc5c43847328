package disasm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pvmkit/internal/isa"
)

func TestDisassembleEmpty(t *testing.T) {
	p, err := Disassemble(nil)
	if err != nil {
		t.Fatalf("Disassemble(nil) error = %v", err)
	}
	if len(p.Insts) != 0 {
		t.Errorf("expected no instructions, got %d", len(p.Insts))
	}
	if p.Metadata[MetaLength] != "0" || p.Metadata[MetaInstructions] != "0" {
		t.Errorf("unexpected metadata %v", p.Metadata)
	}
	if w := p.Warnings(); len(w) != 0 {
		t.Errorf("unexpected warnings %v", w)
	}
}

func TestDisassemble(t *testing.T) {
	code := []byte{
		0x33, 0x01, 0x78, 0x56, 0x34, 0x12, // load_imm r1, 0x12345678
		0xc8, 0x02, 0x01, 0x01, // add_64 r2, r1, r1
		0xfe, 0x02, 0xaa, 0xbb, // data "aabb"
		0x00, // trap
	}
	p, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble error = %v", err)
	}

	want := Stream{
		{Opcode: isa.LOAD_IMM, Offset: 0, Operands: []Operand{{Value: 1}, {Value: 0x12345678}}, Raw: code[0:6]},
		{Opcode: isa.ADD_64, Offset: 6, Operands: []Operand{{Value: 2}, {Value: 1}, {Value: 1}}, Raw: code[6:10]},
		{Opcode: isa.DATA, Offset: 10, Operands: []Operand{{Data: []byte{0xaa, 0xbb}}}, Raw: code[10:14]},
		{Opcode: isa.TRAP, Offset: 14, Operands: []Operand{}, Raw: code[14:15]},
	}
	if diff := cmp.Diff(want, p.Insts); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if got := p.Metadata[MetaLength]; got != "15" {
		t.Errorf("length = %s, want 15", got)
	}
	if got := p.Metadata[MetaInstructions]; got != "4" {
		t.Errorf("instructions = %s, want 4", got)
	}
	if !bytes.Equal(p.Bytes(), code) {
		t.Errorf("raw spans do not reconstruct input: %x", p.Bytes())
	}
}

func TestDisassembleDoesNotAlias(t *testing.T) {
	code := []byte{0x0a, 0x01, 0x00, 0x00, 0x00}
	p, err := Disassemble(code)
	if err != nil {
		t.Fatal(err)
	}
	code[1] = 0xff
	if p.Insts[0].Raw[1] != 0x01 {
		t.Error("program raw span aliases the caller's buffer")
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		offset int
		value  byte
	}{
		{"first byte", []byte{0x02}, 0, 0x02},
		{"after trap", []byte{0x00, 0x01, 0xe6}, 2, 0xe6},
		{"after fixed operand", []byte{0x64, 0x01, 0x02, 0x35}, 3, 0x35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Disassemble(tt.code)
			if p != nil {
				t.Error("expected no partial program")
			}
			var uerr *UnknownOpcodeError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected UnknownOpcodeError, got %v", err)
			}
			if uerr.Offset != tt.offset || uerr.Value != tt.value {
				t.Errorf("got offset %d value 0x%02x, want %d 0x%02x", uerr.Offset, uerr.Value, tt.offset, tt.value)
			}
			if !errors.Is(err, isa.ErrUnknownOpcode) {
				t.Error("error does not match isa.ErrUnknownOpcode")
			}
		})
	}
}

func TestDisassembleTruncated(t *testing.T) {
	tests := []struct {
		name      string
		code      []byte
		offset    int
		expected  int
		available int
	}{
		{"move_reg missing one byte", []byte{0x64, 0x01}, 0, 3, 2},
		{"ecalli after trap", []byte{0x00, 0x0a, 0x01}, 1, 5, 2},
		{"data missing prefix", []byte{0xfe}, 0, 2, 1},
		{"data short payload", []byte{0xfe, 0x04, 0x01, 0x02}, 0, 6, 4},
		{"blob short prefix", []byte{0xff, 0x01}, 0, 3, 2},
		{"blob short payload", []byte{0xff, 0x02, 0x00, 0x09}, 0, 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(tt.code)
			var terr *TruncatedInstructionError
			if !errors.As(err, &terr) {
				t.Fatalf("expected TruncatedInstructionError, got %v", err)
			}
			if terr.Offset != tt.offset || terr.Expected != tt.expected || terr.Available != tt.available {
				t.Errorf("got %+v, want offset %d expected %d available %d",
					*terr, tt.offset, tt.expected, tt.available)
			}
			if !errors.Is(err, isa.ErrTruncated) {
				t.Error("error does not match isa.ErrTruncated")
			}
		})
	}
}

func TestDisassembleInvalidOperand(t *testing.T) {
	tests := []struct {
		name    string
		code    []byte
		operand int
	}{
		{"register out of file", []byte{0x64, 0x0d, 0x00}, 0},
		{"second register", []byte{0xd2, 0x00, 0x01, 0xff}, 2},
		{"blob above maximum", append([]byte{0xff, 0x01, 0x10}, make([]byte, 0x1001)...), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(tt.code)
			var ierr *InvalidOperandError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected InvalidOperandError, got %v", err)
			}
			if ierr.Operand != tt.operand {
				t.Errorf("operand = %d, want %d", ierr.Operand, tt.operand)
			}
		})
	}
}

func TestDisassembleWarnings(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want []string
	}{
		{
			name: "clean",
			code: []byte{0x28, 0x05, 0x00, 0x00, 0x00, 0x00},
			want: []string{},
		},
		{
			name: "no terminator",
			code: []byte{0x64, 0x00, 0x01},
			want: []string{"program does not end with a terminator (last is move_reg at 0x0)"},
		},
		{
			name: "trailing data is ignored for terminator check",
			code: []byte{0x00, 0xfe, 0x01, 0x41},
			want: []string{},
		},
		{
			name: "target outside",
			code: []byte{0x28, 0x10, 0x00, 0x00, 0x00},
			want: []string{"jump at 0x0 targets 0x10 outside the program"},
		},
		{
			name: "negative target",
			code: []byte{0x00, 0x28, 0xfe, 0xff, 0xff, 0xff},
			want: []string{"jump at 0x1 targets -0x1 outside the program"},
		},
		{
			name: "target mid instruction",
			code: []byte{0x28, 0x02, 0x00, 0x00, 0x00},
			want: []string{"jump at 0x0 targets 0x2 inside an instruction"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Disassemble(tt.code)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, p.Warnings()); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	in := Inst{Opcode: isa.BRANCH_EQ, Offset: 0x20, Operands: []Operand{{Value: 1}, {Value: 2}, {Value: 0xfffffff0}}}
	got, ok := in.Target()
	if !ok || got != 0x10 {
		t.Errorf("Target() = %#x, %v; want 0x10, true", got, ok)
	}
	if _, ok := (Inst{Opcode: isa.TRAP}).Target(); ok {
		t.Error("trap should have no target")
	}
}
