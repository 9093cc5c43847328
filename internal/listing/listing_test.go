package listing

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pvmkit/internal/disasm"
	"pvmkit/internal/isa"
)

var sample = []byte{
	0x33, 0x01, 0x0a, 0x00, 0x00, 0x00, // load_imm r1, 0xa
	0x51, 0x01, 0x00, 0x00, 0x00, 0x00, 0x0f, 0x00, 0x00, 0x00, // branch_eq_imm r1, 0x0, +15
	0x28, 0xf6, 0xff, 0xff, 0xff, // jump -10
	0x00, // trap
	0xfe, 0x02, 0x68, 0x69, // data x"6869"
}

func TestFormat(t *testing.T) {
	p, err := disasm.Disassemble(sample)
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"0000  load_imm       r1, 0xa",
		"0006  branch_eq_imm  r1, 0x0, +15",
		"0010  jump           -10",
		"0015  trap",
		"0016  data           x\"6869\"",
		"",
	}, "\n")
	if diff := cmp.Diff(want, Format(p, DefaultOptions)); diff != "" {
		t.Errorf("Format mismatch (-want +got):\n%s", diff)
	}

	wantLabels := strings.Join([]string{
		"    load_imm       r1, 0xa",
		"L_0006:",
		"    branch_eq_imm  r1, 0x0, L_0015",
		"    jump           L_0006",
		"L_0015:",
		"    trap",
		"    data           x\"6869\"",
		"",
	}, "\n")
	if diff := cmp.Diff(wantLabels, Format(p, Options{Labels: true})); diff != "" {
		t.Errorf("Format with labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatRaw(t *testing.T) {
	p, err := disasm.Disassemble([]byte{0x64, 0x01, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	got := Format(p, Options{Offsets: true, Raw: true})
	if !strings.HasSuffix(got, "; 64 01 02\n") {
		t.Errorf("raw column missing: %q", got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	p, err := disasm.Disassemble(sample)
	if err != nil {
		t.Fatal(err)
	}
	for _, opts := range []Options{DefaultOptions, {Labels: true}, {Offsets: true, Labels: true, Raw: true}} {
		parsed, err := Parse(Format(p, opts))
		if err != nil {
			t.Fatalf("Parse(Format(%+v)) error = %v", opts, err)
		}
		if diff := cmp.Diff(p.Insts, parsed.Insts,
			cmpopts.IgnoreFields(disasm.Inst{}, "Raw"),
			cmpopts.EquateEmpty(),
		); diff != "" {
			t.Errorf("round trip with %+v mismatch (-want +got):\n%s", opts, diff)
		}
	}
}

func TestParse(t *testing.T) {
	src := `
; count down from ten
start:
	load_imm r1, 10
loop:   add_imm_32 r1, r1, -1       ; decrement
	branch_ne_imm r1, 0, loop
	store_imm_u16 0x2000, 0xffff
	data "hi"
	blob x"01 02 03"
	jump start
`
	p, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}

	want := disasm.Stream{
		{Opcode: isa.LOAD_IMM, Offset: 0, Operands: []disasm.Operand{{Value: 1}, {Value: 10}}},
		{Opcode: isa.ADD_IMM_32, Offset: 6, Operands: []disasm.Operand{{Value: 1}, {Value: 1}, {Value: 0xffffffff}}},
		{Opcode: isa.BRANCH_NE_IMM, Offset: 13, Operands: []disasm.Operand{{Value: 1}, {Value: 0}, {Value: uint64(uint32(0xfffffff9))}}},
		{Opcode: isa.STORE_IMM_U16, Offset: 23, Operands: []disasm.Operand{{Value: 0x2000}, {Value: 0xffff}}},
		{Opcode: isa.DATA, Offset: 30, Operands: []disasm.Operand{{Data: []byte("hi")}}},
		{Opcode: isa.BLOB, Offset: 34, Operands: []disasm.Operand{{Data: []byte{1, 2, 3}}}},
		{Opcode: isa.JUMP, Offset: 40, Operands: []disasm.Operand{{Value: uint64(uint32(0xffffffd8))}}},
	}
	if diff := cmp.Diff(want, p.Insts); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if got := p.Metadata[disasm.MetaLength]; got != "45" {
		t.Errorf("length = %s, want 45", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unknown mnemonic", "trap\nfrobnicate r1", 2, "unknown instruction"},
		{"operand count", "move_reg r1", 1, "takes 2 operands, got 1"},
		{"bad register", "move_reg r1, x2", 1, "expected register"},
		{"register out of file", "move_reg r1, r13", 1, "out of range"},
		{"immediate overflow", "store_imm_u8 0, 256", 1, "exceeds 8-bit"},
		{"negative overflow", "store_imm_u8 0, -129", 1, "does not fit"},
		{"undefined label", "trap\n\njump nowhere", 3, "undefined label"},
		{"duplicate label", "a: trap\na: trap", 2, "redefined"},
		{"bad hex", "data x\"zz\"", 1, "bad hex literal"},
		{"data too long", "data x\"" + strings.Repeat("00", 256) + "\"", 1, "exceeds maximum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if perr.Line != tt.line {
				t.Errorf("line = %d, want %d", perr.Line, tt.line)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}

func TestParseCommentInString(t *testing.T) {
	p, err := Parse(`data "a;b" ; trailing`)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(p.Insts[0].Operands[0].Data); got != "a;b" {
		t.Errorf("payload = %q, want %q", got, "a;b")
	}
}

func TestParseEmpty(t *testing.T) {
	p, err := Parse("  \n; nothing\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Insts) != 0 {
		t.Errorf("expected empty program, got %d instructions", len(p.Insts))
	}
}
