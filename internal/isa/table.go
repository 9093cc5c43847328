package isa

import "sort"

// Instructions without arguments.
const (
	TRAP        Opcode = 0
	FALLTHROUGH Opcode = 1
)

// Instructions with one immediate.
const (
	ECALLI Opcode = 10
)

// Instructions with one register and one extended width immediate.
const (
	LOAD_IMM_64 Opcode = 20
)

// Instructions with two immediates.
const (
	STORE_IMM_U8  Opcode = 30
	STORE_IMM_U16 Opcode = 31
	STORE_IMM_U32 Opcode = 32
	STORE_IMM_U64 Opcode = 33
)

// Instructions with one offset.
const (
	JUMP Opcode = 40
)

// Instructions with one register and one immediate.
const (
	JUMP_IND  Opcode = 50
	LOAD_IMM  Opcode = 51
	LOAD_U8   Opcode = 52
	LOAD_U16  Opcode = 54
	LOAD_U32  Opcode = 56
	LOAD_U64  Opcode = 58
	STORE_U8  Opcode = 59
	STORE_U16 Opcode = 60
	STORE_U32 Opcode = 61
	STORE_U64 Opcode = 62
)

// Instructions with one register, one immediate and one offset.
const (
	LOAD_IMM_JUMP Opcode = 80
	BRANCH_EQ_IMM Opcode = 81
	BRANCH_NE_IMM Opcode = 82
)

// Instructions with two registers.
const (
	MOVE_REG Opcode = 100
	SBRK     Opcode = 101
)

// Instructions with two registers and one immediate.
const (
	ADD_IMM_32 Opcode = 131
	AND_IMM    Opcode = 132
	XOR_IMM    Opcode = 133
	OR_IMM     Opcode = 134
)

// Instructions with two registers and one offset.
const (
	BRANCH_EQ Opcode = 170
	BRANCH_NE Opcode = 171
)

// Instructions with three registers.
const (
	ADD_32 Opcode = 190
	SUB_32 Opcode = 191
	ADD_64 Opcode = 200
	SUB_64 Opcode = 201
	AND    Opcode = 210
	XOR    Opcode = 211
	OR     Opcode = 212
)

// Instructions carrying inline data.
const (
	DATA Opcode = 254
	BLOB Opcode = 255
)

// Operand shorthands for the table below.
var (
	reg    = Operand{Kind: Reg, Width: 1}
	imm8   = Operand{Kind: Imm, Width: 1}
	imm16  = Operand{Kind: Imm, Width: 2}
	imm32  = Operand{Kind: Imm, Width: 4}
	imm64  = Operand{Kind: Imm, Width: 8}
	off    = Operand{Kind: Off, Width: 4}
	data8  = Operand{Kind: Blob, Width: 1, Max: 0xff}
	data16 = Operand{Kind: Blob, Width: 2, Max: 4096}
)

var descriptors = []Descriptor{
	{Opcode: TRAP, Mnemonic: "trap", Terminator: true},
	{Opcode: FALLTHROUGH, Mnemonic: "fallthrough", Terminator: true},

	{Opcode: ECALLI, Mnemonic: "ecalli", Operands: []Operand{imm32}},

	{Opcode: LOAD_IMM_64, Mnemonic: "load_imm_64", Operands: []Operand{reg, imm64}},

	{Opcode: STORE_IMM_U8, Mnemonic: "store_imm_u8", Operands: []Operand{imm32, imm8}},
	{Opcode: STORE_IMM_U16, Mnemonic: "store_imm_u16", Operands: []Operand{imm32, imm16}},
	{Opcode: STORE_IMM_U32, Mnemonic: "store_imm_u32", Operands: []Operand{imm32, imm32}},
	{Opcode: STORE_IMM_U64, Mnemonic: "store_imm_u64", Operands: []Operand{imm32, imm64}},

	{Opcode: JUMP, Mnemonic: "jump", Operands: []Operand{off}, Terminator: true},

	{Opcode: JUMP_IND, Mnemonic: "jump_ind", Operands: []Operand{reg, imm32}, Terminator: true},
	{Opcode: LOAD_IMM, Mnemonic: "load_imm", Operands: []Operand{reg, imm32}},
	{Opcode: LOAD_U8, Mnemonic: "load_u8", Operands: []Operand{reg, imm32}},
	{Opcode: LOAD_U16, Mnemonic: "load_u16", Operands: []Operand{reg, imm32}},
	{Opcode: LOAD_U32, Mnemonic: "load_u32", Operands: []Operand{reg, imm32}},
	{Opcode: LOAD_U64, Mnemonic: "load_u64", Operands: []Operand{reg, imm32}},
	{Opcode: STORE_U8, Mnemonic: "store_u8", Operands: []Operand{reg, imm32}},
	{Opcode: STORE_U16, Mnemonic: "store_u16", Operands: []Operand{reg, imm32}},
	{Opcode: STORE_U32, Mnemonic: "store_u32", Operands: []Operand{reg, imm32}},
	{Opcode: STORE_U64, Mnemonic: "store_u64", Operands: []Operand{reg, imm32}},

	{Opcode: LOAD_IMM_JUMP, Mnemonic: "load_imm_jump", Operands: []Operand{reg, imm32, off}, Terminator: true},
	{Opcode: BRANCH_EQ_IMM, Mnemonic: "branch_eq_imm", Operands: []Operand{reg, imm32, off}},
	{Opcode: BRANCH_NE_IMM, Mnemonic: "branch_ne_imm", Operands: []Operand{reg, imm32, off}},

	{Opcode: MOVE_REG, Mnemonic: "move_reg", Operands: []Operand{reg, reg}},
	{Opcode: SBRK, Mnemonic: "sbrk", Operands: []Operand{reg, reg}},

	{Opcode: ADD_IMM_32, Mnemonic: "add_imm_32", Operands: []Operand{reg, reg, imm32}},
	{Opcode: AND_IMM, Mnemonic: "and_imm", Operands: []Operand{reg, reg, imm32}},
	{Opcode: XOR_IMM, Mnemonic: "xor_imm", Operands: []Operand{reg, reg, imm32}},
	{Opcode: OR_IMM, Mnemonic: "or_imm", Operands: []Operand{reg, reg, imm32}},

	{Opcode: BRANCH_EQ, Mnemonic: "branch_eq", Operands: []Operand{reg, reg, off}},
	{Opcode: BRANCH_NE, Mnemonic: "branch_ne", Operands: []Operand{reg, reg, off}},

	{Opcode: ADD_32, Mnemonic: "add_32", Operands: []Operand{reg, reg, reg}},
	{Opcode: SUB_32, Mnemonic: "sub_32", Operands: []Operand{reg, reg, reg}},
	{Opcode: ADD_64, Mnemonic: "add_64", Operands: []Operand{reg, reg, reg}},
	{Opcode: SUB_64, Mnemonic: "sub_64", Operands: []Operand{reg, reg, reg}},
	{Opcode: AND, Mnemonic: "and", Operands: []Operand{reg, reg, reg}},
	{Opcode: XOR, Mnemonic: "xor", Operands: []Operand{reg, reg, reg}},
	{Opcode: OR, Mnemonic: "or", Operands: []Operand{reg, reg, reg}},

	{Opcode: DATA, Mnemonic: "data", Operands: []Operand{data8}},
	{Opcode: BLOB, Mnemonic: "blob", Operands: []Operand{data16}},
}

var (
	byOpcode   [256]*Descriptor
	byMnemonic = make(map[string]*Descriptor, len(descriptors))
)

func init() {
	for i := range descriptors {
		d := &descriptors[i]
		if byOpcode[d.Opcode] != nil {
			panic("isa: duplicate opcode " + d.String())
		}
		if _, dup := byMnemonic[d.Mnemonic]; dup {
			panic("isa: duplicate mnemonic " + d.Mnemonic)
		}
		for j, op := range d.Operands {
			if op.Kind == Blob && j != len(d.Operands)-1 {
				panic("isa: blob operand must be last in " + d.String())
			}
		}
		byOpcode[d.Opcode] = d
		byMnemonic[d.Mnemonic] = d
	}
}

// Lookup returns the descriptor for op. It is defined for every byte value
// and reports false for unassigned opcodes.
func Lookup(op Opcode) (Descriptor, bool) {
	d := byOpcode[op]
	if d == nil {
		return Descriptor{}, false
	}
	return *d, true
}

// ByMnemonic returns the descriptor with the given mnemonic.
func ByMnemonic(name string) (Descriptor, bool) {
	d, ok := byMnemonic[name]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// All returns every descriptor ordered by opcode.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	sort.Slice(out, func(i, j int) bool { return out[i].Opcode < out[j].Opcode })
	return out
}
