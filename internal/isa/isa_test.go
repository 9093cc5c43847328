package isa

import "testing"

func TestLookupTotal(t *testing.T) {
	assigned := 0
	for v := 0; v < 256; v++ {
		d, ok := Lookup(Opcode(v))
		if !ok {
			if d.Mnemonic != "" {
				t.Errorf("unassigned opcode %d returned descriptor %v", v, d)
			}
			continue
		}
		assigned++
		if d.Opcode != Opcode(v) {
			t.Errorf("Lookup(%d) returned opcode %d", v, d.Opcode)
		}
		back, ok := ByMnemonic(d.Mnemonic)
		if !ok || back.Opcode != d.Opcode {
			t.Errorf("ByMnemonic(%q) = %v, %v", d.Mnemonic, back, ok)
		}
	}
	if assigned != len(All()) {
		t.Errorf("assigned = %d, All() = %d", assigned, len(All()))
	}
}

func TestUnassigned(t *testing.T) {
	for _, v := range []Opcode{2, 9, 11, 53, 102, 230, 253} {
		if _, ok := Lookup(v); ok {
			t.Errorf("opcode %d should be unassigned", v)
		}
	}
}

func TestDescriptorLen(t *testing.T) {
	tests := []struct {
		op       Opcode
		payload  int
		want     int
		variable bool
	}{
		{TRAP, 0, 1, false},
		{ECALLI, 0, 5, false},
		{LOAD_IMM_64, 0, 10, false},
		{STORE_IMM_U64, 0, 13, false},
		{JUMP, 0, 5, false},
		{BRANCH_EQ_IMM, 0, 10, false},
		{MOVE_REG, 0, 3, false},
		{ADD_IMM_32, 0, 7, false},
		{ADD_64, 0, 4, false},
		{DATA, 3, 5, true},
		{BLOB, 10, 13, true},
		{BLOB, 0, 3, true},
	}
	for _, tt := range tests {
		d, ok := Lookup(tt.op)
		if !ok {
			t.Fatalf("opcode %d missing", tt.op)
		}
		if got := d.Len(tt.payload); got != tt.want {
			t.Errorf("%v.Len(%d) = %d, want %d", d, tt.payload, got, tt.want)
		}
		if d.Variable() != tt.variable {
			t.Errorf("%v.Variable() = %v", d, d.Variable())
		}
	}
}

func TestOperandValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      Operand
		value   uint64
		wantErr bool
	}{
		{"reg low", reg, 0, false},
		{"reg high", reg, NumRegisters - 1, false},
		{"reg out of file", reg, NumRegisters, true},
		{"imm8 max", imm8, 0xff, false},
		{"imm8 overflow", imm8, 0x100, true},
		{"imm16 overflow", imm16, 0x10000, true},
		{"imm32 max", imm32, 0xffffffff, false},
		{"imm32 overflow", imm32, 0x100000000, true},
		{"imm64 max", imm64, ^uint64(0), false},
		{"off overflow", off, 1 << 32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%#x) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}

	if err := data8.ValidatePayload(0xff); err != nil {
		t.Errorf("data8 at max: %v", err)
	}
	if err := data16.ValidatePayload(4097); err == nil {
		t.Error("data16 above max should fail")
	}
}
