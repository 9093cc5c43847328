// Package asm encodes decoded or hand-built PVM programs back to bytecode.
package asm

import (
	"encoding/binary"
	"fmt"

	"pvmkit/internal/disasm"
	"pvmkit/internal/isa"
)

// UnknownOpcodeError reports an instruction whose opcode is not in the table.
type UnknownOpcodeError struct {
	Instruction int
	Value       byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("instruction %d: unknown opcode 0x%02x", e.Instruction, e.Value)
}

func (e *UnknownOpcodeError) Is(target error) bool { return target == isa.ErrUnknownOpcode }

// InvalidOperandError reports an operand list or value that does not fit
// the instruction's descriptor.
type InvalidOperandError struct {
	Instruction int
	Operand     int
	Reason      string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("instruction %d operand %d: %s", e.Instruction, e.Operand, e.Reason)
}

func (e *InvalidOperandError) Is(target error) bool { return target == isa.ErrInvalidOperand }

// Assemble encodes every instruction of p in order. Raw spans and metadata
// are ignored; the output is always the canonical encoding of the
// structured operands, so a program produced by disasm.Disassemble
// reassembles to its original bytes.
func Assemble(p *disasm.Program) ([]byte, error) {
	if p == nil {
		return []byte{}, nil
	}
	out := make([]byte, 0, p.Len())
	for i, in := range p.Insts {
		var err error
		if out, err = appendInst(out, i, in); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Size returns the encoded length of in without encoding it.
func Size(in disasm.Inst) (int, error) {
	d, ok := isa.Lookup(in.Opcode)
	if !ok {
		return 0, &UnknownOpcodeError{Value: byte(in.Opcode)}
	}
	payload := 0
	if d.Variable() && len(in.Operands) == len(d.Operands) {
		payload = len(in.Operands[len(in.Operands)-1].Data)
	}
	return d.Len(payload), nil
}

func appendInst(out []byte, idx int, in disasm.Inst) ([]byte, error) {
	d, ok := isa.Lookup(in.Opcode)
	if !ok {
		return nil, &UnknownOpcodeError{Instruction: idx, Value: byte(in.Opcode)}
	}
	if len(in.Operands) != len(d.Operands) {
		return nil, &InvalidOperandError{
			Instruction: idx,
			Operand:     min(len(in.Operands), len(d.Operands)),
			Reason:      fmt.Sprintf("%s takes %d operands, got %d", d.Mnemonic, len(d.Operands), len(in.Operands)),
		}
	}

	out = append(out, byte(d.Opcode))
	for j, spec := range d.Operands {
		op := in.Operands[j]
		if spec.Kind == isa.Blob {
			if op.Value != 0 {
				return nil, &InvalidOperandError{Instruction: idx, Operand: j, Reason: "blob operand carries a scalar value"}
			}
			if err := spec.ValidatePayload(len(op.Data)); err != nil {
				return nil, &InvalidOperandError{Instruction: idx, Operand: j, Reason: err.Error()}
			}
			out = appendUint(out, spec.Width, uint64(len(op.Data)))
			out = append(out, op.Data...)
			continue
		}
		if len(op.Data) != 0 {
			return nil, &InvalidOperandError{Instruction: idx, Operand: j, Reason: fmt.Sprintf("%s operand carries a payload", spec.Kind)}
		}
		if err := spec.Validate(op.Value); err != nil {
			return nil, &InvalidOperandError{Instruction: idx, Operand: j, Reason: err.Error()}
		}
		out = appendUint(out, spec.Width, op.Value)
	}
	return out, nil
}

func appendUint(b []byte, width int, v uint64) []byte {
	switch width {
	case 1:
		return append(b, byte(v))
	case 2:
		return binary.LittleEndian.AppendUint16(b, uint16(v))
	case 4:
		return binary.LittleEndian.AppendUint32(b, uint32(v))
	case 8:
		return binary.LittleEndian.AppendUint64(b, v)
	}
	for i := 0; i < width; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}
