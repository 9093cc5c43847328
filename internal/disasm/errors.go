package disasm

import (
	"fmt"

	"pvmkit/internal/isa"
)

// UnknownOpcodeError reports a byte at Offset that is not in the table.
type UnknownOpcodeError struct {
	Offset int
	Value  byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02x at offset 0x%x", e.Value, e.Offset)
}

func (e *UnknownOpcodeError) Is(target error) bool { return target == isa.ErrUnknownOpcode }

// TruncatedInstructionError reports an instruction at Offset that needs
// Expected bytes while only Available remain in the buffer.
type TruncatedInstructionError struct {
	Offset    int
	Expected  int
	Available int
}

func (e *TruncatedInstructionError) Error() string {
	return fmt.Sprintf("truncated instruction at offset 0x%x: need %d bytes, have %d",
		e.Offset, e.Expected, e.Available)
}

func (e *TruncatedInstructionError) Is(target error) bool { return target == isa.ErrTruncated }

// InvalidOperandError reports an operand that decodes but violates its
// descriptor.
type InvalidOperandError struct {
	Offset  int
	Operand int
	Reason  string
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("invalid operand %d of instruction at offset 0x%x: %s", e.Operand, e.Offset, e.Reason)
}

func (e *InvalidOperandError) Is(target error) bool { return target == isa.ErrInvalidOperand }
