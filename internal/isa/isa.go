// Package isa defines the PVM instruction table: one immutable descriptor
// per assigned opcode, with the operand layout used by both the
// disassembler and the assembler.
package isa

import (
	"errors"
	"fmt"
)

// Opcode identifies an instruction kind.
type Opcode uint8

// NumRegisters is the size of the PVM register file (r0..r12).
const NumRegisters = 13

// Kind is the encoding of a single operand.
type Kind int

const (
	// Reg is a one byte register index.
	Reg Kind = iota
	// Imm is an unsigned little-endian immediate.
	Imm
	// Off is a signed little-endian branch offset relative to the
	// start of the instruction.
	Off
	// Blob is a length-prefixed byte payload.
	Blob
)

func (k Kind) String() string {
	switch k {
	case Reg:
		return "reg"
	case Imm:
		return "imm"
	case Off:
		return "off"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operand describes how one operand is laid out.
//
// For Reg, Imm and Off, Width is the number of encoded bytes. For Blob,
// Width is the width of the length prefix and Max bounds the payload.
type Operand struct {
	Kind  Kind
	Width int
	Max   int
}

// Signed reports whether the operand value is two's complement.
func (o Operand) Signed() bool { return o.Kind == Off }

// Limit returns the largest encodable value of a fixed-width operand.
func (o Operand) Limit() uint64 {
	if o.Width >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(o.Width)) - 1
}

// Validate applies the operand's validity predicate to a fixed-width value.
func (o Operand) Validate(v uint64) error {
	if o.Kind == Blob {
		return fmt.Errorf("blob operand has no scalar value")
	}
	if v > o.Limit() {
		return fmt.Errorf("value %#x exceeds %d-bit %s", v, 8*o.Width, o.Kind)
	}
	if o.Kind == Reg && v >= NumRegisters {
		return fmt.Errorf("register r%d out of range (r0..r%d)", v, NumRegisters-1)
	}
	return nil
}

// ValidatePayload checks a blob payload length against the declared bounds.
func (o Operand) ValidatePayload(n int) error {
	if o.Kind != Blob {
		return fmt.Errorf("%s operand has no payload", o.Kind)
	}
	if n > o.Max {
		return fmt.Errorf("payload of %d bytes exceeds maximum %d", n, o.Max)
	}
	return nil
}

// Descriptor is the static metadata of one opcode.
type Descriptor struct {
	Opcode     Opcode
	Mnemonic   string
	Operands   []Operand
	Terminator bool
}

// Variable reports whether the instruction length depends on a length prefix.
func (d Descriptor) Variable() bool {
	n := len(d.Operands)
	return n > 0 && d.Operands[n-1].Kind == Blob
}

// FixedLen is the length of the opcode byte plus every fixed-width operand,
// including the length prefix of a trailing blob.
func (d Descriptor) FixedLen() int {
	n := 1
	for _, op := range d.Operands {
		n += op.Width
	}
	return n
}

// Len returns the total instruction length given the payload size of a
// trailing blob. payload is ignored for fixed-width instructions.
func (d Descriptor) Len(payload int) int {
	if d.Variable() {
		return d.FixedLen() + payload
	}
	return d.FixedLen()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.Mnemonic, d.Opcode)
}

// Errors shared by the decoder and the encoder. Typed errors in the
// disasm and asm packages match these with errors.Is.
var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrTruncated      = errors.New("truncated instruction")
	ErrInvalidOperand = errors.New("invalid operand")
)
