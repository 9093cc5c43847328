package disasm

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"pvmkit/internal/isa"
)

// Disassemble decodes code into a Program. Decoding is all or nothing: an
// unknown opcode, a truncated instruction or an operand outside its
// descriptor fails the whole call.
//
// The returned program never aliases code.
func Disassemble(code []byte) (*Program, error) {
	buf := bytes.Clone(code)
	p := &Program{
		Insts:    make(Stream, 0),
		Metadata: make(map[string]string),
	}

	for pc := 0; pc < len(buf); {
		in, err := decodeAt(buf, pc)
		if err != nil {
			return nil, err
		}
		p.Insts = append(p.Insts, in)
		pc += len(in.Raw)
	}

	p.Metadata[MetaLength] = strconv.Itoa(len(buf))
	p.Metadata[MetaInstructions] = strconv.Itoa(len(p.Insts))
	p.Metadata[MetaWarnings] = "0"
	lint(p)
	return p, nil
}

// decodeAt decodes the instruction starting at pc.
func decodeAt(code []byte, pc int) (Inst, error) {
	op := isa.Opcode(code[pc])
	d, ok := isa.Lookup(op)
	if !ok {
		return Inst{}, &UnknownOpcodeError{Offset: pc, Value: code[pc]}
	}

	avail := len(code) - pc
	need := d.FixedLen()
	if avail < need {
		return Inst{}, &TruncatedInstructionError{Offset: pc, Expected: need, Available: avail}
	}

	operands := make([]Operand, 0, len(d.Operands))
	pos := pc + 1
	for i, spec := range d.Operands {
		v := readUint(code[pos : pos+spec.Width])
		pos += spec.Width

		if spec.Kind == isa.Blob {
			n := int(v)
			if err := spec.ValidatePayload(n); err != nil {
				return Inst{}, &InvalidOperandError{Offset: pc, Operand: i, Reason: err.Error()}
			}
			need = d.Len(n)
			if avail < need {
				return Inst{}, &TruncatedInstructionError{Offset: pc, Expected: need, Available: avail}
			}
			operands = append(operands, Operand{Data: code[pos : pos+n : pos+n]})
			pos += n
			continue
		}

		if err := spec.Validate(v); err != nil {
			return Inst{}, &InvalidOperandError{Offset: pc, Operand: i, Reason: err.Error()}
		}
		operands = append(operands, Operand{Value: v})
	}

	return Inst{
		Opcode:   op,
		Offset:   pc,
		Operands: operands,
		Raw:      code[pc:pos:pos],
	}, nil
}

func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	}
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// lint records non-fatal findings: branches that do not land on an
// instruction, and code that runs off the end of the program.
func lint(p *Program) {
	size := p.Len()
	for _, in := range p.Insts {
		target, ok := in.Target()
		if !ok {
			continue
		}
		if target < 0 || target >= size {
			p.warnf("%s at %#x targets %#x outside the program", in.Mnemonic(), in.Offset, target)
			continue
		}
		if _, ok := p.Index(target); !ok {
			p.warnf("%s at %#x targets %#x inside an instruction", in.Mnemonic(), in.Offset, target)
		}
	}

	for i := len(p.Insts) - 1; i >= 0; i-- {
		in := p.Insts[i]
		if in.Opcode == isa.DATA || in.Opcode == isa.BLOB {
			continue
		}
		if d, _ := isa.Lookup(in.Opcode); !d.Terminator {
			p.warnf("program does not end with a terminator (last is %s at %#x)", d.Mnemonic, in.Offset)
		}
		break
	}
}
