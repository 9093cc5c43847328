// Package disasm defines the decoded program representation shared by the
// disassembler, the assembler and the listing tools, and decodes raw PVM
// bytecode into it.
package disasm

import (
	"fmt"
	"sort"
	"strconv"

	"pvmkit/internal/isa"
)

// Metadata keys recorded by Disassemble.
const (
	MetaLength       = "length"
	MetaInstructions = "instructions"
	MetaWarnings     = "warnings"
	metaWarnPrefix   = "warning."
)

// Operand is one decoded operand value. Value holds register indexes,
// immediates and offsets (offsets as their unsigned two's complement
// encoding); Data holds blob payloads.
type Operand struct {
	Value uint64 `json:"value,omitempty" cbor:"value,omitempty"`
	Data  []byte `json:"data,omitempty" cbor:"data,omitempty"`
}

// Inst is a single decoded instruction.
type Inst struct {
	Opcode   isa.Opcode `json:"opcode" cbor:"opcode"`
	Offset   int        `json:"offset" cbor:"offset"`
	Operands []Operand  `json:"operands,omitempty" cbor:"operands,omitempty"`
	Raw      []byte     `json:"raw,omitempty" cbor:"raw,omitempty"` // exact bytes consumed
}

// Mnemonic returns the instruction name, or "?" for an unassigned opcode.
func (in Inst) Mnemonic() string {
	d, ok := isa.Lookup(in.Opcode)
	if !ok {
		return "?"
	}
	return d.Mnemonic
}

// Target returns the absolute branch target of the first offset operand.
func (in Inst) Target() (int, bool) {
	d, ok := isa.Lookup(in.Opcode)
	if !ok {
		return 0, false
	}
	for i, spec := range d.Operands {
		if spec.Kind == isa.Off && i < len(in.Operands) {
			return in.Offset + int(int32(uint32(in.Operands[i].Value))), true
		}
	}
	return 0, false
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// Program is a decoded instruction stream plus advisory diagnostics.
type Program struct {
	Insts    Stream            `json:"instructions" cbor:"instructions"`
	Metadata map[string]string `json:"metadata,omitempty" cbor:"metadata,omitempty"`
}

// Len is the total size of the raw spans.
func (p *Program) Len() int {
	n := 0
	for _, in := range p.Insts {
		n += len(in.Raw)
	}
	return n
}

// Bytes concatenates the raw spans in order.
func (p *Program) Bytes() []byte {
	out := make([]byte, 0, p.Len())
	for _, in := range p.Insts {
		out = append(out, in.Raw...)
	}
	return out
}

// Index returns the position of the instruction starting at offset.
func (p *Program) Index(offset int) (int, bool) {
	i := sort.Search(len(p.Insts), func(i int) bool { return p.Insts[i].Offset >= offset })
	if i < len(p.Insts) && p.Insts[i].Offset == offset {
		return i, true
	}
	return 0, false
}

// Warnings returns the non-fatal diagnostics in the order they were recorded.
func (p *Program) Warnings() []string {
	n, _ := strconv.Atoi(p.Metadata[MetaWarnings])
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if w, ok := p.Metadata[metaWarnPrefix+strconv.Itoa(i)]; ok {
			out = append(out, w)
		}
	}
	return out
}

func (p *Program) warnf(format string, args ...any) {
	n, _ := strconv.Atoi(p.Metadata[MetaWarnings])
	p.Metadata[metaWarnPrefix+strconv.Itoa(n)] = fmt.Sprintf(format, args...)
	p.Metadata[MetaWarnings] = strconv.Itoa(n + 1)
}
