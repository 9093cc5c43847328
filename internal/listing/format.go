// Package listing converts between decoded PVM programs and their
// assembly text form.
package listing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"pvmkit/internal/disasm"
	"pvmkit/internal/isa"
)

// Options controls Format output.
type Options struct {
	// Offsets prefixes each line with the instruction offset in hex.
	Offsets bool
	// Labels replaces branch offsets that land on an instruction with a
	// label and emits the label definitions.
	Labels bool
	// Raw appends the encoded bytes of each instruction as a comment.
	Raw bool
}

// DefaultOptions is what the CLI prints unless told otherwise.
var DefaultOptions = Options{Offsets: true}

// LabelName is the label Format emits for a branch target at offset.
func LabelName(offset int) string {
	return fmt.Sprintf("L_%04x", offset)
}

// Format renders p one instruction per line.
func Format(p *disasm.Program, opts Options) string {
	var labels map[int]bool
	if opts.Labels {
		labels = branchTargets(p)
	}

	var out strings.Builder
	for _, in := range p.Insts {
		if labels[in.Offset] {
			fmt.Fprintf(&out, "%s:\n", LabelName(in.Offset))
		}
		out.WriteString(FormatInst(in, opts, labels))
		out.WriteByte('\n')
	}
	return out.String()
}

// FormatInst renders a single instruction without a trailing newline.
// labels may be nil.
func FormatInst(in disasm.Inst, opts Options, labels map[int]bool) string {
	var line strings.Builder
	if opts.Offsets {
		fmt.Fprintf(&line, "%04x  ", in.Offset)
	} else {
		line.WriteString("    ")
	}

	d, ok := isa.Lookup(in.Opcode)
	if !ok {
		fmt.Fprintf(&line, "%-14s 0x%02x", "?", byte(in.Opcode))
		return line.String()
	}

	ops := make([]string, 0, len(in.Operands))
	for i, op := range in.Operands {
		if i >= len(d.Operands) {
			break
		}
		ops = append(ops, formatOperand(in, d.Operands[i], op, labels))
	}
	if len(ops) == 0 {
		line.WriteString(d.Mnemonic)
	} else {
		fmt.Fprintf(&line, "%-14s %s", d.Mnemonic, strings.Join(ops, ", "))
	}

	if opts.Raw && len(in.Raw) > 0 {
		text := line.String()
		line.Reset()
		fmt.Fprintf(&line, "%-48s ; % x", text, in.Raw)
	}
	return line.String()
}

func formatOperand(in disasm.Inst, spec isa.Operand, op disasm.Operand, labels map[int]bool) string {
	switch spec.Kind {
	case isa.Reg:
		return fmt.Sprintf("r%d", op.Value)
	case isa.Off:
		rel := int(int32(uint32(op.Value)))
		if target := in.Offset + rel; labels[target] {
			return LabelName(target)
		}
		return fmt.Sprintf("%+d", rel)
	case isa.Blob:
		return fmt.Sprintf("x%q", hex.EncodeToString(op.Data))
	default:
		return fmt.Sprintf("0x%x", op.Value)
	}
}

// branchTargets collects offsets that some branch targets and that start
// an instruction.
func branchTargets(p *disasm.Program) map[int]bool {
	targets := make(map[int]bool)
	for _, in := range p.Insts {
		target, ok := in.Target()
		if !ok {
			continue
		}
		if _, ok := p.Index(target); ok {
			targets[target] = true
		}
	}
	return targets
}
