package listing

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pvmkit/internal/disasm"
	"pvmkit/internal/isa"
)

// Error is a parse failure on a specific source line.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func lineErr(line int, format string, args ...any) error {
	return &Error{Line: line, Err: fmt.Errorf(format, args...)}
}

// labelRef is an offset operand naming a label that is resolved once every
// instruction has been sized.
type labelRef struct {
	inst    int
	operand int
	name    string
	line    int
}

// Parse reads assembly text into a Program. Instruction offsets are
// computed from the encoded sizes; Raw spans are left empty so the
// assembler encodes from the operands.
//
// The accepted syntax is what Format emits: an optional leading hex
// offset column, "name:" label definitions, ';' comments, and comma
// separated operands.
func Parse(src string) (*disasm.Program, error) {
	p := &disasm.Program{
		Insts:    make(disasm.Stream, 0),
		Metadata: make(map[string]string),
	}
	labels := make(map[string]int)
	var refs []labelRef
	pc := 0

	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := raw
		if idx := commentIndex(line); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)

		for line != "" {
			name, rest, ok := cutLabel(line)
			if !ok {
				break
			}
			if _, dup := labels[name]; dup {
				return nil, lineErr(lineNo, "label %q redefined", name)
			}
			labels[name] = pc
			line = strings.TrimSpace(rest)
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 1 && isHex(fields[0]) {
			line = strings.TrimSpace(line[len(fields[0]):])
			fields = fields[1:]
		}

		mnemonic := strings.ToLower(fields[0])
		d, ok := isa.ByMnemonic(mnemonic)
		if !ok {
			return nil, lineErr(lineNo, "unknown instruction %q", fields[0])
		}

		var args []string
		if operandStr := strings.TrimSpace(line[len(fields[0]):]); operandStr != "" {
			args = splitOperands(operandStr)
		}
		if len(args) != len(d.Operands) {
			return nil, lineErr(lineNo, "%s takes %d operands, got %d", d.Mnemonic, len(d.Operands), len(args))
		}

		in := disasm.Inst{
			Opcode:   d.Opcode,
			Offset:   pc,
			Operands: make([]disasm.Operand, len(args)),
		}
		payload := 0
		for j, arg := range args {
			spec := d.Operands[j]
			if spec.Kind == isa.Off && isIdent(arg) {
				refs = append(refs, labelRef{inst: len(p.Insts), operand: j, name: arg, line: lineNo})
				continue
			}
			op, err := parseOperand(spec, arg)
			if err != nil {
				return nil, lineErr(lineNo, "operand %d of %s: %v", j+1, d.Mnemonic, err)
			}
			payload = len(op.Data)
			in.Operands[j] = op
		}

		p.Insts = append(p.Insts, in)
		pc += d.Len(payload)
	}

	for _, ref := range refs {
		target, ok := labels[ref.name]
		if !ok {
			return nil, lineErr(ref.line, "undefined label %q", ref.name)
		}
		in := &p.Insts[ref.inst]
		rel := target - in.Offset
		if rel < math.MinInt32 || rel > math.MaxInt32 {
			return nil, lineErr(ref.line, "label %q out of branch range", ref.name)
		}
		in.Operands[ref.operand] = disasm.Operand{Value: uint64(uint32(int32(rel)))}
	}

	p.Metadata[disasm.MetaLength] = strconv.Itoa(pc)
	p.Metadata[disasm.MetaInstructions] = strconv.Itoa(len(p.Insts))
	return p, nil
}

func parseOperand(spec isa.Operand, arg string) (disasm.Operand, error) {
	switch spec.Kind {
	case isa.Reg:
		s := strings.ToLower(arg)
		if !strings.HasPrefix(s, "r") {
			return disasm.Operand{}, fmt.Errorf("expected register, got %q", arg)
		}
		v, err := strconv.ParseUint(s[1:], 10, 8)
		if err != nil {
			return disasm.Operand{}, fmt.Errorf("bad register %q", arg)
		}
		if err := spec.Validate(v); err != nil {
			return disasm.Operand{}, err
		}
		return disasm.Operand{Value: v}, nil

	case isa.Blob:
		data, err := parseBlob(arg)
		if err != nil {
			return disasm.Operand{}, err
		}
		if err := spec.ValidatePayload(len(data)); err != nil {
			return disasm.Operand{}, err
		}
		return disasm.Operand{Data: data}, nil

	default:
		v, err := parseNumber(arg, spec.Width)
		if err != nil {
			return disasm.Operand{}, err
		}
		if err := spec.Validate(v); err != nil {
			return disasm.Operand{}, err
		}
		return disasm.Operand{Value: v}, nil
	}
}

// parseNumber accepts decimal, 0x, 0o and 0b literals. Negative values are
// stored as two's complement of the operand width.
func parseNumber(s string, width int) (uint64, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", s)
		}
		bits := 8 * width
		if bits < 64 && v < -(int64(1)<<(bits-1)) {
			return 0, fmt.Errorf("value %d does not fit %d bits", v, bits)
		}
		u := uint64(v)
		if bits < 64 {
			u &= 1<<uint(bits) - 1
		}
		return u, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}

// parseBlob accepts x"<hex>" or a Go quoted string.
func parseBlob(s string) ([]byte, error) {
	if strings.HasPrefix(s, "x\"") || strings.HasPrefix(s, "X\"") {
		text, err := strconv.Unquote(s[1:])
		if err != nil {
			return nil, fmt.Errorf("bad hex literal %s", s)
		}
		data, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return nil, fmt.Errorf("bad hex literal %s: %v", s, err)
		}
		return data, nil
	}
	if strings.HasPrefix(s, "\"") {
		text, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s", s)
		}
		return []byte(text), nil
	}
	return nil, fmt.Errorf("expected x\"...\" or quoted string, got %q", s)
}

// cutLabel splits a leading "name:" off line.
func cutLabel(line string) (name, rest string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", line, false
	}
	name = line[:idx]
	if !isIdent(name) {
		return "", line, false
	}
	return name, line[idx+1:], true
}

// splitOperands splits on commas outside quoted literals.
func splitOperands(s string) []string {
	var result []string
	quoted := false
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				result = append(result, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	return append(result, strings.TrimSpace(s[last:]))
}

// commentIndex returns the position of the first ';' outside a quoted
// literal, or -1.
func commentIndex(s string) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return i
			}
		}
	}
	return -1
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return s != ""
}
