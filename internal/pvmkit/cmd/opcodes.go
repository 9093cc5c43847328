package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"pvmkit/internal/isa"
	"pvmkit/internal/pvmkit/styles"
)

var opcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "Print the instruction table",
	Long:  "Print every opcode with its mnemonic, operand layout and encoded length.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		if !term.IsTerminal(os.Stdout.Fd()) {
			plain = true
		}
		return runOpcodes(cmd.OutOrStdout(), plain)
	},
}

func init() {
	opcodesCmd.Flags().BoolP("plain", "p", false, "Print markdown without rendering")
}

func runOpcodes(w io.Writer, plain bool) error {
	md := opcodesMarkdown()
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}

	width := 100
	if tw, _, err := term.GetSize(os.Stdout.Fd()); err == nil && tw > 0 {
		width = tw
	}
	renderer, err := styles.GetMarkdownRenderer(width - 2)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}

func opcodesMarkdown() string {
	var b strings.Builder
	b.WriteString("# PVM Instructions\n\n")
	b.WriteString("| Opcode | Mnemonic | Operands | Length | Ends block |\n")
	b.WriteString("|---:|---|---|---:|:---:|\n")
	for _, d := range isa.All() {
		fmt.Fprintf(&b, "| `0x%02x` | `%s` | %s | %s | %s |\n",
			uint8(d.Opcode), d.Mnemonic, operandLayout(d), lengthOf(d), yesNo(d.Terminator))
	}
	b.WriteString("\nOperands: `reg` register r0..r12, `immN` N-bit immediate, ")
	b.WriteString("`off` signed 32-bit offset from the instruction start, ")
	b.WriteString("`blob` length-prefixed payload.\n\n")
	b.WriteString("```pvm\n0000  load_imm       r1, 0xa\n0006  branch_eq_imm  r1, 0x0, +15\n```\n")
	return b.String()
}

func operandLayout(d isa.Descriptor) string {
	if len(d.Operands) == 0 {
		return "-"
	}
	parts := make([]string, len(d.Operands))
	for i, op := range d.Operands {
		switch op.Kind {
		case isa.Imm:
			parts[i] = fmt.Sprintf("imm%d", op.Width*8)
		case isa.Blob:
			parts[i] = fmt.Sprintf("blob≤%d", op.Max)
		default:
			parts[i] = op.Kind.String()
		}
	}
	return strings.Join(parts, ", ")
}

func lengthOf(d isa.Descriptor) string {
	if d.Variable() {
		return fmt.Sprintf("%d+n", d.FixedLen())
	}
	return fmt.Sprint(d.FixedLen())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
