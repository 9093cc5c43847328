package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pvmkit/internal/asm"
	"pvmkit/internal/codec"
	"pvmkit/internal/disasm"
	"pvmkit/internal/listing"
)

type asmOptions struct {
	from   codec.Format
	hex    bool
	output string
}

var asmCmd = &cobra.Command{
	Use:   "asm <file>",
	Short: "Assemble a listing or serialized program",
	Long: `Encode an assembly listing, or a JSON or CBOR program produced by dis,
into PVM bytecode. The input format follows the file extension unless
--from is given. Use "-" to read stdin.`,
	Example: `
# Assemble a listing into a binary
pvmkit asm -o program.bin program.pvmasm

# Print the encoding of a JSON program as hex
pvmkit asm --hex program.json
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)

		formatName := inputFormat(args[0], cfg.Output.Assembly)
		if cmd.Flags().Changed("from") {
			formatName, _ = cmd.Flags().GetString("from")
		}
		from, err := codec.ParseFormat(formatName)
		if err != nil {
			return err
		}

		opts := asmOptions{from: from}
		opts.hex, _ = cmd.Flags().GetBool("hex")
		opts.output, _ = cmd.Flags().GetString("output")
		return runAsm(cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	asmCmd.Flags().StringP("from", "f", "", "Input format: text, json or cbor")
	asmCmd.Flags().BoolP("hex", "x", false, "Write hex text instead of raw bytes")
	asmCmd.Flags().StringP("output", "o", "", "Write output to file")
}

// inputFormat picks a format from the file extension, falling back to def.
func inputFormat(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(codec.JSON)
	case ".cbor":
		return string(codec.CBOR)
	case ".pvmasm", ".s", ".asm":
		return string(codec.Text)
	}
	if def == "" {
		return string(codec.Text)
	}
	return def
}

// loadProgram reads a program in the given serialization.
func loadProgram(path string, from codec.Format) (*disasm.Program, error) {
	data, err := readInput(path, false)
	if err != nil {
		return nil, err
	}

	var prog *disasm.Program
	switch from {
	case codec.JSON:
		prog, err = codec.UnmarshalJSON(data)
	case codec.CBOR:
		prog, err = codec.UnmarshalCBOR(data)
	default:
		prog, err = listing.Parse(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return prog, nil
}

func runAsm(w io.Writer, path string, opts asmOptions) error {
	prog, err := loadProgram(path, opts.from)
	if err != nil {
		return err
	}

	code, err := asm.Assemble(prog)
	if err != nil {
		return fmt.Errorf("assembling %s: %w", path, err)
	}
	slog.Debug("Assembled program", "file", path, "instructions", len(prog.Insts), "bytes", len(code))

	if opts.hex {
		code = []byte(hex.EncodeToString(code) + "\n")
	}
	return writeOutput(w, opts.output, code)
}
