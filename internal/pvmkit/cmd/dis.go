package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"pvmkit/internal/codec"
	"pvmkit/internal/disasm"
	"pvmkit/internal/listing"
	"pvmkit/internal/ui/colorize"
)

type disOptions struct {
	format  codec.Format
	listing listing.Options
	hex     bool
	output  string
	style   string
}

var disCmd = &cobra.Command{
	Use:   "dis <file>",
	Short: "Disassemble PVM bytecode",
	Long: `Decode a PVM bytecode file into an instruction listing, or into a JSON
or CBOR program that the asm command accepts. Use "-" to read stdin.`,
	Example: `
# Print a listing with labels and encoded bytes
pvmkit dis --labels --raw program.bin

# Decode hex text into a JSON program
pvmkit dis --hex --format json -o program.json program.hex
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		opts := disOptions{
			listing: listing.Options{
				Offsets: cfg.Listing.Offsets,
				Labels:  cfg.Listing.Labels,
				Raw:     cfg.Listing.Raw,
			},
			style: cfg.Style,
		}

		formatName := cfg.Output.Disassembly
		if cmd.Flags().Changed("format") {
			formatName, _ = cmd.Flags().GetString("format")
		}
		format, err := codec.ParseFormat(formatName)
		if err != nil {
			return err
		}
		opts.format = format

		if cmd.Flags().Changed("labels") {
			opts.listing.Labels, _ = cmd.Flags().GetBool("labels")
		}
		if cmd.Flags().Changed("raw") {
			opts.listing.Raw, _ = cmd.Flags().GetBool("raw")
		}
		if noOffsets, _ := cmd.Flags().GetBool("no-offsets"); noOffsets {
			opts.listing.Offsets = false
		}
		opts.hex, _ = cmd.Flags().GetBool("hex")
		opts.output, _ = cmd.Flags().GetString("output")

		return runDis(cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	disCmd.Flags().StringP("format", "F", "text", "Output format: text, json or cbor")
	disCmd.Flags().BoolP("labels", "l", false, "Replace branch offsets with labels")
	disCmd.Flags().BoolP("raw", "r", false, "Append encoded bytes to each line")
	disCmd.Flags().Bool("no-offsets", false, "Omit the offset column")
	disCmd.Flags().BoolP("hex", "x", false, "Input file contains hex text")
	disCmd.Flags().StringP("output", "o", "", "Write output to file")
}

func runDis(w io.Writer, path string, opts disOptions) error {
	code, err := readInput(path, opts.hex)
	if err != nil {
		return err
	}

	prog, err := disasm.Disassemble(code)
	if err != nil {
		return fmt.Errorf("disassembling %s: %w", path, err)
	}
	slog.Debug("Disassembled program", "file", path, "bytes", len(code), "instructions", len(prog.Insts))
	for _, warning := range prog.Warnings() {
		slog.Warn(warning, "file", path)
	}

	var out []byte
	switch opts.format {
	case codec.JSON:
		out, err = codec.MarshalJSON(prog)
		out = append(out, '\n')
	case codec.CBOR:
		out, err = codec.MarshalCBOR(prog)
	default:
		text := listing.Format(prog, opts.listing)
		if opts.output == "" {
			text = colorize.ColorizeListing(text, opts.style)
		}
		out = []byte(text)
	}
	if err != nil {
		return fmt.Errorf("encoding %s output: %w", opts.format, err)
	}
	return writeOutput(w, opts.output, out)
}
