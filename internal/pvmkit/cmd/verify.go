package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"pvmkit/internal/asm"
	"pvmkit/internal/disasm"
	"pvmkit/internal/listing"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file...>",
	Short: "Check that programs survive a round trip",
	Long: `Disassemble each file, reassemble it, and compare the result with the
original bytes. The listing is also reparsed and reassembled. Exits non-zero
if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexText, _ := cmd.Flags().GetBool("hex")
		return runVerify(cmd.OutOrStdout(), args, hexText)
	},
}

func init() {
	verifyCmd.Flags().BoolP("hex", "x", false, "Input files contain hex text")
}

func runVerify(w io.Writer, paths []string, hexText bool) error {
	failed := 0
	for _, path := range paths {
		n, err := verifyFile(path, hexText)
		if err != nil {
			failed++
			slog.Debug("Verification failed", "file", path, "error", err)
			fmt.Fprintf(w, "FAIL  %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(w, "ok    %s (%d instructions)\n", path, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(paths))
	}
	return nil
}

var errMismatch = errors.New("reassembled bytes differ")

// verifyFile returns the instruction count of a program that round-trips.
func verifyFile(path string, hexText bool) (int, error) {
	code, err := readInput(path, hexText)
	if err != nil {
		return 0, err
	}
	prog, err := disasm.Disassemble(code)
	if err != nil {
		return 0, err
	}

	out, err := asm.Assemble(prog)
	if err != nil {
		return 0, err
	}
	if i := firstDiff(code, out); i >= 0 {
		return 0, fmt.Errorf("%w at offset %#x", errMismatch, i)
	}

	text, err := asm.AssembleText(listing.Format(prog, listing.Options{Labels: true}))
	if err != nil {
		return 0, fmt.Errorf("listing: %w", err)
	}
	if i := firstDiff(code, text); i >= 0 {
		return 0, fmt.Errorf("listing: %w at offset %#x", errMismatch, i)
	}
	return len(prog.Insts), nil
}

// firstDiff returns the first offset where a and b differ, or -1.
func firstDiff(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
