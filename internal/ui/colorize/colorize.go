package colorize

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "pvm-dark"

// Disabled reports whether PVMKIT_NO_COLOR turns highlighting off. Any
// value other than an explicit false disables color.
func Disabled() bool {
	v := os.Getenv("PVMKIT_NO_COLOR")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err != nil || b
}

// getStyle returns the named style with fallbacks
func getStyle(name string) *chroma.Style {
	candidates := []string{name, DefaultStyle, "dracula", "monokai"}
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if style := styles.Get(name); style != nil && style.Name == name {
			return style
		}
	}
	return styles.Fallback
}

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Colorize highlights PVM assembly source with the named chroma style.
func Colorize(code, style string) (string, error) {
	if Disabled() {
		return code, nil
	}

	iterator, err := PVM.Tokenise(nil, code)
	if err != nil {
		return code, err
	}

	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getStyle(style), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// ColorizeListing highlights a formatted listing line by line.
func ColorizeListing(listing, style string) string {
	if Disabled() {
		return listing
	}
	lines := strings.Split(listing, "\n")
	for i, line := range lines {
		lines[i] = ColorizeInstructionLine(line, style)
	}
	return strings.Join(lines, "\n")
}

// ColorizeInstructionLine colorizes a single listing line while preserving
// its layout. A leading hex offset column is printed in gray.
func ColorizeInstructionLine(line, style string) string {
	if Disabled() || strings.TrimSpace(line) == "" {
		return line
	}

	// Format: "0006  branch_eq_imm  r1, 0x0, +15"
	addr, rest, ok := strings.Cut(line, " ")
	if !ok || !isHex(addr) {
		return colorizeFullLine(line, style)
	}
	return fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m %s", addr, colorizeFullLine(rest, style))
}

func colorizeFullLine(line, style string) string {
	colored, err := Colorize(line, style)
	if err != nil {
		return line
	}
	return colored
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !((ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')) {
			return false
		}
	}
	return true
}

// StripANSI removes ANSI color sequences and returns the plain string
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		} else if inEscape {
			if r == 'm' {
				inEscape = false
			}
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
