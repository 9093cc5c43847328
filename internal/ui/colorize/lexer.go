package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// PVM is the chroma lexer for pvmkit listings.
var PVM = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "PVM",
		Aliases:   []string{"pvm", "pvmasm"},
		Filenames: []string{"*.pvm", "*.pvmasm"},
		MimeTypes: []string{"text/x-pvmasm"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `;[^\n]*`, Type: chroma.Comment},
				{Pattern: `x"[0-9a-fA-F ]*"`, Type: chroma.LiteralString},
				{Pattern: `"(?:\\.|[^"\\])*"`, Type: chroma.LiteralString},
				{Pattern: `[A-Za-z_][A-Za-z0-9_.]*:`, Type: chroma.NameLabel},
				{Pattern: `\br(?:1[0-2]|[0-9])\b`, Type: chroma.NameVariable},
				{Pattern: `\bL_[0-9a-fA-F]+\b`, Type: chroma.NameLabel},
				{Pattern: `-?0x[0-9a-fA-F]+`, Type: chroma.LiteralNumberHex},
				{Pattern: `[+-]?[0-9]+\b`, Type: chroma.LiteralNumberInteger},
				{Pattern: `[A-Za-z_][A-Za-z0-9_.]*`, Type: chroma.Keyword},
				{Pattern: `,`, Type: chroma.Punctuation},
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))
