package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// PVMDark is the default listing style.
var PVMDark = styles.Register(chroma.MustNewStyle("pvm-dark", chroma.StyleEntries{
	chroma.Text:       "#FFFFFF",
	chroma.Background: "bg:#1e1e1e",
	chroma.Comment:    "#6A9955",

	chroma.Keyword:      "#FFFFFF", // mnemonics
	chroma.NameVariable: "#7C9C9D", // registers

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#FF5F87",
	chroma.LiteralNumberInteger: "#FF5F87",

	chroma.NameLabel:   "#FFD700",
	chroma.Punctuation: "#FFFFFF",

	chroma.String: "#EACD53", // blob payloads
}))
