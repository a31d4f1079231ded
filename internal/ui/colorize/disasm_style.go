package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// DisasmDark colors disassembly to match the rest of the CLI output:
// registers pick up the header cyan, immediates the offset orchid, and
// labels the warning orange.
var DisasmDark = styles.Register(chroma.MustNewStyle("disasm-dark", chroma.StyleEntries{
	chroma.Text:       "#D0D0D0",
	chroma.Background: "bg:#121218",

	// The assembly lexers tokenize mnemonics as keywords or functions
	// depending on syntax, so both get the same weight.
	chroma.Keyword:       "#E4E4E4",
	chroma.KeywordPseudo: "#E4E4E4",
	chroma.NameFunction:  "#E4E4E4",

	// Registers
	chroma.Name:         "#5FD7FF",
	chroma.NameBuiltin:  "#5FD7FF",
	chroma.NameVariable: "#5FD7FF",

	// Immediates and addresses
	chroma.LiteralNumber:        "#D75FD7",
	chroma.LiteralNumberHex:     "#D75FD7",
	chroma.LiteralNumberBin:     "#D75FD7",
	chroma.LiteralNumberOct:     "#D75FD7",
	chroma.LiteralNumberInteger: "#D75FD7",
	chroma.LiteralNumberFloat:   "#D75FD7",

	chroma.NameLabel: "#FFAF00",
	chroma.String:    "#AFD787",

	chroma.Comment:        "#6C6C6C",
	chroma.CommentPreproc: "#6C6C6C",
	chroma.Operator:       "#D0D0D0",
	chroma.Punctuation:    "#808080",
}))
