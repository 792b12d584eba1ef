package viewer

import (
	"go/doc/comment"
	"strings"

	"github.com/dshills/gogat/pkg/types"
)

// Markdown renders the documentation of sym: a heading, the signature in
// a Go code block and the doc comment converted from Go doc syntax
func Markdown(sym types.Symbol) string {
	var b strings.Builder

	b.WriteString("# ")
	if sym.Package != "" {
		b.WriteString(sym.Package)
		b.WriteByte('.')
	}
	if sym.Receiver != "" {
		b.WriteString(sym.Receiver)
		b.WriteByte('.')
	}
	b.WriteString(sym.Name)
	b.WriteString("\n\n")

	if sym.Signature != "" {
		b.WriteString("```go\n")
		b.WriteString(sym.Signature)
		b.WriteString("\n```\n\n")
	}

	if strings.TrimSpace(sym.DocComment) == "" {
		b.WriteString("No documentation.\n")
		return b.String()
	}

	var p comment.Parser
	pr := &comment.Printer{
		HeadingLevel: 2,
		HeadingID:    func(*comment.Heading) string { return "" },
	}
	b.Write(pr.Markdown(p.Parse(sym.DocComment)))
	return b.String()
}
