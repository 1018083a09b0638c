package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Pipe tables are
// flattened to one line per row with cells separated by spaces.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", &ExtractionError{Filename: filename, Err: err}
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var lines []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		lines = append(lines, blockLines(n, src)...)
	}
	return strings.Join(lines, "\n"), nil
}

// blockLines renders one block node as text lines.
func blockLines(n ast.Node, src []byte) []string {
	switch node := n.(type) {
	case *east.Table:
		var out []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for c := row.FirstChild(); c != nil; c = c.NextSibling() {
				if t := strings.TrimSpace(inlineText(c, src)); t != "" {
					cells = append(cells, t)
				}
			}
			out = append(out, strings.Join(cells, " "))
		}
		return out
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var out []string
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
		}
		return out
	case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
		return strings.Split(inlineText(n, src), "\n")
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return nil
	}

	// Lists, blockquotes and other containers.
	var out []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, blockLines(c, src)...)
	}
	return out
}

// inlineText gets the text content of a goldmark inline subtree.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		// Recurse for nested inlines.
		buf.WriteString(inlineText(c, src))
	}
	return buf.String()
}
