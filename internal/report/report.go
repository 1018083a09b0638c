// Package report renders a per-document budget summary as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

// Section is one extracted table with its total.
type Section struct {
	Table       *table.Table
	TotalColumn string
	Total       decimal.Decimal
	Chart       string // image link; omitted when empty
}

// Document is the report for one source file.
type Document struct {
	Name     string
	Sections []Section
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the document as GitHub-flavoured Markdown.
func Markdown(d Document) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", escape(d.Name))
	for _, s := range d.Sections {
		t := s.Table
		fmt.Fprintf(&b, "## %s\n\n", escape(t.Name))

		b.WriteString("| |")
		for _, c := range t.Columns {
			b.WriteString(" " + escape(c) + " |")
		}
		b.WriteString("\n|---:|")
		for i := range t.Columns {
			if i == 0 {
				b.WriteString("---|")
			} else {
				b.WriteString("---:|")
			}
		}
		b.WriteString("\n")
		for i, r := range t.Rows {
			b.WriteString("| " + strconv.Itoa(i) + " | " + escape(r.Label) + " |")
			for _, v := range r.Values {
				b.WriteString(" " + table.FormatValue(v) + " |")
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "\n**Total %s:** %s\n\n", escape(t.Name), s.Total.String())
		if s.Chart != "" {
			fmt.Fprintf(&b, "![%s](%s)\n\n", escape(t.Name), s.Chart)
		}
	}
	return b.Bytes()
}

// WriteHTML renders the Markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, d Document) error {
	var body bytes.Buffer
	if err := md.Convert(Markdown(d), &body); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(d.Name), body.String())
	return err
}

var mdEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
