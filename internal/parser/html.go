package parser

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Block elements become lines; each table
// row becomes one line with its cells separated by spaces.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", &ExtractionError{Filename: filename, Err: err}
	}

	var lines []string
	emit := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "tr":
				var cells []string
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
						if t := textContent(c); t != "" {
							cells = append(cells, t)
						}
					}
				}
				emit(strings.Join(cells, " "))
				return
			case "p", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "caption", "dt", "dd":
				emit(textContent(n))
				return
			case "br":
				return
			}
		}
		if n.Type == html.TextNode {
			emit(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return strings.Join(lines, "\n"), nil
}

// textContent joins the text under n, collapsing runs of whitespace.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
