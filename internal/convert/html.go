package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/secopslab/playtrack/internal/element"
	"golang.org/x/net/html"
)

// HTMLConverter handles HTML exports of playbooks. Headings, paragraphs,
// tables and images are emitted in document order, which is what the
// downstream tree builder and table reconstruction depend on.
type HTMLConverter struct{}

func (c *HTMLConverter) Convert(r io.Reader, filename string) ([]element.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var elems []element.Element

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					elems = append(elems, element.Heading(level, t))
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav":
				return
			case "p", "li", "blockquote":
				if t := paragraphText(n); t != "" {
					elems = append(elems, element.Paragraph(t))
				}
				// Inline images still matter; mammoth-style exports embed
				// screenshots inside paragraphs.
				for _, src := range imageRefs(n) {
					elems = append(elems, element.Image(src))
				}
				return
			case "table":
				if rows := tableRows(n); len(rows) > 0 {
					elems = append(elems, element.Table(rows))
				}
				return
			case "img":
				if src := attr(n, "src"); src != "" {
					elems = append(elems, element.Image(src))
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return elems, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// paragraphText joins a paragraph's text with newlines at <br> boundaries,
// matching how the source documents separate step lines.
func paragraphText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			var collect func(*html.Node)
			collect = func(c *html.Node) {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, paragraphText(c))
					return
				}
				for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
					collect(cc)
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collect(c)
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func imageRefs(n *html.Node) []string {
	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if src := attr(n, "src"); src != "" {
				refs = append(refs, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return refs
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
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
