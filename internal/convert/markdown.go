package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/secopslab/playtrack/internal/element"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownConverter handles Markdown playbooks using goldmark. GFM pipe
// tables come through as table elements.
type MarkdownConverter struct{}

func (c *MarkdownConverter) Convert(r io.Reader, filename string) ([]element.Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var elems []element.Element
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title != "" {
				elems = append(elems, element.Heading(node.Level, title))
			}
		case *east.Table:
			if rows := markdownTableRows(node, src); len(rows) > 0 {
				elems = append(elems, element.Table(rows))
			}
		case *ast.List:
			if t := listText(node, src); t != "" {
				elems = append(elems, element.Paragraph(t))
			}
		default:
			if t := extractText(n, src); t != "" {
				elems = append(elems, element.Paragraph(t))
			}
		}
	}

	return elems, nil
}

// listText renders a list as plain lines. Ordered markers are re-applied so
// numbered step lists keep their reference numbers through conversion.
func listText(list *ast.List, src []byte) string {
	var lines []string
	num := list.Start
	if num == 0 {
		num = 1
	}
	for it := list.FirstChild(); it != nil; it = it.NextSibling() {
		t := extractText(it, src)
		if t == "" {
			continue
		}
		if list.IsOrdered() {
			t = fmt.Sprintf("%d. %s", num, t)
			num++
		}
		lines = append(lines, t)
	}
	return strings.Join(lines, "\n")
}

func markdownTableRows(table *east.Table, src []byte) [][]string {
	var rows [][]string
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		// Header and body rows share the same cell layout.
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, extractText(c, src))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// extractText gets the text content of a goldmark AST node. Blocks that
// carry source lines (paragraphs, text blocks) read them directly; container
// nodes and inline-only blocks like table cells recurse into children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
