package element

// Kind discriminates the element variants a converter can emit.
type Kind int

const (
	KindHeading Kind = iota
	KindParagraph
	KindTable
	KindImage
)

// Element is one item in the ordered stream a converter produces from a
// source document. Only the fields relevant to its Kind are set.
type Element struct {
	Kind  Kind
	Level int        // Heading nesting level (1-6), headings only.
	Text  string     // Heading title or paragraph text.
	Rows  [][]string // Table cell text, row-major.
	Ref   string     // Image reference (src attribute or relationship id).
}

// Heading builds a heading element.
func Heading(level int, text string) Element {
	return Element{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph builds a paragraph element.
func Paragraph(text string) Element {
	return Element{Kind: KindParagraph, Text: text}
}

// Table builds a table element.
func Table(rows [][]string) Element {
	return Element{Kind: KindTable, Rows: rows}
}

// Image builds an image element.
func Image(ref string) Element {
	return Element{Kind: KindImage, Ref: ref}
}
