package section

// ContentKind discriminates the content variants a section can hold.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentImage
	ContentTable
)

// ContentItem is one piece of a section's body, in document order.
type ContentItem struct {
	Kind ContentKind
	Text string     // ContentText
	Ref  string     // ContentImage
	Rows [][]string // ContentTable, row-major cell text
}

// Section is a heading-rooted node in the document hierarchy. Level is
// strictly less than every descendant's level; siblings keep document order.
type Section struct {
	Title   string
	Level   int
	Content []ContentItem
	Subs    []*Section
}

// Walk visits every section in document order, parents before children.
// It is the single traversal used by table reconstruction, TOC building
// and search indexing.
func Walk(sections []*Section, visit func(sec *Section)) {
	for _, sec := range sections {
		visit(sec)
		Walk(sec.Subs, visit)
	}
}
