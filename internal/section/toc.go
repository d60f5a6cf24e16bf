package section

import "github.com/secopslab/playtrack/internal/stablekey"

// TOCEntry is one table-of-contents line with a stable navigation anchor.
type TOCEntry struct {
	Title  string `json:"title"`
	Level  int    `json:"level"`
	Anchor string `json:"anchor"`
}

// TOC flattens the tree into anchored entries in document order.
func TOC(doc string, sections []*Section) []TOCEntry {
	var entries []TOCEntry
	Walk(sections, func(sec *Section) {
		entries = append(entries, TOCEntry{
			Title:  sec.Title,
			Level:  sec.Level,
			Anchor: stablekey.Section(doc, sec.Level, sec.Title),
		})
	})
	return entries
}
