package section

import (
	"strings"

	"github.com/secopslab/playtrack/internal/element"
)

// DefaultExcludedTitles drops administrative boilerplate sections. A heading
// whose lowercase title contains one of these is skipped outright, along
// with its own content.
var DefaultExcludedTitles = []string{
	"table of contents",
	"document control",
	"document revision",
	"assumptions",
	"disclaimer",
}

// Build turns an ordered element stream into a pruned section tree.
//
// Headings open sections at their nesting level; content elements attach to
// the innermost open section. Elements before the first heading have no
// open section and are discarded. An excluded heading is neither pushed nor
// emitted, so its trailing content attaches to the nearest still-open
// ancestor. After the stream is consumed, empty sections are pruned
// bottom-up.
func Build(elems []element.Element, excludedTitles []string) []*Section {
	if excludedTitles == nil {
		excludedTitles = DefaultExcludedTitles
	}

	var roots []*Section
	var stack []*Section

	for _, el := range elems {
		switch el.Kind {
		case element.KindHeading:
			title := strings.TrimSpace(el.Text)
			if title == "" || titleExcluded(title, excludedTitles) {
				continue
			}
			node := &Section{Title: title, Level: el.Level}
			for len(stack) > 0 && stack[len(stack)-1].Level >= el.Level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Subs = append(top.Subs, node)
			} else {
				roots = append(roots, node)
			}
			stack = append(stack, node)

		case element.KindParagraph:
			text := strings.TrimSpace(el.Text)
			if text == "" || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.Content = append(top.Content, ContentItem{Kind: ContentText, Text: text})

		case element.KindImage:
			if el.Ref == "" || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.Content = append(top.Content, ContentItem{Kind: ContentImage, Ref: el.Ref})

		case element.KindTable:
			if len(el.Rows) == 0 || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.Content = append(top.Content, ContentItem{Kind: ContentTable, Rows: el.Rows})
		}
	}

	return prune(roots)
}

func titleExcluded(title string, excluded []string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	for _, e := range excluded {
		if strings.Contains(lower, e) {
			return true
		}
	}
	return false
}

// prune removes sections with no content and no surviving subsections.
func prune(sections []*Section) []*Section {
	var kept []*Section
	for _, sec := range sections {
		sec.Subs = prune(sec.Subs)
		if len(sec.Content) > 0 || len(sec.Subs) > 0 {
			kept = append(kept, sec)
		}
	}
	return kept
}
