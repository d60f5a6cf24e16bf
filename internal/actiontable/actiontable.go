// Package actiontable recovers tabular "reference / step / description /
// owner" task lists that were authored as loose paragraphs instead of real
// tables. The detection is heuristic and lossy by nature; the negative case
// always leaves the original paragraphs intact.
package actiontable

import (
	"regexp"
	"strings"

	"github.com/secopslab/playtrack/internal/section"
)

// refPattern matches a multi-part numeric reference anchored at the start
// of a line: "1", "2.3", "4.1.2".
var refPattern = regexp.MustCompile(`^\d+(\.\d+)*`)

// HeaderRow is the literal header emitted as the first row of every
// reconstructed table.
var HeaderRow = []string{"Reference", "Step", "Description", "Ownership/Responsibility"}

// Heuristics holds the named, overridable constant sets the detector uses.
type Heuristics struct {
	// HeaderKeywords: a paragraph containing at least two of these (lowercase)
	// is treated as an explicit header line and discarded, not emitted.
	HeaderKeywords []string

	// OwnerPhrases: responsibility-role phrases. A trailing description line
	// (or step tail) containing one is reassigned to the owner column. A
	// genuine description sentence naming a team is misclassified by this
	// rule; that is a known false-positive source, kept deliberately.
	OwnerPhrases []string
}

// DefaultHeuristics returns the stock keyword and role-phrase sets.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		HeaderKeywords: []string{
			"reference", "step", "description", "ownership", "responsibility",
		},
		OwnerPhrases: []string{
			"incident response team",
			"it security",
			"security team",
			"service desk",
			"communications team",
			"human resources",
			"management",
			"legal",
			"ciso",
			"soc",
		},
	}
}

// ReconstructTree runs Reconstruct over every section of the tree. Sections
// are processed in isolation; there is no cross-section state.
func ReconstructTree(sections []*section.Section, h Heuristics) {
	section.Walk(sections, func(sec *section.Section) {
		Reconstruct(sec, h)
	})
}

// Reconstruct scans one section's content and replaces each run of
// step-like paragraphs with a single structured table item. Document order
// of rows is preserved; rows are never sorted by reference value.
func Reconstruct(sec *section.Section, h Heuristics) {
	items := sec.Content
	var out []section.ContentItem

	i := 0
	for i < len(items) {
		it := items[i]
		if it.Kind != section.ContentText {
			out = append(out, it)
			i++
			continue
		}

		headerOpener := keywordHits(it.Text, h.HeaderKeywords) >= 2
		refOpener := refPattern.MatchString(it.Text)
		if !headerOpener && !refOpener {
			out = append(out, it)
			i++
			continue
		}

		var rows [][]string
		var ref, step string
		var desc []string
		flush := func() {
			if ref != "" {
				rows = append(rows, buildRow(ref, step, desc, h.OwnerPhrases))
			}
			ref, step = "", ""
			desc = nil
		}

		// Items may hold several lines each (line breaks inside a source
		// paragraph survive conversion), so scanning is per line.
		j := i
		for j < len(items) && items[j].Kind == section.ContentText {
			for _, raw := range strings.Split(items[j].Text, "\n") {
				line := strings.TrimSpace(raw)
				if line == "" {
					continue
				}
				if m := refPattern.FindString(line); m != "" {
					flush()
					ref = m
					step = strings.TrimSpace(strings.TrimLeft(line[len(m):], ".): \t"))
					continue
				}
				if ref == "" && keywordHits(line, h.HeaderKeywords) >= 2 {
					// An explicit header line is discarded, never emitted.
					continue
				}
				desc = append(desc, line)
			}
			j++
		}
		flush()

		if len(rows) == 0 {
			// Negative case: nothing row-like followed, keep the opener.
			out = append(out, it)
			i++
			continue
		}

		table := make([][]string, 0, len(rows)+1)
		table = append(table, append([]string(nil), HeaderRow...))
		table = append(table, rows...)
		out = append(out, section.ContentItem{Kind: section.ContentTable, Rows: table})
		i = j
	}

	sec.Content = out
}

// IsActionTable reports whether a genuine table (authored as a table) is a
// task table: at least four columns with a header cell mentioning "ref".
func IsActionTable(rows [][]string) bool {
	if len(rows) == 0 || len(rows[0]) < 4 {
		return false
	}
	for _, cell := range rows[0] {
		if strings.Contains(strings.ToLower(cell), "ref") {
			return true
		}
	}
	return false
}

// NormalizeRow pads a row to exactly four cells. Overlong rows keep their
// reference, step and owner (last cell); the middle cells merge into the
// description.
func NormalizeRow(row []string) []string {
	out := make([]string, 4)
	switch {
	case len(row) <= 4:
		copy(out, row)
	default:
		out[0] = row[0]
		out[1] = row[1]
		out[2] = strings.Join(row[2:len(row)-1], " ")
		out[3] = row[len(row)-1]
	}
	return out
}

func buildRow(ref, step string, desc []string, phrases []string) []string {
	owner := ""
	if n := len(desc); n > 0 && containsPhrase(desc[n-1], phrases) {
		owner = desc[n-1]
		desc = desc[:n-1]
	}
	if owner == "" {
		if idx := phraseIndex(step, phrases); idx >= 0 {
			owner = strings.TrimSpace(step[idx:])
			step = strings.TrimSpace(step[:idx])
		}
	}
	return []string{ref, step, strings.Join(desc, " "), owner}
}

func keywordHits(text string, keywords []string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

func containsPhrase(line string, phrases []string) bool {
	return phraseIndex(line, phrases) >= 0
}

// phraseIndex returns the byte offset of the earliest role phrase in s,
// or -1 when none occurs.
func phraseIndex(s string, phrases []string) int {
	lower := strings.ToLower(s)
	best := -1
	for _, p := range phrases {
		if idx := strings.Index(lower, p); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}
