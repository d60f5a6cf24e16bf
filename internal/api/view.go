package api

import (
	"github.com/secopslab/playtrack/internal/actiontable"
	"github.com/secopslab/playtrack/internal/section"
	"github.com/secopslab/playtrack/internal/stablekey"
)

// sectionView is the tree shape served to the presentation layer: the
// parsed structure decorated with every stable key a renderer needs to
// join against progress state.
type sectionView struct {
	Title      string        `json:"title"`
	Level      int           `json:"level"`
	Key        string        `json:"key"`
	CommentKey string        `json:"comment_key"`
	Content    []contentView `json:"content"`
	Subs       []sectionView `json:"subs,omitempty"`
}

type contentView struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Ref  string `json:"ref,omitempty"`

	// Tables only. Action tables carry one key pair per data row.
	Rows        [][]string `json:"rows,omitempty"`
	Action      bool       `json:"action,omitempty"`
	RowKeys     []string   `json:"row_keys,omitempty"`
	CommentKeys []string   `json:"comment_keys,omitempty"`
}

func buildView(doc string, sections []*section.Section) []sectionView {
	views := make([]sectionView, 0, len(sections))
	for _, sec := range sections {
		views = append(views, sectionView{
			Title:      sec.Title,
			Level:      sec.Level,
			Key:        stablekey.Section(doc, sec.Level, sec.Title),
			CommentKey: stablekey.Comment(stablekey.Section(doc, sec.Level, sec.Title)),
			Content:    buildContent(doc, sec),
			Subs:       buildView(doc, sec.Subs),
		})
	}
	return views
}

func buildContent(doc string, sec *section.Section) []contentView {
	secKey := stablekey.Section(doc, sec.Level, sec.Title)
	items := make([]contentView, 0, len(sec.Content))

	tblIdx := 0 // counts action tables only; key positions must not shift
	for _, it := range sec.Content {
		switch it.Kind {
		case section.ContentText:
			items = append(items, contentView{Type: "text", Text: it.Text})
		case section.ContentImage:
			items = append(items, contentView{Type: "image", Ref: it.Ref})
		case section.ContentTable:
			cv := contentView{Type: "table", Rows: it.Rows}
			if actiontable.IsActionTable(it.Rows) {
				cv.Action = true
				cv.Rows = actionRows(it.Rows)
				for ridx := range cv.Rows {
					rowKey := stablekey.Row(secKey, tblIdx, ridx)
					cv.RowKeys = append(cv.RowKeys, rowKey)
					cv.CommentKeys = append(cv.CommentKeys, stablekey.Comment(rowKey))
				}
				tblIdx++
			}
			items = append(items, cv)
		}
	}
	return items
}

// actionRows returns the data rows of an action table, padded to four
// cells. A first row that does not itself start with a numeric reference
// is the header and is dropped.
func actionRows(rows [][]string) [][]string {
	data := rows
	if len(rows) > 1 && len(rows[0]) > 0 && !startsWithRef(rows[0][0]) {
		data = rows[1:]
	}
	out := make([][]string, 0, len(data))
	for _, row := range data {
		out = append(out, actiontable.NormalizeRow(row))
	}
	return out
}

func startsWithRef(cell string) bool {
	return cell != "" && cell[0] >= '0' && cell[0] <= '9'
}
