package actiontable

import (
	"reflect"
	"testing"

	"github.com/secopslab/playtrack/internal/section"
)

func textItems(texts ...string) []section.ContentItem {
	var items []section.ContentItem
	for _, t := range texts {
		items = append(items, section.ContentItem{Kind: section.ContentText, Text: t})
	}
	return items
}

func TestReconstruct_ReferenceOpenerWithOwner(t *testing.T) {
	sec := &section.Section{
		Title:   "A",
		Level:   1,
		Content: textItems("1. Do X. Incident Response Team", "2. Do Y."),
	}

	Reconstruct(sec, DefaultHeuristics())

	if len(sec.Content) != 1 || sec.Content[0].Kind != section.ContentTable {
		t.Fatalf("expected a single table item, got %+v", sec.Content)
	}
	want := [][]string{
		{"Reference", "Step", "Description", "Ownership/Responsibility"},
		{"1", "Do X.", "", "Incident Response Team"},
		{"2", "Do Y.", "", ""},
	}
	if !reflect.DeepEqual(sec.Content[0].Rows, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", sec.Content[0].Rows, want)
	}
}

func TestReconstruct_HeaderOpenerDiscarded(t *testing.T) {
	sec := &section.Section{
		Title: "Containment",
		Level: 2,
		Content: textItems(
			"Reference Step Description Ownership/Responsibility",
			"1. Isolate the host",
			"Pull the network cable or disable the switch port.",
			"2.1 Notify stakeholders",
		),
	}

	Reconstruct(sec, DefaultHeuristics())

	if len(sec.Content) != 1 {
		t.Fatalf("expected a single table item, got %d items", len(sec.Content))
	}
	want := [][]string{
		{"Reference", "Step", "Description", "Ownership/Responsibility"},
		{"1", "Isolate the host", "Pull the network cable or disable the switch port.", ""},
		{"2.1", "Notify stakeholders", "", ""},
	}
	if !reflect.DeepEqual(sec.Content[0].Rows, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", sec.Content[0].Rows, want)
	}
}

func TestReconstruct_OwnerPoppedFromLastDescriptionLine(t *testing.T) {
	sec := &section.Section{
		Title: "Eradication",
		Level: 2,
		Content: textItems(
			"3. Contain the malware",
			"Disconnect affected machines.",
			"IT Security",
		),
	}

	Reconstruct(sec, DefaultHeuristics())

	want := [][]string{
		{"Reference", "Step", "Description", "Ownership/Responsibility"},
		{"3", "Contain the malware", "Disconnect affected machines.", "IT Security"},
	}
	if !reflect.DeepEqual(sec.Content[0].Rows, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", sec.Content[0].Rows, want)
	}
}

func TestReconstruct_MultiLineItem(t *testing.T) {
	// Line breaks inside one source paragraph carry several rows.
	sec := &section.Section{
		Title:   "Analysis",
		Level:   2,
		Content: textItems("1. Extract headers\n2. Detonate attachments\nUse the sandbox."),
	}

	Reconstruct(sec, DefaultHeuristics())

	want := [][]string{
		{"Reference", "Step", "Description", "Ownership/Responsibility"},
		{"1", "Extract headers", "", ""},
		{"2", "Detonate attachments", "Use the sandbox.", ""},
	}
	if !reflect.DeepEqual(sec.Content[0].Rows, want) {
		t.Errorf("unexpected rows:\n got %v\nwant %v", sec.Content[0].Rows, want)
	}
}

func TestReconstruct_DocumentOrderPreserved(t *testing.T) {
	sec := &section.Section{
		Title:   "Steps",
		Level:   1,
		Content: textItems("3. Third written first", "1. First written second", "2. Second written third"),
	}

	Reconstruct(sec, DefaultHeuristics())

	rows := sec.Content[0].Rows[1:]
	refs := []string{rows[0][0], rows[1][0], rows[2][0]}
	want := []string{"3", "1", "2"}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("rows must keep document order, got %v", refs)
	}
}

func TestReconstruct_NegativeCaseLeavesContentIntact(t *testing.T) {
	// Header-like opener with no numbered lines after it.
	sec := &section.Section{
		Title: "Notes",
		Level: 1,
		Content: textItems(
			"The reference material describes each step in detail.",
			"Nothing here is numbered.",
		),
	}
	original := append([]section.ContentItem(nil), sec.Content...)

	Reconstruct(sec, DefaultHeuristics())

	if !reflect.DeepEqual(sec.Content, original) {
		t.Errorf("negative case must preserve paragraphs:\n got %+v\nwant %+v", sec.Content, original)
	}
}

func TestReconstruct_NonTextItemsPassThrough(t *testing.T) {
	img := section.ContentItem{Kind: section.ContentImage, Ref: "net.png"}
	sec := &section.Section{
		Title: "Diagrams",
		Level: 1,
		Content: []section.ContentItem{
			{Kind: section.ContentText, Text: "1. Review the topology"},
			img,
			{Kind: section.ContentText, Text: "plain closing remark"},
		},
	}

	Reconstruct(sec, DefaultHeuristics())

	if len(sec.Content) != 3 {
		t.Fatalf("expected table, image, text; got %d items", len(sec.Content))
	}
	if sec.Content[0].Kind != section.ContentTable {
		t.Errorf("expected table first, got %+v", sec.Content[0])
	}
	if !reflect.DeepEqual(sec.Content[1], img) {
		t.Errorf("image must pass through unchanged, got %+v", sec.Content[1])
	}
	if sec.Content[2].Text != "plain closing remark" {
		t.Errorf("trailing text must survive, got %+v", sec.Content[2])
	}
}

func TestReconstructTree_VisitsSubsections(t *testing.T) {
	secs := []*section.Section{{
		Title: "Parent",
		Level: 1,
		Subs: []*section.Section{{
			Title:   "Child",
			Level:   2,
			Content: textItems("1. Nested step"),
		}},
	}}

	ReconstructTree(secs, DefaultHeuristics())

	child := secs[0].Subs[0]
	if len(child.Content) != 1 || child.Content[0].Kind != section.ContentTable {
		t.Errorf("subsection content not reconstructed: %+v", child.Content)
	}
}

func TestIsActionTable(t *testing.T) {
	if !IsActionTable([][]string{{"Reference", "Step", "Description", "Owner"}}) {
		t.Error("four columns with a Reference header should qualify")
	}
	if IsActionTable([][]string{{"Name", "Value"}}) {
		t.Error("two-column table should not qualify")
	}
	if IsActionTable(nil) {
		t.Error("empty table should not qualify")
	}
}

func TestNormalizeRow(t *testing.T) {
	short := NormalizeRow([]string{"1", "step"})
	if !reflect.DeepEqual(short, []string{"1", "step", "", ""}) {
		t.Errorf("short row must pad with empties, got %v", short)
	}

	long := NormalizeRow([]string{"1", "step", "part a", "part b", "Owner"})
	if !reflect.DeepEqual(long, []string{"1", "step", "part a part b", "Owner"}) {
		t.Errorf("long row must merge middle cells into description, got %v", long)
	}
}
