package searchidx

import (
	"reflect"
	"testing"

	"github.com/secopslab/playtrack/internal/section"
	"github.com/secopslab/playtrack/internal/stablekey"
)

func testDocs() []Document {
	ransomware := []*section.Section{{
		Title: "Containment",
		Level: 1,
		Content: []section.ContentItem{
			{Kind: section.ContentText, Text: "Isolate the infected host and disable file shares."},
			{Kind: section.ContentTable, Rows: [][]string{
				{"Reference", "Step", "Description", "Ownership/Responsibility"},
				{"1", "Block the C2 domain", "Push a DNS sinkhole entry.", "SOC"},
			}},
		},
		Subs: []*section.Section{{
			Title: "Ransomware Recovery",
			Level: 2,
			Content: []section.ContentItem{
				{Kind: section.ContentText, Text: "Restore encrypted volumes from backup."},
			},
		}},
	}}
	phishing := []*section.Section{{
		Title: "Phishing Triage",
		Level: 1,
		Content: []section.ContentItem{
			{Kind: section.ContentText, Text: "Extract headers and detonate attachments in the sandbox."},
		},
	}}
	return []Document{
		{Name: "ransomware.docx", Sections: ransomware},
		{Name: "phishing.docx", Sections: phishing},
	}
}

func TestQuery_HitsOnlyMatchingDocument(t *testing.T) {
	ix := Build(testDocs())

	hits := ix.Query("sandbox detonate", 7)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d: %+v", len(hits), hits)
	}
	if hits[0].Playbook != "phishing.docx" || hits[0].Title != "Phishing Triage" {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if hits[0].Score <= minScore {
		t.Errorf("hit score %f should clear the floor", hits[0].Score)
	}
}

func TestQuery_AnchorsSurviveReparse(t *testing.T) {
	ix := Build(testDocs())

	hits := ix.Query("backup", 7)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	// A fresh parse of the same document must produce the same anchor.
	want := stablekey.Section("ransomware.docx", 2, "Ransomware Recovery")
	if hits[0].Anchor != want {
		t.Errorf("anchor %q does not match recomputed key %q", hits[0].Anchor, want)
	}
}

func TestQuery_TableCellsAreIndexed(t *testing.T) {
	ix := Build(testDocs())

	hits := ix.Query("sinkhole", 7)
	if len(hits) != 1 || hits[0].Title != "Containment" {
		t.Errorf("table cell text must be searchable, got %+v", hits)
	}
}

func TestQuery_TopKCap(t *testing.T) {
	ix := Build(testDocs())

	if hits := ix.Query("the", 7); hits != nil {
		t.Errorf("stopword-only query must return nothing, got %+v", hits)
	}
	hits := ix.Query("host backup sandbox", 1)
	if len(hits) > 1 {
		t.Errorf("topK must cap results, got %d", len(hits))
	}
}

func TestQuery_NoMatchAndEmptyCorpus(t *testing.T) {
	ix := Build(testDocs())
	if hits := ix.Query("kubernetes", 7); len(hits) != 0 {
		t.Errorf("term absent from corpus must yield no hits, got %+v", hits)
	}

	empty := Build(nil)
	if empty.Len() != 0 {
		t.Errorf("empty corpus should index nothing, got %d", empty.Len())
	}
	if hits := empty.Query("host", 7); hits != nil {
		t.Errorf("query on empty corpus must be nil, got %+v", hits)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	ix := Build(testDocs())

	first := ix.Query("host backup", 7)
	for i := 0; i < 5; i++ {
		if again := ix.Query("host backup", 7); !reflect.DeepEqual(again, first) {
			t.Fatalf("repeated query differs on run %d:\n%+v\n%+v", i, again, first)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Isolate the C2-domain; push a DNS entry!")
	want := []string{"isolate", "c2", "domain", "push", "dns", "entry"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize mismatch:\n got %v\nwant %v", got, want)
	}
}
