package stablekey

import (
	"regexp"
	"testing"
)

func TestSection_Deterministic(t *testing.T) {
	k1 := Section("ransomware.docx", 2, "Containment")
	k2 := Section("ransomware.docx", 2, "Containment")
	if k1 != k2 {
		t.Errorf("identical inputs must yield identical keys: %q vs %q", k1, k2)
	}
}

func TestSection_DistinctInputsDiffer(t *testing.T) {
	base := Section("ransomware.docx", 2, "Containment")
	if Section("phishing.docx", 2, "Containment") == base {
		t.Error("different document must change the key")
	}
	if Section("ransomware.docx", 3, "Containment") == base {
		t.Error("different level must change the key")
	}
	if Section("ransomware.docx", 2, "Recovery") == base {
		t.Error("different title must change the key")
	}
}

func TestRow_PositionSensitive(t *testing.T) {
	sec := Section("ransomware.docx", 1, "Steps")
	r00 := Row(sec, 0, 0)
	if r00 != Row(sec, 0, 0) {
		t.Error("row keys must be deterministic")
	}
	if Row(sec, 0, 1) == r00 || Row(sec, 1, 0) == r00 {
		t.Error("table/row position must change the key")
	}
}

func TestKeys_SafeForMarkupIDs(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	sec := Section("playbook v2.docx", 1, "NIST Incident Handling Categories")
	row := Row(sec, 0, 3)
	for _, k := range []string{sec, row, Comment(sec), Comment(row)} {
		if !valid.MatchString(k) {
			t.Errorf("key %q is not markup-id safe", k)
		}
	}
}

func TestIsRow(t *testing.T) {
	sec := Section("doc.docx", 1, "A")
	row := Row(sec, 0, 0)

	if !IsRow(row) {
		t.Error("row key must be classified as a row")
	}
	if IsRow(sec) {
		t.Error("section key is not a row")
	}
	if IsRow(Comment(row)) {
		t.Error("row comment key must not count as a row")
	}
	if IsRow(Comment(sec)) {
		t.Error("section comment key must not count as a row")
	}
}
