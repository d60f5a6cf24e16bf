// Package stablekey derives deterministic identifiers for sections and
// action-table rows. The keys are the only join attribute between the
// regenerated section tree and persisted progress state, so they depend
// solely on document name, heading level/title and table/row position —
// never on anything parse-run specific.
package stablekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	sectionPrefix = "sec_"
	rowPrefix     = "row_"
	commentSuffix = "_c"

	// 128 bits of a SHA-256 digest; enough headroom against collisions
	// across any practical playbook corpus, and short enough for DOM ids.
	digestHexLen = 32
)

// Section returns the key for a section, identical across processes and
// parse runs for the same (document, level, title).
func Section(doc string, level int, title string) string {
	return sectionPrefix + digest(fmt.Sprintf("%s||%d||%s", doc, level, title))
}

// Row returns the key for a task-table row, addressed by the owning
// section's key plus the table and row position within that section.
func Row(sectionKey string, table, row int) string {
	return rowPrefix + digest(fmt.Sprintf("%s::tbl::%d::row::%d", sectionKey, table, row))
}

// Comment returns the annotation key paired with a section or row key.
func Comment(key string) string {
	return key + commentSuffix
}

// IsRow reports whether key addresses a task-table row itself, as opposed
// to a section or a comment. Completion percentage counts only row keys.
func IsRow(key string) bool {
	return strings.HasPrefix(key, rowPrefix) && !strings.HasSuffix(key, commentSuffix)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:digestHexLen]
}
