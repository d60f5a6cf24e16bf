// Package searchidx builds a lightweight TF-IDF index over parsed playbook
// trees and answers keyword queries. Sections are the unit of retrieval;
// every hit carries the section's stable key so callers can navigate to it
// after a fresh re-parse.
package searchidx

import (
	"math"
	"sort"
	"strings"

	"github.com/secopslab/playtrack/internal/section"
	"github.com/secopslab/playtrack/internal/stablekey"
)

// Record is one indexed section.
type Record struct {
	Playbook string `json:"playbook"`
	Title    string `json:"title"`
	Level    int    `json:"level"`
	Anchor   string `json:"anchor"`
	Text     string `json:"-"`
}

// Hit is a ranked query result.
type Hit struct {
	Record
	Score float64 `json:"score"`
}

// Document pairs a playbook name with its parsed tree.
type Document struct {
	Name     string
	Sections []*section.Section
}

// Index holds per-section term vectors. It is derived state: cheap to
// rebuild and never persisted.
type Index struct {
	records []Record
	vecs    []map[string]float64 // l2-normalized tf-idf weights
	df      map[string]int
}

// minScore drops near-zero cosine matches that share only incidental terms.
const minScore = 0.05

// Build flattens every section of every document into one text blob (title,
// paragraph text and table cells, in document order) and weighs its terms.
// Callers pass documents in a fixed order so repeated builds are identical.
func Build(docs []Document) *Index {
	ix := &Index{df: map[string]int{}}

	for _, doc := range docs {
		section.Walk(doc.Sections, func(sec *section.Section) {
			ix.records = append(ix.records, Record{
				Playbook: doc.Name,
				Title:    sec.Title,
				Level:    sec.Level,
				Anchor:   stablekey.Section(doc.Name, sec.Level, sec.Title),
				Text:     flatten(sec),
			})
		})
	}

	// Pass 1: document frequencies.
	counts := make([]map[string]float64, len(ix.records))
	for i, rec := range ix.records {
		tf := map[string]float64{}
		for _, term := range tokenize(rec.Text) {
			tf[term]++
		}
		counts[i] = tf
		for term := range tf {
			ix.df[term]++
		}
	}

	// Pass 2: tf-idf weights, l2-normalized.
	n := float64(len(ix.records))
	ix.vecs = make([]map[string]float64, len(ix.records))
	for i, tf := range counts {
		vec := make(map[string]float64, len(tf))
		var sumSq float64
		for term, count := range tf {
			w := count * ix.idf(term, n)
			vec[term] = w
			sumSq += w * w
		}
		if norm := math.Sqrt(sumSq); norm > 0 {
			for term := range vec {
				vec[term] /= norm
			}
		}
		ix.vecs[i] = vec
	}

	return ix
}

// Len returns the number of indexed sections.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Query ranks sections against a free-text term and returns at most topK
// hits. An empty corpus, an all-stopword query or no match above the score
// floor all yield an empty slice, never an error. Ties break on shorter
// section title, then insertion order, so repeated queries reproduce.
func (ix *Index) Query(term string, topK int) []Hit {
	if topK <= 0 || len(ix.records) == 0 {
		return nil
	}

	qtf := map[string]float64{}
	for _, t := range tokenize(term) {
		qtf[t]++
	}
	if len(qtf) == 0 {
		return nil
	}

	n := float64(len(ix.records))
	var sumSq float64
	for t, count := range qtf {
		w := count * ix.idf(t, n)
		qtf[t] = w
		sumSq += w * w
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return nil
	}

	var hits []Hit
	for i, vec := range ix.vecs {
		var dot float64
		for t, qw := range qtf {
			dot += vec[t] * qw / norm
		}
		if dot > minScore {
			hits = append(hits, Hit{Record: ix.records[i], Score: dot})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return len(hits[a].Title) < len(hits[b].Title)
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func (ix *Index) idf(term string, n float64) float64 {
	df := float64(ix.df[term])
	return math.Log((1+n)/(1+df)) + 1
}

func flatten(sec *section.Section) string {
	parts := []string{sec.Title}
	for _, it := range sec.Content {
		switch it.Kind {
		case section.ContentText:
			parts = append(parts, it.Text)
		case section.ContentTable:
			for _, row := range it.Rows {
				parts = append(parts, strings.Join(row, " "))
			}
		}
	}
	return strings.Join(parts, "\n")
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var terms []string
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "if": true, "in": true, "into": true, "is": true,
	"it": true, "its": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}
