// Package progress persists per-playbook completion state. One JSON record
// per document, written whole on every change; stable keys are the only
// join attribute back to the regenerated section tree, so state survives
// re-parses. Orphaned keys from an edited document are kept, never purged.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/secopslab/playtrack/internal/stablekey"
)

// FormatVersion tags every persisted record.
const FormatVersion = "1.0"

// Record is the persisted state for one playbook.
type Record struct {
	Playbook  string            `json:"playbook"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Completed map[string]bool   `json:"completed"`
	Comments  map[string]string `json:"comments"`
	Expanders map[string]bool   `json:"expanders"`
}

func emptyRecord(playbook string) *Record {
	return &Record{
		Playbook:  playbook,
		Version:   FormatVersion,
		Completed: map[string]bool{},
		Comments:  map[string]string{},
		Expanders: map[string]bool{},
	}
}

// Store reads and writes progress records under a single directory.
type Store struct {
	mu  sync.Mutex
	dir string
	log *slog.Logger
}

func NewStore(dir string, log *slog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// FilePath returns the record path for a playbook, derived from its base
// name so the same document always maps to the same file.
func (s *Store) FilePath(playbook string) string {
	base := strings.TrimSuffix(playbook, filepath.Ext(playbook))
	return filepath.Join(s.dir, base+"_progress.json")
}

// Load reads the record for a playbook. Missing or malformed storage yields
// an empty record; corruption must never block the document from loading.
func (s *Store) Load(playbook string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.FilePath(playbook))
	if err != nil {
		return emptyRecord(playbook)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn("malformed progress record, starting empty", "playbook", playbook, "error", err)
		return emptyRecord(playbook)
	}
	if rec.Completed == nil {
		rec.Completed = map[string]bool{}
	}
	if rec.Comments == nil {
		rec.Comments = map[string]string{}
	}
	if rec.Expanders == nil {
		rec.Expanders = map[string]bool{}
	}
	rec.Playbook = playbook
	return &rec
}

// Save serializes the full record, overwriting the previous version. The
// write goes to a temp file first and is renamed into place so readers
// never observe a partial record.
func (s *Store) Save(playbook string, completed map[string]bool, comments map[string]string, expanders map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		Playbook:  playbook,
		Timestamp: time.Now(),
		Version:   FormatVersion,
		Completed: completed,
		Comments:  comments,
		Expanders: expanders,
	}
	if rec.Completed == nil {
		rec.Completed = map[string]bool{}
	}
	if rec.Comments == nil {
		rec.Comments = map[string]string{}
	}
	if rec.Expanders == nil {
		rec.Expanders = map[string]bool{}
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	path := s.FilePath(playbook)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close progress: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace progress: %w", err)
	}
	return nil
}

// Reset deletes the durable record. A subsequent Load returns an empty
// record.
func (s *Store) Reset(playbook string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.FilePath(playbook))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

// Percent computes the completion percentage over row keys only. Section
// and comment keys never enter the denominator; an empty map yields 0.
func Percent(completed map[string]bool) int {
	total, done := 0, 0
	for key, v := range completed {
		if !stablekey.IsRow(key) {
			continue
		}
		total++
		if v {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return done * 100 / total
}
