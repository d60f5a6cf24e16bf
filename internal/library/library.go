// Package library is the document identity layer: it lists the playbook
// files, runs the convert → build → reconstruct pipeline, and memoizes the
// resulting trees by file name plus modification time. Parsing is pure, so
// cached trees stay valid until the file itself changes.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/secopslab/playtrack/internal/actiontable"
	"github.com/secopslab/playtrack/internal/convert"
	"github.com/secopslab/playtrack/internal/searchidx"
	"github.com/secopslab/playtrack/internal/section"
)

// Config controls parsing heuristics and cache behavior.
type Config struct {
	Dir                  string
	ExcludedTitles       []string
	Heuristics           actiontable.Heuristics
	IndexTTL             time.Duration
	PDFFallbackPdftotext bool
}

// Library serves parsed playbook trees and the cross-document search index.
type Library struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	cache   map[string]*cacheEntry
	idx     *searchidx.Index
	idxAt   time.Time
	watcher *fsnotify.Watcher
}

type cacheEntry struct {
	modTime  time.Time
	sections []*section.Section
}

func New(cfg Config, log *slog.Logger) *Library {
	if cfg.ExcludedTitles == nil {
		cfg.ExcludedTitles = section.DefaultExcludedTitles
	}
	if len(cfg.Heuristics.HeaderKeywords) == 0 {
		cfg.Heuristics.HeaderKeywords = actiontable.DefaultHeuristics().HeaderKeywords
	}
	if len(cfg.Heuristics.OwnerPhrases) == 0 {
		cfg.Heuristics.OwnerPhrases = actiontable.DefaultHeuristics().OwnerPhrases
	}
	if cfg.IndexTTL <= 0 {
		cfg.IndexTTL = 10 * time.Minute
	}
	return &Library{
		cfg:   cfg,
		log:   log,
		cache: map[string]*cacheEntry{},
	}
}

// List returns the supported playbook file names, sorted.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("list playbooks: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !convert.IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Sections returns the parsed, reconstructed tree for one playbook,
// memoized until the file's modification time changes.
func (l *Library) Sections(name string) ([]*section.Section, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(l.cfg.Dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat playbook: %w", err)
	}

	l.mu.Lock()
	if entry, ok := l.cache[name]; ok && entry.modTime.Equal(info.ModTime()) {
		secs := entry.sections
		l.mu.Unlock()
		return secs, nil
	}
	l.mu.Unlock()

	secs, err := l.parse(path, name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = &cacheEntry{modTime: info.ModTime(), sections: secs}
	l.idx = nil // stale corpus
	l.mu.Unlock()

	return secs, nil
}

func (l *Library) parse(path, name string) ([]*section.Section, error) {
	conv, err := convert.ForFile(name)
	if err != nil {
		return nil, err
	}
	if pdfc, ok := conv.(*convert.PDFConverter); ok {
		pdfc.FallbackPdftotext = l.cfg.PDFFallbackPdftotext
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playbook: %w", err)
	}
	defer f.Close()

	elems, err := conv.Convert(f, name)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", name, err)
	}

	secs := section.Build(elems, l.cfg.ExcludedTitles)
	actiontable.ReconstructTree(secs, l.cfg.Heuristics)
	return secs, nil
}

// Search answers a keyword query over every playbook. The index is rebuilt
// lazily and cached for a short TTL; missing or unparsable documents are
// skipped, never fatal.
func (l *Library) Search(term string, topK int) ([]searchidx.Hit, error) {
	ix, err := l.index()
	if err != nil {
		return nil, err
	}
	return ix.Query(term, topK), nil
}

func (l *Library) index() (*searchidx.Index, error) {
	l.mu.Lock()
	if l.idx != nil && time.Since(l.idxAt) < l.cfg.IndexTTL {
		ix := l.idx
		l.mu.Unlock()
		return ix, nil
	}
	l.mu.Unlock()

	names, err := l.List()
	if err != nil {
		return nil, err
	}

	var docs []searchidx.Document
	for _, name := range names {
		secs, err := l.Sections(name)
		if err != nil {
			l.log.Warn("skipping unparsable playbook in index", "playbook", name, "error", err)
			continue
		}
		docs = append(docs, searchidx.Document{Name: name, Sections: secs})
	}

	ix := searchidx.Build(docs)

	l.mu.Lock()
	l.idx = ix
	l.idxAt = time.Now()
	l.mu.Unlock()

	return ix, nil
}

// Invalidate drops the cached tree for one playbook and the search index.
func (l *Library) Invalidate(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.idx = nil
	l.mu.Unlock()
}

// Watch evicts cache entries when playbook files change on disk. It blocks
// until the context is canceled.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.cfg.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", l.cfg.Dir, err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !convert.IsSupportedExtension(name) {
				continue
			}
			l.log.Info("playbook changed, evicting cache", "playbook", name, "op", ev.Op.String())
			l.Invalidate(name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("watcher error", "error", err)
		}
	}
}

// Close releases the directory watcher, if running.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.watcher != nil {
		l.watcher.Close()
		l.watcher = nil
	}
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid playbook name: %q", name)
	}
	if !convert.IsSupportedExtension(name) {
		return fmt.Errorf("unsupported file extension: %s", filepath.Ext(name))
	}
	return nil
}
