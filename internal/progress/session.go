package progress

import (
	"sync"

	"github.com/secopslab/playtrack/internal/section"
)

// Session carries the state for one loaded playbook explicitly: the parsed
// tree plus the working copies of the progress maps. Every mutation goes
// through it, so nothing reads from ambient per-user storage.
type Session struct {
	mu sync.Mutex

	Playbook string
	Sections []*section.Section

	completed map[string]bool
	comments  map[string]string
	expanders map[string]bool

	// autosave persists the whole record on every mutation. When off,
	// changes accumulate in memory until Save is called.
	autosave bool
	store    *Store
	dirty    bool
}

// NewSession binds a parsed tree to its loaded progress record.
func NewSession(store *Store, playbook string, sections []*section.Section, autosave bool) *Session {
	rec := store.Load(playbook)
	return &Session{
		Playbook:  playbook,
		Sections:  sections,
		completed: rec.Completed,
		comments:  rec.Comments,
		expanders: rec.Expanders,
		autosave:  autosave,
		store:     store,
	}
}

// ToggleRow records a row's completion flag.
func (s *Session) ToggleRow(key string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[key] = done
	return s.mutated()
}

// SetComment records a free-text annotation. An empty comment is kept as a
// value, not deleted, so a cleared note still overwrites the old one.
func (s *Session) SetComment(key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[key] = text
	return s.mutated()
}

// SetExpander records a section's open/closed state.
func (s *Session) SetExpander(key string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanders[key] = open
	return s.mutated()
}

// Replace swaps the working maps wholesale, for callers that batch edits
// elsewhere. Nil maps leave the current ones in place.
func (s *Session) Replace(completed map[string]bool, comments map[string]string, expanders map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if completed != nil {
		s.completed = completed
	}
	if comments != nil {
		s.comments = comments
	}
	if expanders != nil {
		s.expanders = expanders
	}
	s.dirty = true
}

// Save persists the full record regardless of autosave mode.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Snapshot returns copies of the working maps.
func (s *Session) Snapshot() (completed map[string]bool, comments map[string]string, expanders map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	completed = make(map[string]bool, len(s.completed))
	for k, v := range s.completed {
		completed[k] = v
	}
	comments = make(map[string]string, len(s.comments))
	for k, v := range s.comments {
		comments[k] = v
	}
	expanders = make(map[string]bool, len(s.expanders))
	for k, v := range s.expanders {
		expanders[k] = v
	}
	return completed, comments, expanders
}

// Dirty reports whether unsaved mutations exist.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Percent returns this session's completion percentage.
func (s *Session) Percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Percent(s.completed)
}

func (s *Session) save() error {
	if err := s.store.Save(s.Playbook, s.completed, s.comments, s.expanders); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// mutated is called with the lock held.
func (s *Session) mutated() error {
	s.dirty = true
	if s.autosave {
		return s.save()
	}
	return nil
}
