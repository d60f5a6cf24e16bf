package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/secopslab/playtrack/internal/convert"
	"github.com/secopslab/playtrack/internal/progress"
	"github.com/secopslab/playtrack/internal/searchidx"
	"github.com/secopslab/playtrack/internal/section"
)

// handleListPlaybooks lists the available playbooks with their completion
// percentages.
func (s *Server) handleListPlaybooks(w http.ResponseWriter, r *http.Request) {
	names, err := s.lib.List()
	if err != nil {
		jsonError(w, "failed to list playbooks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	playbooks := make([]map[string]any, 0, len(names))
	for _, name := range names {
		rec := s.store.Load(name)
		playbooks = append(playbooks, map[string]any{
			"name":    name,
			"percent": progress.Percent(rec.Completed),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"playbooks": playbooks})
}

// handleGetPlaybook returns the parsed tree decorated with stable keys,
// the table of contents, and the merged progress state.
func (s *Server) handleGetPlaybook(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	completed, comments, expanders := sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"playbook":  name,
		"sections":  buildView(name, sess.Sections),
		"toc":       section.TOC(name, sess.Sections),
		"percent":   sess.Percent(),
		"completed": completed,
		"comments":  comments,
		"expanders": expanders,
	})
}

// handleGetProgress returns the working progress maps for a playbook.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	completed, comments, expanders := sess.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"playbook":  name,
		"completed": completed,
		"comments":  comments,
		"expanders": expanders,
		"percent":   sess.Percent(),
		"dirty":     sess.Dirty(),
	})
}

// handleSaveProgress persists the session record. An optional body replaces
// the working maps wholesale first (clients that batch edits locally).
func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	if r.ContentLength != 0 {
		var body struct {
			Completed map[string]bool   `json:"completed"`
			Comments  map[string]string `json:"comments"`
			Expanders map[string]bool   `json:"expanders"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		sess.Replace(body.Completed, body.Comments, body.Expanders)
	}

	if err := sess.Save(); err != nil {
		jsonError(w, "failed to save progress: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "percent": sess.Percent()})
}

// handleToggleRow flips one row's completion flag.
func (s *Server) handleToggleRow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body struct {
		Key  string `json:"key"`
		Done bool   `json:"done"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Key == "" {
		jsonError(w, "key is required", http.StatusBadRequest)
		return
	}

	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if err := sess.ToggleRow(body.Key, body.Done); err != nil {
		jsonError(w, "failed to persist toggle: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"percent": sess.Percent(), "dirty": sess.Dirty()})
}

// handleSetComment records a free-text annotation against a stable key.
func (s *Server) handleSetComment(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body struct {
		Key  string `json:"key"`
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Key == "" {
		jsonError(w, "key is required", http.StatusBadRequest)
		return
	}

	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if err := sess.SetComment(body.Key, body.Text); err != nil {
		jsonError(w, "failed to persist comment: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dirty": sess.Dirty()})
}

// handleSetExpander records a section's open/closed state.
func (s *Server) handleSetExpander(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body struct {
		Key  string `json:"key"`
		Open bool   `json:"open"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Key == "" {
		jsonError(w, "key is required", http.StatusBadRequest)
		return
	}

	sess, err := s.session(name)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if err := sess.SetExpander(body.Key, body.Open); err != nil {
		jsonError(w, "failed to persist expander state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dirty": sess.Dirty()})
}

// handleResetProgress deletes the durable record and drops the in-memory
// session for a playbook.
func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Reset(name); err != nil {
		jsonError(w, "failed to reset progress: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.dropSession(name)
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// handleSearch runs a keyword query over every playbook.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}

	topK := s.cfg.SearchTopK
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topK = n
		}
	}

	hits, err := s.lib.Search(query, topK)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []searchidx.Hit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": query, "results": hits})
}

// handleUploadPlaybook accepts a new or replacement playbook document.
func (s *Server) handleUploadPlaybook(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !convert.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	dest := filepath.Join(s.cfg.PlaybooksDir, filename)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		jsonError(w, "failed to store playbook: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Replacing a document invalidates its cached tree; the persisted
	// progress record stays, keyed stably.
	s.lib.Invalidate(filename)
	s.dropSession(filename)

	s.log.Info("playbook uploaded", "playbook", filename, "bytes", len(data))
	writeJSON(w, http.StatusCreated, map[string]any{"playbook": filename})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func statusFor(err error) int {
	if errors.Is(err, os.ErrNotExist) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
