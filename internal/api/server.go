package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secopslab/playtrack/internal/config"
	"github.com/secopslab/playtrack/internal/library"
	"github.com/secopslab/playtrack/internal/progress"
)

// Server is the HTTP surface the presentation layer consumes: playbook
// trees, progress state and cross-document search.
type Server struct {
	router chi.Router
	lib    *library.Library
	store  *progress.Store
	log    *slog.Logger
	cfg    config.Config

	// One session per open playbook, keyed by file name. Sessions carry
	// the working progress maps explicitly; reset drops them.
	mu       sync.Mutex
	sessions map[string]*progress.Session
}

// NewServer creates and configures the HTTP server.
func NewServer(lib *library.Library, store *progress.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		lib:      lib,
		store:    store,
		log:      log,
		cfg:      cfg,
		sessions: map[string]*progress.Session{},
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		// Transport-level gate only; user accounts are not this service's
		// concern.
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/playbooks", s.handleListPlaybooks)
		r.Post("/api/playbooks", s.handleUploadPlaybook)
		r.Get("/api/playbooks/{name}", s.handleGetPlaybook)

		r.Get("/api/playbooks/{name}/progress", s.handleGetProgress)
		r.Post("/api/playbooks/{name}/progress/save", s.handleSaveProgress)
		r.Post("/api/playbooks/{name}/progress/toggle", s.handleToggleRow)
		r.Post("/api/playbooks/{name}/progress/comment", s.handleSetComment)
		r.Post("/api/playbooks/{name}/progress/expander", s.handleSetExpander)
		r.Delete("/api/playbooks/{name}/progress", s.handleResetProgress)

		r.Get("/api/search", s.handleSearch)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// session returns the open session for a playbook, loading the tree and
// persisted record on first access.
func (s *Server) session(name string) (*progress.Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[name]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	secs, err := s.lib.Sections(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[name]; ok {
		return sess, nil
	}
	sess := progress.NewSession(s.store, name, secs, s.cfg.Autosave)
	s.sessions[name] = sess
	return sess, nil
}

func (s *Server) dropSession(name string) {
	s.mu.Lock()
	delete(s.sessions, name)
	s.mu.Unlock()
}
