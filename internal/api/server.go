// Package api exposes student progress snapshots over HTTP for the
// advisor dashboard.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/report"
	"github.com/crossbridge-edu/advisory-cli/internal/stage"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

// Options configures the HTTP router.
type Options struct {
	AllowedOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	store   store.Store
	builder *report.Builder
}

// NewRouter builds the chi router with all dashboard routes mounted.
func NewRouter(st store.Store, opts Options) http.Handler {
	s := &Server{store: st, builder: report.NewBuilder(st)}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/students/{studentID}", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/stats", s.handleStats)
		r.Get("/indicators", s.handleIndicators)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadSnapshot resolves the student and builds a snapshot, writing the
// appropriate error response itself. Returns nil after writing an error.
func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request, detail stage.DetailLevel) *report.Snapshot {
	studentID := chi.URLParam(r, "studentID")

	ok, err := s.store.HasStudent(r.Context(), studentID)
	if err != nil {
		zap.L().Error("student lookup failed", zap.String("student_id", studentID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to load application data")
		return nil
	}
	if !ok {
		writeError(w, http.StatusNotFound, "student not found")
		return nil
	}

	snap, err := s.builder.Build(r.Context(), studentID, detail)
	if err != nil {
		zap.L().Error("snapshot build failed", zap.String("student_id", studentID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to load application data")
		return nil
	}
	return snap
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	detail := stage.DetailDetailed
	if r.URL.Query().Get("detail") == "summary" {
		detail = stage.DetailSummary
	}

	snap := s.loadSnapshot(w, r, detail)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.loadSnapshot(w, r, stage.DetailSummary)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Stats)
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	snap := s.loadSnapshot(w, r, stage.DetailSummary)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Indicators)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
