// Package api provides a local HTTP API for browsing and linting skills.
// It backs the `skillet serve` command.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skilletlabs/skillet/pkg/discovery"
	"github.com/skilletlabs/skillet/pkg/lint"
	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/presenter"
	"github.com/skilletlabs/skillet/pkg/version"
)

// ServerConfig holds the configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves the skills API over HTTP.
type Server struct {
	router    *mux.Router
	discovery *discovery.Discovery
	config    *ServerConfig
	server    *http.Server
}

// NewServer creates a new API server on top of the given discovery.
func NewServer(disc *discovery.Discovery, config *ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router:    mux.NewRouter(),
		discovery: disc,
		config:    config,
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	// Plugin skill names contain slashes, so match the rest of the path.
	api.HandleFunc("/skills/{name:.+}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/lint", s.handleLint).Methods("POST")
	api.HandleFunc("/version", s.handleVersion).Methods("GET")

	s.router.Use(s.loggingMiddleware)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SkillSummary is the list representation of a discovered skill.
type SkillSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
	Path        string `json:"path"`
}

// SkillDetail is the full representation of a discovered skill.
type SkillDetail struct {
	SkillSummary
	AllowedTools []string `json:"allowedTools,omitempty"`
	Body         string   `json:"body"`
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	entries, err := s.discovery.Discover()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to discover skills", err)
		return
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]SkillSummary, 0, len(names))
	for _, name := range names {
		entry := entries[name]
		summaries = append(summaries, SkillSummary{
			Name:        entry.Name,
			Description: entry.Descriptor.Description,
			Scope:       string(entry.Scope),
			Path:        entry.Path,
		})
	}

	s.writeJSONResponse(w, map[string]any{"skills": summaries})
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	entry, err := s.discovery.Get(name)
	if err != nil {
		s.writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("skill '%s' not found", name), err)
		return
	}

	s.writeJSONResponse(w, SkillDetail{
		SkillSummary: SkillSummary{
			Name:        entry.Name,
			Description: entry.Descriptor.Description,
			Scope:       string(entry.Scope),
			Path:        entry.Path,
		},
		AllowedTools: entry.Descriptor.AllowedTools,
		Body:         entry.Descriptor.Body,
	})
}

// LintRequest is the POST /api/lint request body.
type LintRequest struct {
	Targets []string `json:"targets"`
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	var req LintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Targets) == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "targets cannot be empty", nil)
		return
	}

	report, err := lint.NewRunner().Run(r.Context(), req.Targets)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "lint run failed", err)
		return
	}

	s.writeJSONResponse(w, report)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, version.Get())
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		logger.G(context.TODO()).WithError(err).Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":  message,
		"status": statusCode,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(context.TODO()).WithError(err).Error("failed to encode error response")
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	presenter.Info(fmt.Sprintf("Serving skills API on http://%s", address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("API server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop force-closes the server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
