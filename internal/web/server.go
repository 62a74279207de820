// Package web provides the HTTP server and JSON API for the org-structure
// import service.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/staffdir/orgimport/internal/config"
	"github.com/staffdir/orgimport/internal/org"
	"github.com/staffdir/orgimport/internal/orgimport"
	"github.com/staffdir/orgimport/internal/web/middleware"
)

// Server is the HTTP server for the org import API.
type Server struct {
	cfg      *config.Config
	importer *orgimport.Importer
	limiter  *orgimport.Limiter
	service  *org.Service
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the API on top of the importer and query service.
func NewServer(cfg *config.Config, importer *orgimport.Importer, service *org.Service) *Server {
	s := &Server{
		cfg:      cfg,
		importer: importer,
		limiter:  orgimport.NewLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		service:  service,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	// Import runs bound the longest request; everything else finishes well
	// within this.
	s.router.Use(chimw.Timeout(s.cfg.Import.Timeout))
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/org", func(r chi.Router) {
		r.Post("/import", s.handleImport)

		r.Get("/departments/tree", s.handleDepartmentTree)
		r.Get("/departments/{id}/path", s.handleDepartmentPath)
		r.Delete("/departments/{id}", s.handleDeleteDepartment)

		r.Get("/employees", s.handleSearchEmployees)
		r.Get("/stats", s.handleStats)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders adds hardening headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
