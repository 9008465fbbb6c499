package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quartz-site/internal/auth"
	"quartz-site/internal/content"
	"quartz-site/internal/inquiry"
	"quartz-site/internal/metrics"
	"quartz-site/internal/repo"
	"quartz-site/internal/site"
	"quartz-site/internal/storage"
	"quartz-site/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// uploadBatch is how many images at the storage limit one admin post may carry.
const uploadBatch = 16

// Config holds listener settings.
type Config struct {
	Addr          string
	BasePath      string
	SecureCookies bool
	// MaxBodyBytes caps request bodies, uploads included. Zero allows
	// sixteen images at the storage limit.
	MaxBodyBytes int64
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Repository repo.Repository
	Content    *content.Service
	Inquiries  *inquiry.Service
	Auth       *auth.Service
	Images     *storage.Service
	Templates  *web.Templates
	WhatsApp   site.WhatsApp
	Company    site.Company
}

// Server wraps an http.Server with the site and admin routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deps       Dependencies
	cfg        Config
	basePath   string
}

// New creates the HTTP server.
func New(cfg Config, deps Dependencies, logger *slog.Logger, metricRegistry *metrics.Metrics) *Server {
	server := &Server{
		logger:   logger.With("component", "http"),
		metrics:  metricRegistry,
		deps:     deps,
		cfg:      cfg,
		basePath: normaliseBasePath(cfg.BasePath),
	}
	if server.cfg.MaxBodyBytes <= 0 {
		server.cfg.MaxBodyBytes = 32 << 20
		if deps.Images != nil {
			server.cfg.MaxBodyBytes = uploadBatch * deps.Images.MaxBytes()
		}
	}

	handler := mountWithBasePath(server.basePath, server.routes())

	server.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.basePath != "" {
		server.logger.Info("http server configured with base path", "base_path", server.basePath)
	}

	return server
}

// Handler exposes the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	r.Get("/images/{key}", s.handleImage)

	r.Group(func(r chi.Router) {
		r.Use(s.csrf)

		r.Get("/", s.handleHome)
		r.Get("/about", s.handleAbout)
		r.Get("/products", s.handleProducts)
		r.Get("/products/{id}", s.handleProductDetail)
		r.Get("/gallery", s.handleGallery)
		r.Get("/services", s.handleServices)
		r.Get("/testimonials", s.handleTestimonials)
		r.Get("/faq", s.handleFAQ)
		r.Get("/blog", s.handleBlog)
		r.Get("/blog/{slug}", s.handleBlogPost)
		r.Get("/contact", s.handleContact)
		r.Post("/contact", s.handleInquirySubmit)
		r.Post("/contact/message", s.handleContactMessage)
		r.Get("/privacy", s.handlePrivacy)

		r.Route("/admin", s.adminRoutes)

		r.NotFound(s.handleNotFound)
	})

	return r
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	backend := s.deps.Repository.Backend()
	if err := s.deps.Repository.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "backend", backend, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "unavailable", "backend": backend})
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "backend": backend})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}

func mountWithBasePath(basePath string, handler http.Handler) http.Handler {
	if basePath == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, basePath) {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > len(basePath) && r.URL.Path[len(basePath)] != '/' {
			http.NotFound(w, r)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, basePath)
		if trimmed == "" {
			trimmed = "/"
		}
		r.URL.Path = trimmed
		if r.URL.RawPath != "" {
			rawTrimmed := strings.TrimPrefix(r.URL.RawPath, basePath)
			if rawTrimmed == "" {
				rawTrimmed = "/"
			}
			r.URL.RawPath = rawTrimmed
		}
		handler.ServeHTTP(w, r)
	})
}

func normaliseBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}
