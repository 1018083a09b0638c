package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/config"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/pipeline"
)

// Server is the HTTP API for budget extraction.
type Server struct {
	router   chi.Router
	proc     *pipeline.Processor
	store    *pipeline.Store
	gatherer prometheus.Gatherer
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(proc *pipeline.Processor, store *pipeline.Store, gatherer prometheus.Gatherer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		proc:     proc,
		store:    store,
		gatherer: gatherer,
		log:      log,
		cfg:      cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Authenticated endpoints; open when no key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/extract/batch", s.handleBatchExtract)
		r.Get("/api/stats", s.handleStats)

		r.Get("/api/extractions", s.handleListExtractions)
		r.Get("/api/extractions/{id}", s.handleGetExtraction)
		r.Delete("/api/extractions/{id}", s.handleDeleteExtraction)
		r.Get("/api/extractions/{id}/charts/{table}", s.handleChart)
		r.Get("/api/extractions/{id}/report", s.handleReport)
		r.Get("/api/extractions/{id}/export/{format}", s.handleExport)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
