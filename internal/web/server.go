// Package web exposes the validation and extraction workflows over HTTP.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
	"leadkit/internal/service"
	weblog "leadkit/internal/web/middleware"
)

// BatchService runs remote batch validation jobs.
type BatchService interface {
	Submit(ctx context.Context, addresses []string) (service.JobHandle, error)
	Cancel(ctx context.Context) error
	Reset() error
	Snapshot() domain.BatchJob
	Results() []domain.ValidationRecord
}

// SingleService validates one address.
type SingleService interface {
	Validate(ctx context.Context, address string) (*ports.SingleResult, error)
}

// ExtractService derives artifacts from partner-contact files.
type ExtractService interface {
	Extract(ctx context.Context, filename string, data []byte) (*service.ExtractionResult, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Batch   BatchService
	Single  SingleService
	Extract ExtractService
	Codec   ports.SpreadsheetCodec

	MaxUploadSize int64
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

// Server is the HTTP API server.
type Server struct {
	deps   Deps
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server with its routes installed.
func NewServer(deps Deps) *Server {
	if deps.MaxUploadSize <= 0 {
		deps.MaxUploadSize = 32 << 20
	}
	s := &Server{deps: deps, router: chi.NewRouter()}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)

		r.Route("/batch", func(r chi.Router) {
			r.Post("/", s.handleSubmitBatch)
			r.Get("/", s.handleBatchStatus)
			r.Delete("/", s.handleCancelBatch)
			r.Post("/reset", s.handleResetBatch)
			r.Get("/results", s.handleBatchResults)
			r.Get("/export", s.handleExportBatch)
		})

		r.Post("/extract/emails", s.handleExtract(service.EmailsArtifact))
		r.Post("/extract/contacts", s.handleExtractContacts)
	})
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.deps.ReadTimeout,
		WriteTimeout: s.deps.WriteTimeout,
		IdleTimeout:  s.deps.IdleTimeout,
	}
	slog.Info("starting server", "addr", addr)
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

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
