// Package server serves the game in a browser and exposes a JSON API.
//
// Pages follow the original navigation surface: the story listing at "/",
// the entry form at "/{id}", the reset confirmation at "/{id}/reset" and the
// story view at "/{id}/view", plus a not-found page for unknown ids. The API
// lives under "/api/v1".
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves pages and the API over one service
type Server struct {
	service      *service.Service
	errorHandler *apperrors.HTTPErrorHandler
	logger       *zap.Logger
	pages        *template.Template
	port         int
	watch        bool

	shutdownTimeout time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithPort sets the listen port for Run
func WithPort(port int) Option {
	return func(s *Server) { s.port = port }
}

// WithWatch reloads templates from disk while serving
func WithWatch(enabled bool) Option {
	return func(s *Server) { s.watch = enabled }
}

// New creates a server instance
func New(svc *service.Service, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("server")

	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	s := &Server{
		service:         svc,
		errorHandler:    apperrors.NewHTTPErrorHandler(true, logger),
		logger:          logger,
		pages:           pages,
		port:            8080,
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /{id}", s.handleForm)
	mux.HandleFunc("POST /{id}", s.handleSubmit)
	mux.HandleFunc("GET /{id}/reset", s.handleResetConfirm)
	mux.HandleFunc("POST /{id}/reset", s.handleReset)
	mux.HandleFunc("GET /{id}/view", s.handleView)
	mux.HandleFunc("/", s.handleNotFound)

	// API
	mux.HandleFunc("GET /api/v1/health", s.api(s.handleHealth))
	mux.HandleFunc("GET /api/v1/openapi.json", s.api(s.handleOpenAPISpec))
	mux.HandleFunc("GET /api/v1/templates", s.api(s.handleListTemplates))
	mux.HandleFunc("GET /api/v1/templates/{id}", s.api(s.handleGetTemplate))
	mux.HandleFunc("GET /api/v1/answers/{id}", s.api(s.handleGetAnswers))
	mux.HandleFunc("PUT /api/v1/answers/{id}", s.api(s.handlePutAnswers))
	mux.HandleFunc("DELETE /api/v1/answers/{id}", s.api(s.handleDeleteAnswers))
	mux.HandleFunc("GET /api/v1/stories/{id}", s.api(s.handleGetStory))

	return s.requestID(s.logging(s.recovery(mux)))
}

// Run listens on the configured port until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.watch {
		s.watchTemplates(ctx)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("Server started", zap.String("addr", "http://"+ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) watchTemplates(ctx context.Context) {
	reloaded, err := s.service.Catalog().Watch(ctx)
	if err != nil {
		s.logger.Warn("Template hot reload disabled", zap.Error(err))
		return
	}
	go func() {
		for range reloaded {
			s.logger.Info("Templates reloaded", zap.Int("count", s.service.Catalog().Len()))
		}
	}()
}
