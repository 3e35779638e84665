package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/web/handlers"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	jobManager     *handlers.JobManager
	sessionManager *middleware.SessionManager
	assembler      *archive.Assembler
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, sessionSecret string) *Server {
	r := chi.NewRouter()

	store := session.NewManager(session.Options{
		MaxUploadBytes: cfg.Photobook.MaxUploadBytes(),
		ThumbWidth:     cfg.Photobook.ThumbWidth,
		ThumbHeight:    cfg.Photobook.ThumbHeight,
	}, session.DefaultTTL)
	sessionManager := middleware.NewSessionManager(sessionSecret, store)

	s := &Server{
		config:         cfg,
		router:         r,
		jobManager:     handlers.NewJobManager(),
		sessionManager: sessionManager,
		assembler:      archive.NewPipeline(cfg),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(middleware.ParseAllowedOrigins(cfg.Web.AllowedOrigins)))

	s.setupRoutes(sessionManager)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  2 * time.Minute, // Multi-file uploads
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and exports
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	// Stop the cleanup goroutine and release every session's previews
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
