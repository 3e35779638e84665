package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photobook/internal/web/handlers"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	configHandler := handlers.NewConfigHandler(s.config)
	sessionHandler := handlers.NewSessionHandler(s.config, sessionManager)
	entriesHandler := handlers.NewEntriesHandler(s.config, sessionManager)
	navigationHandler := handlers.NewNavigationHandler()
	exportHandler := handlers.NewExportHandler(s.config, sessionManager, s.assembler, s.jobManager)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)
		r.Post("/session", sessionHandler.Create)

		// Everything else acts on the caller's session
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessionManager))

			r.Get("/session", sessionHandler.Get)
			r.Delete("/session", sessionHandler.Delete)

			// Format
			r.Put("/session/format", sessionHandler.UpdateFormat)
			r.Post("/session/format/presets/{name}", sessionHandler.ApplyPreset)

			// Entries
			r.Post("/session/entries", entriesHandler.Upload)
			r.Put("/session/entries/reorder", entriesHandler.Reorder)
			r.Delete("/session/entries/{id}", entriesHandler.Delete)
			r.Put("/session/entries/{id}/move", entriesHandler.Move)
			r.Get("/session/entries/{id}/thumbnail", entriesHandler.Thumbnail)

			// Wizard and spread viewer
			r.Post("/session/step/next", navigationHandler.NextStep)
			r.Post("/session/step/back", navigationHandler.PrevStep)
			r.Get("/session/spread", navigationHandler.Spread)
			r.Post("/session/spread/{control}", navigationHandler.PressSpread)

			// Export
			r.Post("/session/export", exportHandler.Export)
			r.Post("/session/export/jobs", exportHandler.StartJob)
			r.Get("/session/export/jobs/{jobId}", exportHandler.JobStatus)
			r.Get("/session/export/jobs/{jobId}/events", exportHandler.JobEvents)
			r.Get("/session/export/jobs/{jobId}/archive", exportHandler.JobArchive)
			r.Delete("/session/export/jobs/{jobId}", exportHandler.DeleteJob)
		})
	})
}
