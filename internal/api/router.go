package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/invoicedesk/invoicedesk/internal/api/handlers"
	"github.com/invoicedesk/invoicedesk/internal/api/middleware"
	"github.com/invoicedesk/invoicedesk/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	upstream service.UpstreamFactory,
	authService *service.AuthService,
	editService *service.EditService,
	uploadService *service.UploadService,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Health checks (no auth required)
	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready)

	// Create handlers
	authHandler := handlers.NewAuthHandler(authService)
	invoiceHandler := handlers.NewInvoiceHandler(upstream, editService)
	sessionHandler := handlers.NewSessionHandler(upstream, editService)
	uploadHandler := handlers.NewUploadHandler(upstream, uploadService)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)

			// Invoice endpoints
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceHandler.List)
				r.Get("/{uuid}/view", invoiceHandler.View)
				r.Post("/{uuid}/session", sessionHandler.Open)
				r.Delete("/{uuid}", invoiceHandler.Delete)
			})

			// Edit session endpoints
			r.Route("/sessions/{sid}", func(r chi.Router) {
				r.Get("/", sessionHandler.Render)
				r.Patch("/", sessionHandler.Patch)
				r.Post("/lines", sessionHandler.AddLine)
				r.Delete("/lines", sessionHandler.DeleteLine)
				r.Post("/save", sessionHandler.Save)
				r.Delete("/", sessionHandler.Cancel)
			})

			// Batch upload endpoints
			r.Route("/uploads", func(r chi.Router) {
				r.Post("/", uploadHandler.Upload)
				r.Get("/", uploadHandler.History)
			})
		})
	})

	return r
}
