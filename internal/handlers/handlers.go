package handlers

import (
	"ProductManager/internal/config"
	"ProductManager/internal/middleware"
	"ProductManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler wires middleware and routes of the identity service and the document store.
func NewHandler(
	userService *service.UserService,
	documentService *service.DocumentService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	userHandler := NewUserHandler(userService, logger, config)
	documentHandler := NewDocumentHandler(documentService, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/status", userHandler.Status)

	// Document store routes
	r.Route("/api/collections/{collection}", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/documents", documentHandler.Add)
		r.Get("/documents", documentHandler.Query)
		r.Put("/documents/{id}", documentHandler.Set)
		r.Delete("/documents/{id}", documentHandler.Delete)
		r.Get("/watch", documentHandler.Watch)
	})

	return &Handler{Router: r}
}
