package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for the provisioning use-cases.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the provisioning routes and middleware stack. Error
// translation to transport codes happens only in this adapter.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/provisioning/v1", func(r chi.Router) {
		r.Post("/individuals", handler.provisionIndividual)
		r.Post("/organizations", handler.provisionOrganization)
	})

	return r
}
