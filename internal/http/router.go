package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dealdesk/dealdesk/internal/auth"
	txHandler "github.com/dealdesk/dealdesk/internal/http/transaction"
)

// New assembles the portal API. Every route requires an authenticated
// caller; the /admin group additionally requires the admin role.
func New(transactionsV1 *txHandler.Handler, jwtSecret []byte, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSecret))

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/stats", transactionsV1.StatsRoutes)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.AdminRoutes(r)
		})
	})

	return router
}
