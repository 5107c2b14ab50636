package routes

import (
	"net/http"

	"github.com/Dosada05/cup-engine/handlers"
	"github.com/Dosada05/cup-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Competitions *handlers.CompetitionHandler
	Editions     *handlers.EditionHandler
	WebSocket    *handlers.WebSocketHandler
}

// SetupRoutes mounts the read API publicly and everything that changes state
// behind an admin or operator token.
func SetupRoutes(router chi.Router, h Handlers, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/ws/editions/{editionID}", h.WebSocket.ServeWs)

	requireOperator := func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleOperator))
	}

	router.Route("/competitions", func(r chi.Router) {
		r.Get("/", h.Competitions.List)
		r.Get("/presets", h.Competitions.Presets)
		r.Get("/{competitionID}", h.Competitions.Get)

		r.Group(func(r chi.Router) {
			requireOperator(r)
			r.Post("/", h.Competitions.Create)
		})
	})

	router.Route("/editions", func(r chi.Router) {
		r.Get("/", h.Editions.List)
		r.Get("/{editionID}", h.Editions.Get)
		r.Get("/{editionID}/standings", h.Editions.Standings)

		r.Group(func(r chi.Router) {
			requireOperator(r)
			r.Post("/", h.Editions.Create)
			r.Post("/{editionID}/advance", h.Editions.Advance)
			r.Post("/{editionID}/run", h.Editions.Run)
			r.Post("/{editionID}/prizes", h.Editions.SettlePrizes)
		})
	})

	router.Get("/rounds/{roundID}/ties", h.Editions.RoundTies)
}
