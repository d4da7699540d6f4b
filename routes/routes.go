package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pronoleague/pronostics/handlers"
	"github.com/pronoleague/pronostics/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	predictionHandler *handlers.PredictionHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	accountHandler *handlers.AccountHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/first-login", authHandler.FirstLogin)
		r.Post("/set-password", authHandler.SetPassword)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.List)
		r.Get("/next", matchHandler.Next)
		r.Get("/{id}", matchHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/{id}/prediction", predictionHandler.GetForMatch)
			r.Put("/{id}/prediction", predictionHandler.Submit)
		})
	})

	router.Get("/seasons", matchHandler.Seasons)

	router.Get("/leaderboard", leaderboardHandler.Get)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)

		// Logo management is reserved for the protected superuser.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireProtected)
			r.Post("/{id}/logo", teamHandler.UploadLogo)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/predictions", predictionHandler.ListMine)
		r.Route("/account", func(r chi.Router) {
			r.Get("/", accountHandler.Get)
			r.Put("/", accountHandler.UpdateEmail)
			r.Put("/password", accountHandler.ChangePassword)
		})
	})

	router.Get("/ws", webSocketHandler.Subscribe)
}
