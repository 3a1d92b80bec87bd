package routes

import (
	"github.com/Dosada05/tournament-sessions/handlers"
	"github.com/Dosada05/tournament-sessions/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	sessionHandler *handlers.SessionHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/tournaments/{tournamentID}/sessions", func(r chi.Router) {
		// Просмотр расписания доступен без токена.
		r.Get("/", sessionHandler.List)

		// Управление генерацией требует аутентификации.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/generate", sessionHandler.Generate)
			r.Post("/preview", sessionHandler.Preview)
			r.Get("/status/{taskID}", sessionHandler.Status)
			r.Delete("/", sessionHandler.Delete)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
