package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/alexkachalkov/scootrate/config"
	"github.com/alexkachalkov/scootrate/handlers"
	"github.com/alexkachalkov/scootrate/middleware"
	"github.com/alexkachalkov/scootrate/models"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Rating    *handlers.RatingHandler
	Rider     *handlers.RiderHandler
	Event     *handlers.EventHandler
	Result    *handlers.ResultHandler
	Dashboard *handlers.DashboardHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(cfg *config.Config, h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		// Публичная часть: рейтинг, профили, афиша.
		r.Get("/health", h.Rating.Health)
		r.Get("/rating", h.Rating.Rating)
		r.Get("/riders/{id}", h.Rating.RiderProfile)
		r.Get("/events", h.Event.ListPublished)
		r.Get("/events/{id}", h.Event.GetWithResults)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)

			// Защищённая админка: токен обязателен, редактору доступно
			// всё, кроме переопределения очков (это проверяет сервисный
			// слой).
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(cfg.JWTSecretKey))
				r.Use(middleware.RequireRole(models.RoleEditor))

				r.Get("/me", h.Auth.Me)
				r.Get("/dashboard", h.Dashboard.Stats)

				r.Route("/riders", func(r chi.Router) {
					r.Get("/", h.Rider.List)
					r.Post("/", h.Rider.Create)
					r.Get("/{id}", h.Rider.GetByID)
					r.Put("/{id}", h.Rider.Update)
					r.Delete("/{id}", h.Rider.Delete)
					r.Post("/{id}/photo", h.Rider.UploadPhoto)
				})

				r.Route("/events", func(r chi.Router) {
					r.Get("/", h.Event.List)
					r.Post("/", h.Event.Create)
					r.Put("/{id}", h.Event.Update)
					r.Post("/{id}/publish", h.Event.Publish)
					r.Delete("/{id}", h.Event.Delete)
				})

				r.Route("/results", func(r chi.Router) {
					r.Get("/", h.Result.ListByEvent)
					r.Post("/", h.Result.Create)
					r.Put("/{id}", h.Result.Update)
					r.Delete("/{id}", h.Result.Delete)
					r.Post("/import-csv", h.Result.ImportCSV)
				})

				r.Post("/recalculate-season", h.Result.RecalculateSeason)
			})
		})
	})

	router.Get("/ws/rating", h.WebSocket.Rating)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	return router
}
