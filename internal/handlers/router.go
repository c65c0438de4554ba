package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	mW "github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	Log            zerolog.Logger
	AllowedOrigins []string
	StaticDir      string
	// Auth guards every route that needs a caller identity.
	Auth func(http.Handler) http.Handler
}

type Handlers struct {
	Users    *UserHandler
	QR       *QRHandler
	Posts    *PostHandler
	Support  *SupportHandler
	Payments *PaymentHandler
	AI       *AIHandler
	Health   *HealthHandler
}

func NewRouter(cfg RouterConfig, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(mW.RequestID)
	r.Use(mW.SecurityHeaders)
	r.Use(mW.Logger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Response{Success: false, Message: "Route not found"})
	})

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Health)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if cfg.StaticDir != "" {
		r.Handle("/static/avatars/*", http.StripPrefix("/static/avatars/", mW.StaticFileServer(cfg.StaticDir)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/users/register", h.Users.Register)
		r.Post("/users/login", h.Users.Login)
		r.Get("/users", h.Users.List)
		r.Get("/users/{id}", h.Users.Get)
		r.Get("/users/support/{supportLink}", h.Users.GetBySupportLink)
		r.Get("/users/support/{supportLink}/qr", h.QR.SupportPage)
		r.Get("/users/{id}/posts", h.Posts.ListByCreator)
		r.Get("/posts", h.Posts.List)
		r.Get("/posts/{id}", h.Posts.Get)
		r.Post("/payment/notification", h.Payments.Notification)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth)

			r.Post("/users/logout", h.Users.Logout)
			r.Get("/users/me", h.Users.Me)
			r.Put("/users/{id}", h.Users.Update)
			r.Delete("/users/{id}", h.Users.Delete)
			r.With(mW.RequireRole(models.RoleAdmin)).Patch("/users/{id}/role", h.Users.UpdateRole)

			r.Post("/posts", h.Posts.Create)
			r.Put("/posts/{id}", h.Posts.Update)
			r.Delete("/posts/{id}", h.Posts.Delete)

			r.Post("/support", h.Support.Create)
			r.Get("/support/received", h.Support.Received)
			r.Get("/support/sent", h.Support.Sent)

			r.Post("/payment/snap-token", h.Payments.CreateSession)
			r.Get("/payment/orders/{orderId}", h.Payments.GetOrder)

			r.Post("/ai/caption", h.AI.Caption)
		})
	})

	return r
}
