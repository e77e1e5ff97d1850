package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/asso-backend/internal/api/handlers"
	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/metrics"
	"github.com/baharkarakas/asso-backend/internal/middleware"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/ratelimit"
	"github.com/baharkarakas/asso-backend/internal/services"
	"github.com/baharkarakas/asso-backend/internal/uploads"
)

type RouterDeps struct {
	Env         string
	CORSOrigins []string
	Log         *slog.Logger
	Tokens      *auth.TokenManager
	Limiter     ratelimit.Limiter
	Files       *uploads.Store

	Users       *services.UserService
	Posts       *services.PostService
	Events      *services.EventService
	Cotisations *services.CotisationService
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	metrics.Init()
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.Logger(d.Log), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusOK, "ok")
	})
	r.Handle("/metrics", metrics.Handler())
	r.Handle(uploads.PublicPrefix+"*", d.Files.Handler())

	users := handlers.NewUserHandler(d.Users, d.Files)
	posts := handlers.NewPostHandler(d.Posts, d.Files)
	events := handlers.NewEventHandler(d.Events, d.Files)
	cotis := handlers.NewCotisationHandler(d.Cotisations)
	authn := middleware.NewAuthMiddleware(d.Tokens, d.Env)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.Limiter), authn.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Register)
			r.Post("/login", users.Login)
			r.Post("/refresh", users.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/", users.List)
				r.Get("/{id}", users.Get)
				r.Patch("/{id}", users.Update)
				r.Delete("/{id}", users.Delete)
				r.Patch("/profile-picture/{id}", users.ProfilePicture)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", posts.List)
			r.Get("/{id}", posts.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", posts.Create)
				r.Patch("/{id}", posts.Update)
				r.Delete("/{id}", posts.Delete)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", events.List)
			r.Get("/{id}", events.Get)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", events.Create)
				r.Patch("/{id}", events.Update)
				r.Delete("/{id}", events.Delete)
				r.Post("/{id}/join", events.Join)
				r.Post("/{id}/leave", events.Leave)
			})
		})

		r.Route("/cotisations", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", cotis.Create)
			r.Get("/", cotis.List)
			r.Get("/my-cotisations", cotis.Mine)
			r.Get("/check-status", cotis.CheckStatus)
			r.Get("/{id}", cotis.Get)
			r.Patch("/{id}/status", cotis.UpdateStatus)
			r.With(middleware.RequireRole(models.RoleAdmin)).Get("/{id}/history", cotis.History)
		})
	})

	return r
}
