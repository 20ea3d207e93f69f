package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/miwanzo/internal/api/handlers"
	"github.com/hugh/miwanzo/internal/api/middleware"
	"github.com/hugh/miwanzo/internal/auth"
	"github.com/hugh/miwanzo/internal/planner"
	"github.com/hugh/miwanzo/pkg/crypto"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Logger      *slog.Logger
	AuthService auth.Authenticator
	Google      auth.GoogleProvider // nil disables Google sign-in
	Encryptor   *crypto.Encryptor
	FrontendURL string
	// AllowedOrigins defaults to FrontendURL.
	AllowedOrigins []string
	RateLimitReqs  int
	RateLimitSecs  int
	Development    bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	var userLimiter *middleware.RateLimiter
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)))
		userLimiter = middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 && cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	services := planner.NewServices(cfg.DB, cfg.Logger)

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Logger)
	oauthHandler := handlers.NewOAuthHandler(cfg.AuthService, cfg.Google, cfg.Encryptor, cfg.FrontendURL, !cfg.Development, cfg.Logger)
	workAreaHandler := handlers.NewWorkAreaHandler(services.WorkAreas, cfg.Logger, cfg.Development)
	sectionHandler := handlers.NewSectionHandler(services.Sections, cfg.Logger, cfg.Development)
	taskHandler := handlers.NewTaskHandler(services.Tasks, cfg.Logger, cfg.Development)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/google", oauthHandler.GoogleLogin)
		r.Get("/auth/google/callback", oauthHandler.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthService))
			if userLimiter != nil {
				r.Use(middleware.RateLimitByUser(userLimiter))
			}

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/verify", authHandler.Verify)
			r.Get("/auth/profile", authHandler.Profile)

			r.Route("/work-areas", func(r chi.Router) {
				r.Get("/", workAreaHandler.List)
				r.Post("/", workAreaHandler.Create)
				r.Put("/reorder", workAreaHandler.Reorder)
				r.Get("/{id}", workAreaHandler.Get)
				r.Put("/{id}", workAreaHandler.Update)
				r.Delete("/{id}", workAreaHandler.Delete)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Get("/", sectionHandler.List)
				r.Post("/", sectionHandler.Create)
				r.Put("/reorder", sectionHandler.Reorder)
				r.Get("/{id}", sectionHandler.Get)
				r.Put("/{id}", sectionHandler.Update)
				r.Delete("/{id}", sectionHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Put("/reorder", taskHandler.Reorder)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Route not found"}`))
	})

	return &Router{r}
}
