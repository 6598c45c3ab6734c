package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ishikisiko/match-telemetry/docs"
	"github.com/ishikisiko/match-telemetry/handlers"
	"github.com/ishikisiko/match-telemetry/middleware"
	"github.com/ishikisiko/match-telemetry/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth      *handlers.AuthHandler
	Matches   *handlers.MatchHandler
	Analytics *handlers.AnalyticsHandler
	Admin     *handlers.AdminHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	DB             Pinger
	Logger         *slog.Logger
}

func SetupRoutes(h Handlers, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler(opts.DB))

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Post("/auth/login", h.Auth.Login)

	authenticate := middleware.Authenticate([]byte(opts.JWTSecret), logger)

	router.Route("/api", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/matches", h.Matches.ListMatches)
		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Matches.GetMatch)
			r.Get("/ttd-curve", h.Matches.GetTTDCurve)
			r.Post("/export", h.Matches.ExportMatch)
		})

		r.Get("/analytics/summary", h.Analytics.Summary)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/generate", h.Admin.Generate)
			r.Post("/ttd/regenerate", h.Admin.RegenerateTTD)
		})
	})

	router.With(authenticate).Get("/ws/analytics", h.WebSocket.ServeWs)

	return router
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
