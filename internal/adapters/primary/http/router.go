package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/lorrc/queue-backend/internal/adapters/primary/http/middleware"
	ws "github.com/lorrc/queue-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/queue-backend/internal/auth"
)

// RouterConfig wires the handlers and cross-cutting middleware together.
type RouterConfig struct {
	Logger         *slog.Logger
	TokenManager   *auth.TokenManager
	AllowedOrigins []string

	Queue    *QueueHandler
	Services *ServiceHandler
	Auth     *AuthHandler
	Health   *HealthHandler
	Hub      *ws.Hub
}

// NewRouter builds the HTTP surface. Public routes carry the default rate
// limit; login gets the stricter auth limit; admin routes sit behind JWT.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RecoveryLogger(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	publicLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	authLimiter := middleware.NewRateLimiter(middleware.AuthRateLimiterConfig())

	r.Get("/health", cfg.Health.Health)
	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: customers interact without accounts.
		r.Group(func(r chi.Router) {
			r.Use(publicLimiter.Middleware)

			r.Get("/services", cfg.Services.ListServices)
			r.Get("/services/{serviceID}", cfg.Services.GetService)
			r.Post("/services/{serviceID}/queue", cfg.Queue.JoinQueue)

			r.Get("/tickets/{ticketID}", cfg.Queue.GetTicket)
			r.Post("/tickets/{ticketID}/cancel", cfg.Queue.CancelTicket)
		})

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/auth/login", cfg.Auth.Login)
		})

		// Real-time queue updates; anonymous and read-only.
		r.Get("/ws", ws.ServeWS(cfg.Hub, cfg.Logger))

		// Staff operations.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(cfg.TokenManager))

			r.Get("/services/{serviceID}/queue", cfg.Queue.ListQueue)
			r.Post("/services/{serviceID}/queue/next", cfg.Queue.CallNext)
			r.Patch("/tickets/{ticketID}/status", cfg.Queue.UpdateStatus)
			r.Post("/tickets/{ticketID}/serving", cfg.Queue.MarkServing)
			r.Post("/tickets/{ticketID}/complete", cfg.Queue.CompleteTicket)
			r.Post("/tickets/{ticketID}/no-show", cfg.Queue.MarkNoShow)
			r.Get("/services/{serviceID}/stats", cfg.Services.GetStats)

			// Catalog management is admin-only; queue operation is open
			// to all staff.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/services", cfg.Services.CreateService)
				r.Patch("/services/{serviceID}", cfg.Services.UpdateService)
				r.Delete("/services/{serviceID}", cfg.Services.DeactivateService)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Route not found", Code: "NOT_FOUND"})
	})

	return r
}
