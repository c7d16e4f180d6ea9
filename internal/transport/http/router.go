package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-notify-api/internal/application/delivery"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/realtime"
	"github.com/go-notify-api/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds the application router: the REST path, the websocket
// upgrade route and the health check. Both gateway paths share the service
// instances wired here.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	notifSvc := notification.NewService(deps.NotificationRepo)
	registry := realtime.NewRegistry()
	deliverySvc := delivery.NewService(notifSvc, registry, deps.Publisher)

	var verifier realtime.Verifier = realtime.AllowAll{}
	if deps.JWTProvider != nil {
		verifier = realtime.JWTVerifier{Provider: deps.JWTProvider}
	}
	wsHandler := realtime.NewHandler(registry, verifier, deliverySvc, notifSvc, cfg.AllowedOrigins)

	notifH := handler.NewNotificationHandler(notifSvc, deliverySvc)
	healthH := handler.NewHealthHandler()

	// 5 requests/second, burst of 10 — applied to the public write amplifier.
	sendRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Get("/ws", wsHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/notifications", notifH.List)
		r.With(sendRL.Limit).Post("/send-notification", notifH.Send)
		r.Delete("/notifications/{id}", notifH.Delete)
		r.Put("/notifications/{id}/read", notifH.MarkRead)
	})

	return r
}
