// Package wallflow предоставляет маршруты для основного приложения.
package wallflow

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/wallflow-app/wallflow-backend/internal/config"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/auth/login"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/auth/register"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/auth/sociallogin"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/auth/updateuser"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/billing/cancel"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/billing/checkoutcreate"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/billing/status"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/billing/webhook"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/health"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/customlist"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/customremove"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/customsave"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/generate"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/generatedlist"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/generatedremove"
	"github.com/wallflow-app/wallflow-backend/internal/http/handlers/wallpaper/suggest"
	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/rabbitmq"
	authservice "github.com/wallflow-app/wallflow-backend/internal/services/auth"
	billingservice "github.com/wallflow-app/wallflow-backend/internal/services/billing"
	wallpaperservice "github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
	mongostorage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
)

// RouteDeps — зависимости, необходимые для регистрации маршрутов.
type RouteDeps struct {
	Auth      *authservice.AuthService
	Billing   *billingservice.Service
	Wallpaper *wallpaperservice.Service
	Storage   *mongostorage.Storage
	JWT       middlewarectx.TokenParser
	Retry     *rabbitmq.RetryPublisher
	Stripe    config.Stripe
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps *RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Post("/registration", register.New(logger, deps.Auth).ServeHTTP)
	r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)
	r.Post("/social-login", sociallogin.New(logger, deps.Auth).ServeHTTP)
	r.Post("/update-user", updateuser.New(logger, deps.Auth).ServeHTTP)

	r.Post("/create-checkout-session", checkoutcreate.New(logger, deps.Billing).ServeHTTP)
	r.Get("/subscription-status", status.New(logger, deps.Billing).ServeHTTP)
	r.Post("/cancel-subscription", cancel.New(logger, deps.Billing).ServeHTTP)

	// Webhook endpoint (аутентификация — подпись провайдера)
	r.Post("/webhook", webhook.New(logger, deps.Billing, deps.Retry, deps.Stripe.WebhookSecret).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(deps.JWT, logger))

		r.With(middlewarectx.RateLimitMiddleware(rate.Limit(1), 3, logger)).
			Post("/generate-wallpaper", generate.New(logger, deps.Wallpaper).ServeHTTP)
		r.Post("/suggest-prompts", suggest.New(logger, deps.Wallpaper).ServeHTTP)
		r.Get("/my-generated", generatedlist.New(logger, deps.Wallpaper).ServeHTTP)
		r.Delete("/generated/{id}", generatedremove.New(logger, deps.Wallpaper).ServeHTTP)
		r.Post("/save-custom", customsave.New(logger, deps.Wallpaper).ServeHTTP)
		r.Get("/my-custom", customlist.New(logger, deps.Wallpaper).ServeHTTP)
		r.Delete("/custom/{id}", customremove.New(logger, deps.Wallpaper).ServeHTTP)
	})

	r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
