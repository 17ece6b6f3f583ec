// Package wallflow собирает приложение: подключения к MongoDB, Redis и
// RabbitMQ, клиенты платёжного и генеративного провайдеров, сервисы и
// HTTP-сервер с graceful shutdown.
package wallflow

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/wallflow-app/wallflow-backend/internal/cache"
	"github.com/wallflow-app/wallflow-backend/internal/config"
	"github.com/wallflow-app/wallflow-backend/internal/lib/jwt"
	"github.com/wallflow-app/wallflow-backend/internal/promptai"
	"github.com/wallflow-app/wallflow-backend/internal/rabbitmq"
	authservice "github.com/wallflow-app/wallflow-backend/internal/services/auth"
	billingservice "github.com/wallflow-app/wallflow-backend/internal/services/billing"
	wallpaperservice "github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
	mongostorage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
	"github.com/wallflow-app/wallflow-backend/internal/stripeapi"
)

// App держит собранные зависимости и HTTP-сервер приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *mongostorage.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
	billing  *billingservice.Service
}

// New инициализирует все зависимости приложения и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := mongostorage.New(ctx, cfg.MongoConnection)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQ.ConnectionString, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn)
	if err != nil {
		return nil, err
	}

	stripeClient := stripeapi.NewClient(cfg.Stripe)
	aiClient := promptai.NewClient(cfg.PromptAI.APIKey, cfg.PromptAI.Model, cfg.PromptAI.RenderURL)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	billingService := billingservice.New(db, stripeClient, cacheRedis, logger)
	wallpaperService := wallpaperservice.New(db, db, aiClient, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &RouteDeps{
		Auth:      authService,
		Billing:   billingService,
		Wallpaper: wallpaperService,
		Storage:   db,
		JWT:       jwtMaker,
		Retry:     rabbitmq.NewRetryPublisher(amqpCh),
		Stripe:    cfg.Stripe,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
		billing:  billingService,
	}, nil
}

// Run запускает потребителя очереди повторов и HTTP-сервер; по отмене
// контекста останавливает сервер и закрывает подключения.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumeMessages(ctx, a.amqpCh, rabbitmq.RetryQueue, a.logger, func(body []byte) error {
		return a.billing.ReplayEvent(ctx, body)
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.amqpCh.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp channel", slog.Any("err", closeErr))
		}
		if closeErr := a.amqpConn.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.Close(timeoutCtx); closeErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", closeErr))
		}
		return err
	}
}
