// Package webhook реализует HTTP-обработчик webhook-событий платёжного
// провайдера. Тело запроса не считается доверенным до проверки подписи.
//
// Ошибка применения события после успешной проверки подписи не роняет ответ:
// событие публикуется в очередь повторной доставки, а провайдеру
// подтверждается приём — повторную доставку процесс берёт на себя.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// maxBodyBytes ограничивает размер тела webhook-запроса.
const maxBodyBytes = 65536

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wallflow_webhook_events_total",
	Help: "Webhook events by type and processing outcome.",
}, []string{"type", "outcome"})

// Service описывает интерфейс применения события подписки.
type Service interface {
	HandleSubscriptionEvent(ctx context.Context, ev models.SubscriptionEvent) error
}

// RetryQueue публикует событие, которое не удалось применить.
type RetryQueue interface {
	Publish(ev models.SubscriptionEvent) error
}

// Handler управляет HTTP-запросами webhook'ов платёжного провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	retry         RetryQueue
	webhookSecret string
}

// New создает новый Handler с переданными логгером, сервисом и очередью повторов.
func New(log *slog.Logger, service Service, retry RetryQueue, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		retry:         retry,
		webhookSecret: webhookSecret,
	}
}

// subscriptionPayload — интересующие поля объекта подписки из события.
type subscriptionPayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// ServeHTTP godoc
// @Summary Принять webhook платёжного провайдера
// @Description Проверяет подпись, применяет событие подписки и подтверждает приём.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Router /webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	event, err := stripewebhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		eventsTotal.WithLabelValues("unknown", "bad_signature").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	eventType := string(event.Type)
	log = log.With(sl.Event(eventType), slog.String("event_id", event.ID))

	var sub subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		log.Error("failed to decode event object", sl.Err(err))
		eventsTotal.WithLabelValues(eventType, "bad_payload").Inc()
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid event payload"))
		return
	}

	ev := models.SubscriptionEvent{
		EventID:        event.ID,
		Type:           eventType,
		CustomerID:     sub.Customer,
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		OccurredAt:     time.Unix(event.Created, 0).UTC(),
	}
	if sub.CurrentPeriodEnd > 0 {
		ev.PeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}

	if err := h.service.HandleSubscriptionEvent(r.Context(), ev); err != nil {
		log.Error("failed to apply subscription event, queueing for retry", sl.Err(err))
		eventsTotal.WithLabelValues(eventType, "queued_retry").Inc()
		if pubErr := h.retry.Publish(ev); pubErr != nil {
			// Потеря события хуже повторной доставки: роняем ответ,
			// провайдер доставит webhook ещё раз.
			log.Error("failed to publish event to retry queue", sl.Err(pubErr))
			eventsTotal.WithLabelValues(eventType, "retry_publish_failed").Inc()
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to process event"))
			return
		}
	} else {
		eventsTotal.WithLabelValues(eventType, "applied").Inc()
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
