package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// Типы обрабатываемых событий подписки.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// HandleSubscriptionEvent применяет событие подписки к состоянию пользователя.
// Применение атомарно и защищено сторожем порядка: событие, чьё время created
// не новее последнего применённого, не изменяет документ. Событие для
// неизвестного customer id — no-op: вернуть ошибку означало бы бесконечные
// повторные доставки от провайдера.
func (s *Service) HandleSubscriptionEvent(ctx context.Context, ev models.SubscriptionEvent) error {
	const op = "billing.HandleSubscriptionEvent"

	var (
		user *models.User
		err  error
	)
	switch ev.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		user, err = s.repo.ApplySubscriptionUpsert(ctx, ev)
	case EventSubscriptionDeleted:
		user, err = s.repo.ApplySubscriptionCancel(ctx, ev.CustomerID, ev.OccurredAt)
	default:
		s.log.Info("skipping unhandled event type",
			sl.Event(ev.Type), slog.String("event_id", ev.EventID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		s.log.Warn("subscription event matched no user",
			sl.Event(ev.Type),
			slog.String("event_id", ev.EventID),
			slog.String("customer_id", ev.CustomerID))
		return nil
	}

	if err := s.cache.Invalidate(statusCachePrefix + user.Email); err != nil {
		s.log.Warn("failed to invalidate status cache",
			slog.String("email", user.Email), sl.Err(err))
	}
	s.log.Info("subscription state applied",
		sl.Event(ev.Type),
		slog.String("email", user.Email),
		slog.String("status", user.SubscriptionStatus),
		slog.Bool("is_premium", user.IsPremium))
	return nil
}

// ReplayEvent десериализует событие из очереди повторной доставки и
// применяет его. Используется консьюмером очереди повторов webhook'ов.
func (s *Service) ReplayEvent(ctx context.Context, body []byte) error {
	const op = "billing.ReplayEvent"

	var ev models.SubscriptionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.HandleSubscriptionEvent(ctx, ev)
}
