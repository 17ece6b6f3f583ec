package models

import "time"

// SubscriptionEvent — транзитное событие подписки платёжного провайдера.
// Не персистится: потребляется один раз webhook-диспетчером, а при ошибке
// обработчика сериализуется в очередь повторной доставки.
type SubscriptionEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"` // created, updated, deleted
	CustomerID     string    `json:"customer_id"`
	SubscriptionID string    `json:"subscription_id"`
	Status         string    `json:"status"`
	PeriodEnd      time.Time `json:"period_end"`
	// OccurredAt — поле created события провайдера; используется как
	// сторож порядка применения транзакций состояния.
	OccurredAt time.Time `json:"occurred_at"`
}
