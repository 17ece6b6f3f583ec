package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// RetryPublisher публикует события подписки в очередь повторной доставки.
// Адаптер под обработчик webhook'ов.
type RetryPublisher struct {
	ch *amqp.Channel
}

// NewRetryPublisher создает новый RetryPublisher на готовом канале.
func NewRetryPublisher(ch *amqp.Channel) *RetryPublisher {
	return &RetryPublisher{ch: ch}
}

// Publish отправляет событие в очередь повторов. Идентификатором сообщения
// служит event id провайдера, что даёт дедупликацию доставок.
func (p *RetryPublisher) Publish(ev models.SubscriptionEvent) error {
	return PublishMessage(p.ch, RetryExchange, RetryRoutingKey, ev.EventID, ev)
}
