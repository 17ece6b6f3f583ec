package rabbitmq

import "github.com/streadway/amqp"

// Имена элементов топологии повторной доставки webhook-событий.
const (
	RetryExchange    = "webhook.retry"
	RetryQueue       = "webhook.retry.events"
	RetryRoutingKey  = "subscription"
	DeadExchange     = "webhook.dead"
	DeadLetterQueue  = "webhook.dead.events"
	retryMessageTTL  = int32(30 * 1000) // мс до повторной попытки
	maxQueueMessages = int32(10000)
)

// declareRetryTopology декларирует exchange и очереди: основная очередь
// повторов с TTL и dead-letter exchange, куда уходят отклонённые сообщения.
func declareRetryTopology(ch *amqp.Channel) error {
	for _, exchange := range []string{RetryExchange, DeadExchange} {
		if err := ch.ExchangeDeclare(
			exchange,
			"direct",
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return err
		}
	}

	if _, err := ch.QueueDeclare(
		RetryQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    DeadExchange,
			"x-dead-letter-routing-key": RetryRoutingKey,
			"x-message-ttl":             retryMessageTTL,
			"x-max-length":              maxQueueMessages,
		},
	); err != nil {
		return err
	}
	if err := ch.QueueBind(RetryQueue, RetryRoutingKey, RetryExchange, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		DeadLetterQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	return ch.QueueBind(DeadLetterQueue, RetryRoutingKey, DeadExchange, false, nil)
}
