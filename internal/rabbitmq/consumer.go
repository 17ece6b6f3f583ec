package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// ConsumeMessages запускает потребителя очереди. Сообщение с ошибкой
// обработчика отклоняется без requeue и через DLX уходит в очередь
// безнадёжных; успешное подтверждается.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, 10)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					if err := handler(delivery.Body); err != nil {
						log.Error("retry handler failed, dead-lettering message",
							slog.String("message_id", delivery.MessageId),
							slog.String("error", err.Error()))
						if nackErr := delivery.Nack(false, false); nackErr != nil {
							log.Error("failed to nack message", slog.String("error", nackErr.Error()))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", slog.String("error", ackErr.Error()))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
