package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	queueBookingCreated   = "booking.created"
	queueBookingCancelled = "booking.cancelled"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события бронирования в RabbitMQ
// Публикация строго best-effort: коммит бронирования уже состоялся,
// ошибка брокера логируется и не возвращается наверх
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger Logger
}

// NewPublisher подключается к RabbitMQ и объявляет очереди
func NewPublisher(url string, logger Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: failed to open channel: %w", err)
	}

	for _, queue := range []string{queueBookingCreated, queueBookingCancelled} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("events: failed to declare queue %s: %w", queue, err)
		}
	}

	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

// PublishBookingCreated публикует событие о созданном бронировании
func (p *Publisher) PublishBookingCreated(ctx context.Context, event BookingCreatedEvent) {
	p.publish(ctx, queueBookingCreated, event)
}

// PublishBookingCancelled публикует событие об отмене бронирования
func (p *Publisher) PublishBookingCancelled(ctx context.Context, event BookingCancelledEvent) {
	p.publish(ctx, queueBookingCancelled, event)
}

func (p *Publisher) publish(ctx context.Context, queue string, event interface{}) {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("events: failed to marshal %s event: %v", queue, err)
		return
	}

	err = p.ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = имя очереди
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("events: failed to publish %s event: %v", queue, err)
		return
	}

	p.logger.Info("events: published %s event", queue)
}

// Close закрывает канал и соединение с брокером
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
