package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StatusPublisher pushes per-video detection status messages onto the status
// queue so downstream consumers (review tooling, notifications) can follow a
// batch run without tailing logs.
type StatusPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

func NewStatusPublisher(url, exchange, statusQueue string, logger *zap.Logger) (*StatusPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(statusQueue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", statusQueue, err)
	}
	if err := ch.QueueBind(statusQueue, statusQueue, exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue %s: %w", statusQueue, err)
	}

	logger.Info("status publisher connected",
		zap.String("exchange", exchange),
		zap.String("queue", statusQueue),
	)

	return &StatusPublisher{
		conn:       conn,
		channel:    ch,
		exchange:   exchange,
		routingKey: statusQueue,
		logger:     logger,
	}, nil
}

func (p *StatusPublisher) PublishStatus(ctx context.Context, msg []byte) error {
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

func (p *StatusPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("close channel", zap.Error(err))
	}
	return p.conn.Close()
}
