package service

import (
    "context"
    "encoding/json"
    "log/slog"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/bike-store-inventory/internal/queue"
)

// EventPublisher publishes domain events. Ledgers call it after a
// successful write; a failing publish never undoes the write.
type EventPublisher interface {
    PublishOrderCreated(ctx context.Context, ev q.OrderCreatedEvent) error
    PublishStockAdjusted(ctx context.Context, ev q.StockAdjustedEvent) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, q.OrderCreatedEvent) error   { return nil }
func (NopPublisher) PublishStockAdjusted(context.Context, q.StockAdjustedEvent) error { return nil }

// AMQPPublisher publishes events to RabbitMQ. A connection is dialled per
// publish, which keeps the publisher free of reconnect state at the cost
// of a handshake per event.
type AMQPPublisher struct {
    URL    string
    Logger *slog.Logger
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Logger: logger}
}

func (p *AMQPPublisher) PublishOrderCreated(ctx context.Context, ev q.OrderCreatedEvent) error {
    return p.publish(ctx, q.OrderCreatedQueue, ev)
}

func (p *AMQPPublisher) PublishStockAdjusted(ctx context.Context, ev q.StockAdjustedEvent) error {
    return p.publish(ctx, q.StockAdjustedQueue, ev)
}

// publish sends event as a persistent JSON message to the durable queue
// named queue. Errors are logged and returned.
func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        p.Logger.Warn("rabbitmq: dial failed", "queue", queue, "error", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Logger.Warn("rabbitmq: channel open failed", "queue", queue, "error", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        p.Logger.Warn("rabbitmq: queue declare failed", "queue", queue, "error", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        p.Logger.Warn("rabbitmq: publish failed", "queue", queue, "error", err)
        return err
    }
    return nil
}
